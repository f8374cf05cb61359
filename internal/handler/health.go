package handler

import (
	"context"
	"net/http"
	"time"

	"arbor/internal/httputil"
)

// Pinger checks the backing store; nil means nothing to check
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheck reports liveness and, when a store is wired, its reachability
// GET /health
func HealthCheck(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				httputil.RespondError(w, http.StatusServiceUnavailable, "database unreachable")
				return
			}
		}

		httputil.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"time":   time.Now(),
		})
	}
}
