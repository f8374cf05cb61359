package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"arbor/internal/auth"
	"arbor/internal/httputil"

	"github.com/google/uuid"
)

// DevUserHeader is trusted as the caller's id when dev header auth is enabled
const DevUserHeader = "X-User-ID"

// errNoCredentials marks a request that carries no identity at all
var errNoCredentials = errors.New("no credentials")

// Identity is the authenticated caller
type Identity struct {
	UserID string
	Email  string
}

// IdentityResolver extracts the caller from a request.
// It returns errNoCredentials when the request is anonymous.
type IdentityResolver func(r *http.Request) (*Identity, error)

// BearerToken resolves the caller from an "Authorization: Bearer <jwt>" header
func BearerToken(verifier auth.JWTVerifier) IdentityResolver {
	return func(r *http.Request) (*Identity, error) {
		header := r.Header.Get("Authorization")
		if header == "" {
			return nil, errNoCredentials
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return nil, errors.New("authorization header must use the Bearer scheme")
		}

		claims, err := verifier.VerifyToken(strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		return &Identity{UserID: claims.GetUserID(), Email: claims.Email}, nil
	}
}

// DevUser trusts the X-User-ID header. Only for local development.
func DevUser() IdentityResolver {
	return func(r *http.Request) (*Identity, error) {
		userID := strings.TrimSpace(r.Header.Get(DevUserHeader))
		if userID == "" {
			return nil, errNoCredentials
		}
		if err := uuid.Validate(userID); err != nil {
			return nil, errors.New(DevUserHeader + " must be a UUID")
		}
		return &Identity{UserID: userID}, nil
	}
}

// AuthMiddleware puts the caller's identity in the request context.
// Anonymous requests pass through on safe methods (GET, HEAD, OPTIONS) so
// public content stays readable; every other method requires an identity.
// Invalid credentials are always rejected.
func AuthMiddleware(resolve IdentityResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := resolve(r)
			switch {
			case err == nil:
				r = httputil.WithUser(r, identity.UserID, identity.Email)
			case errors.Is(err, errNoCredentials):
				if !isSafeMethod(r.Method) {
					httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
					return
				}
			default:
				logger.Debug("authentication failed",
					"error", err,
					"path", r.URL.Path,
					"method", r.Method,
				)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
