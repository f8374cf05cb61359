package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"arbor/internal/domain"
	"arbor/internal/domain/models/social"
	"arbor/internal/httputil"

	"github.com/google/uuid"
)

// handleError writes the problem document for err.
func handleError(w http.ResponseWriter, err error) {
	problemFor(err).Write(w)
}

// problemFor maps domain errors to problem documents. Permission denials and
// conflicts carry their structured fields as extension members. Unexpected
// errors are logged and reported as a generic 500.
func problemFor(err error) *httputil.Problem {
	var (
		conflictErr *domain.ConflictError
		deniedErr   *domain.PermissionDeniedError
	)

	switch {
	case errors.Is(err, domain.ErrValidation):
		return httputil.NewProblem(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return httputil.NewProblem(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return httputil.NewProblem(http.StatusUnauthorized, err.Error())
	case errors.As(err, &deniedErr):
		return httputil.NewProblem(http.StatusForbidden, deniedErr.Error()).
			With("action", deniedErr.Action).
			With("target_kind", deniedErr.TargetKind).
			With("target_id", deniedErr.TargetID).
			With("reason", deniedErr.Reason)
	case errors.Is(err, domain.ErrForbidden):
		return httputil.NewProblem(http.StatusForbidden, err.Error())
	case errors.As(err, &conflictErr):
		return httputil.NewProblem(http.StatusConflict, conflictErr.Error()).
			With("resource_type", conflictErr.ResourceType).
			With("resource_id", conflictErr.ResourceID)
	default:
		slog.Error("unhandled error", "error", err)
		return httputil.NewProblem(http.StatusInternalServerError, "internal server error")
	}
}

// HandleCreateConflict handles conflicts during creation by returning the existing resource with 409.
// If the error is a ConflictError naming the existing resource, fetchFn retrieves it by id.
func HandleCreateConflict[T any](w http.ResponseWriter, err error, fetchFn func(id string) (*T, error)) {
	var conflictErr *domain.ConflictError
	if errors.As(err, &conflictErr) && conflictErr.ResourceID != "" {
		existing, fetchErr := fetchFn(conflictErr.ResourceID)
		if fetchErr != nil {
			// The existing resource may not be visible to the caller
			handleError(w, err)
			return
		}

		httputil.RespondJSON(w, http.StatusConflict, existing)
		return
	}

	handleError(w, err)
}

// PathParam returns the named path value, which must be a UUID.
// On failure it writes a 400 and returns false.
func PathParam(w http.ResponseWriter, r *http.Request, name, label string) (string, bool) {
	value := r.PathValue(name)
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, label+" is required")
		return "", false
	}
	if err := uuid.Validate(value); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, label+" must be a UUID")
		return "", false
	}
	return value, true
}

// requireUser returns the caller's id, writing a 401 for anonymous requests
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// targetParam builds a Target of kind from the {id} path value
func targetParam(w http.ResponseWriter, r *http.Request, kind social.TargetKind) (social.Target, bool) {
	id, ok := PathParam(w, r, "id", string(kind)+" ID")
	if !ok {
		return social.Target{}, false
	}
	return social.Target{Kind: kind, ID: id}, true
}

// decodeBody parses the JSON body, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := httputil.ParseJSON(w, r, dest); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}
