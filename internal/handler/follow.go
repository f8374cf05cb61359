package handler

import (
	"log/slog"
	"net/http"

	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/httputil"
)

// FollowHandler handles follow graph HTTP requests
type FollowHandler struct {
	followService socialSvc.FollowService
	logger        *slog.Logger
}

// NewFollowHandler creates a new follow handler
func NewFollowHandler(followService socialSvc.FollowService, logger *slog.Logger) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		logger:        logger,
	}
}

// Follow makes the caller follow {id}. Repeating it returns the same edge.
// PUT /api/users/{id}/follow
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	followedID, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	follow, err := h.followService.Follow(r.Context(), userID, followedID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, follow)
}

// Unfollow removes the edge; a missing edge is not an error
// DELETE /api/users/{id}/follow
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	followedID, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	if err := h.followService.Unfollow(r.Context(), userID, followedID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// IsFollowing reports whether the caller follows {id}
// GET /api/users/{id}/follow
func (h *FollowHandler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	followedID, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	following, err := h.followService.IsFollowing(r.Context(), userID, followedID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"following": following})
}

// ListFollowers GET /api/users/{id}/followers
func (h *FollowHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	follows, err := h.followService.ListFollowers(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, follows)
}

// ListFollowing GET /api/users/{id}/following
func (h *FollowHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	follows, err := h.followService.ListFollowing(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, follows)
}

// Counts GET /api/users/{id}/follow-counts
func (h *FollowHandler) Counts(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	counts, err := h.followService.Counts(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, counts)
}
