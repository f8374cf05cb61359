package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/httputil"
)

// UserHandler handles user profile HTTP requests
type UserHandler struct {
	userService socialSvc.UserService
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService socialSvc.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// RegisterMe creates the local record for the authenticated identity
// POST /api/users/me
// Returns 201 if created, 409 with the existing user if already registered
func (h *UserHandler) RegisterMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req socialSvc.RegisterUserRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ID = userID
	if strings.TrimSpace(req.Email) == "" {
		req.Email = httputil.GetUserEmail(r)
	}

	user, err := h.userService.RegisterUser(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*social.User, error) {
			return h.userService.GetUser(r.Context(), id)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, user)
}

// GetMe returns the caller's profile
// GET /api/users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// UpdateMe updates the caller's profile
// PATCH /api/users/me
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req socialSvc.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// GetUser returns a user's public profile
// GET /api/users/{id}
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}

// FindUser looks a user up by email
// GET /api/users?email=
func (h *UserHandler) FindUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		httputil.RespondError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	user, err := h.userService.GetUserByEmail(r.Context(), email)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, user)
}
