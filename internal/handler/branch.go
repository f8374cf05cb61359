package handler

import (
	"log/slog"
	"net/http"

	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/httputil"

	"github.com/google/uuid"
)

// BranchHandler handles branch HTTP requests
type BranchHandler struct {
	branchService socialSvc.BranchService
	logger        *slog.Logger
}

// NewBranchHandler creates a new branch handler
func NewBranchHandler(branchService socialSvc.BranchService, logger *slog.Logger) *BranchHandler {
	return &BranchHandler{
		branchService: branchService,
		logger:        logger,
	}
}

// setDefaultBranchRequest is the body of PUT /api/projects/{id}/default-branch
type setDefaultBranchRequest struct {
	BranchID string `json:"branch_id"`
}

// CreateBranch creates a non-default branch
// POST /api/projects/{id}/branches
// Returns 201 if created, 409 with the existing branch if the name is taken
func (h *BranchHandler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req socialSvc.CreateBranchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.ProjectID = projectID
	req.AuthorID = userID

	branch, err := h.branchService.CreateBranch(r.Context(), &req)
	if err != nil {
		HandleCreateConflict(w, err, func(id string) (*social.Branch, error) {
			return h.branchService.GetBranch(r.Context(), id, userID)
		})
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, branch)
}

// ListBranches GET /api/projects/{id}/branches
func (h *BranchHandler) ListBranches(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	branches, err := h.branchService.ListBranches(r.Context(), projectID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, branches)
}

// GetDefaultBranch GET /api/projects/{id}/default-branch
func (h *BranchHandler) GetDefaultBranch(w http.ResponseWriter, r *http.Request) {
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	branch, err := h.branchService.GetDefaultBranch(r.Context(), projectID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, branch)
}

// SetDefaultBranch moves the default flag to another branch of the project
// PUT /api/projects/{id}/default-branch
func (h *BranchHandler) SetDefaultBranch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req setDefaultBranchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := uuid.Validate(req.BranchID); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "branch_id must be a UUID")
		return
	}

	branch, err := h.branchService.SetDefaultBranch(r.Context(), projectID, req.BranchID, userID)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, branch)
}

// GetBranch GET /api/branches/{id}
func (h *BranchHandler) GetBranch(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Branch ID")
	if !ok {
		return
	}

	branch, err := h.branchService.GetBranch(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, branch)
}

// UpdateBranch PATCH /api/branches/{id}
func (h *BranchHandler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Branch ID")
	if !ok {
		return
	}

	var req socialSvc.UpdateBranchRequest
	if !decodeBody(w, r, &req) {
		return
	}

	branch, err := h.branchService.UpdateBranch(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, branch)
}

// DeleteBranch deletes a branch. The default branch can only be deleted
// with ?promote=<branch id> naming its replacement.
// DELETE /api/branches/{id}
func (h *BranchHandler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Branch ID")
	if !ok {
		return
	}

	promoteID := r.URL.Query().Get("promote")
	if promoteID != "" {
		if err := uuid.Validate(promoteID); err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "promote must be a UUID")
			return
		}
	}

	if err := h.branchService.DeleteBranch(r.Context(), id, userID, promoteID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
