package handler

import (
	"log/slog"
	"net/http"

	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/httputil"
)

// ProjectHandler handles project HTTP requests
type ProjectHandler struct {
	projectService socialSvc.ProjectService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projectService socialSvc.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// CreateProject creates a project with its "main" branch
// POST /api/projects
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req socialSvc.CreateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.AuthorID = userID

	project, err := h.projectService.CreateProject(r.Context(), &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, project)
}

// GetProject GET /api/projects/{id}
func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(r.Context(), id, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// ListUserProjects lists the projects of {id} visible to the caller
// GET /api/users/{id}/projects
func (h *ProjectHandler) ListUserProjects(w http.ResponseWriter, r *http.Request) {
	authorID, ok := PathParam(w, r, "id", "User ID")
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjectsByAuthor(r.Context(), authorID, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, projects)
}

// UpdateProject PATCH /api/projects/{id}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	var req socialSvc.UpdateProjectRequest
	if !decodeBody(w, r, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(r.Context(), id, userID, &req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, project)
}

// DeleteProject removes the project with its branches, posts, media and ledger rows
// DELETE /api/projects/{id}
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	id, ok := PathParam(w, r, "id", "Project ID")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(r.Context(), id, userID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}
