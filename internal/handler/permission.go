package handler

import (
	"log/slog"
	"net/http"

	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/httputil"
)

// PermissionHandler serves the permissions of one target kind (projects or branches)
type PermissionHandler struct {
	kind              social.TargetKind
	permissionService socialSvc.PermissionService
	logger            *slog.Logger
}

// NewPermissionHandler creates a permission handler for kind
func NewPermissionHandler(kind social.TargetKind, permissionService socialSvc.PermissionService, logger *slog.Logger) *PermissionHandler {
	return &PermissionHandler{
		kind:              kind,
		permissionService: permissionService,
		logger:            logger,
	}
}

// GetPermissions returns the effective record; the allow-list is owner only
// GET /api/{kind}/{id}/permissions
func (h *PermissionHandler) GetPermissions(w http.ResponseWriter, r *http.Request) {
	target, ok := targetParam(w, r, h.kind)
	if !ok {
		return
	}

	perms, err := h.permissionService.GetPermissions(r.Context(), target, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, perms)
}

// SetPermissions replaces the record; owner only
// PUT /api/{kind}/{id}/permissions
func (h *PermissionHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	target, ok := targetParam(w, r, h.kind)
	if !ok {
		return
	}

	var input socialSvc.PermissionsInput
	if !decodeBody(w, r, &input) {
		return
	}

	perms, err := h.permissionService.SetPermissions(r.Context(), target, userID, &input)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, perms)
}

// DeletePermissions reverts the target to public defaults
// DELETE /api/{kind}/{id}/permissions
func (h *PermissionHandler) DeletePermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	target, ok := targetParam(w, r, h.kind)
	if !ok {
		return
	}

	if err := h.permissionService.DeletePermissions(r.Context(), target, userID); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// CheckPermission evaluates ?action= for the caller. A denial is still a
// 200 with granted=false; only a missing target or bad action is an error.
// GET /api/{kind}/{id}/permissions/check
func (h *PermissionHandler) CheckPermission(w http.ResponseWriter, r *http.Request) {
	target, ok := targetParam(w, r, h.kind)
	if !ok {
		return
	}

	action := social.Action(r.URL.Query().Get("action"))
	if action == "" {
		action = social.ActionView
	}

	decision, err := h.permissionService.EvaluatePermission(r.Context(), httputil.GetUserID(r), target, action)
	if err != nil && decision == nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, decision)
}
