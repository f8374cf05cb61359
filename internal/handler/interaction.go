package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"arbor/internal/config"
	"arbor/internal/domain/models/social"
	socialSvc "arbor/internal/domain/services/social"
	"arbor/internal/httputil"
)

// InteractionHandler serves the interaction ledger of one target kind
type InteractionHandler struct {
	kind               social.TargetKind
	interactionService socialSvc.InteractionService
	logger             *slog.Logger
}

// NewInteractionHandler creates an interaction handler for kind
func NewInteractionHandler(kind social.TargetKind, interactionService socialSvc.InteractionService, logger *slog.Logger) *InteractionHandler {
	return &InteractionHandler{
		kind:               kind,
		interactionService: interactionService,
		logger:             logger,
	}
}

// request builds the ledger key from the path and the caller
func (h *InteractionHandler) request(w http.ResponseWriter, r *http.Request) (*socialSvc.InteractionRequest, bool) {
	userID, ok := requireUser(w, r)
	if !ok {
		return nil, false
	}
	target, ok := targetParam(w, r, h.kind)
	if !ok {
		return nil, false
	}
	t, ok := interactionTypeParam(w, r.PathValue("type"))
	if !ok {
		return nil, false
	}

	return &socialSvc.InteractionRequest{Target: target, UserID: userID, Type: t}, true
}

// Summary returns counts per type plus the caller's own types
// GET /api/{kind}/{id}/interactions
func (h *InteractionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	target, ok := targetParam(w, r, h.kind)
	if !ok {
		return
	}

	summary, err := h.interactionService.Summary(r.Context(), target, httputil.GetUserID(r))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, summary)
}

// Add records the caller's interaction; repeating it is a no-op
// PUT /api/{kind}/{id}/interactions/{type}
func (h *InteractionHandler) Add(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}

	interaction, err := h.interactionService.AddInteraction(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, interaction)
}

// Remove DELETE /api/{kind}/{id}/interactions/{type}
func (h *InteractionHandler) Remove(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}

	if err := h.interactionService.RemoveInteraction(r.Context(), req); err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondNoContent(w)
}

// Toggle POST /api/{kind}/{id}/interactions/{type}/toggle
func (h *InteractionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	req, ok := h.request(w, r)
	if !ok {
		return
	}

	result, err := h.interactionService.ToggleInteraction(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}

// ListMine lists the caller's interactions of ?type=, newest first
// GET /api/users/me/interactions
func (h *InteractionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	t, ok := interactionTypeParam(w, r.URL.Query().Get("type"))
	if !ok {
		return
	}
	limit, err := httputil.QueryInt(r, "limit", config.DefaultInteractionListLimit)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	interactions, err := h.interactionService.ListUserInteractions(r.Context(), userID, t, limit)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, interactions)
}

func interactionTypeParam(w http.ResponseWriter, raw string) (social.InteractionType, bool) {
	t, ok := social.ParseInteractionType(raw)
	if !ok {
		httputil.RespondError(w, http.StatusBadRequest,
			fmt.Sprintf("interaction type must be one of %v", social.InteractionTypes))
		return "", false
	}
	return t, true
}
