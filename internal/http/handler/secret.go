package handler

import (
	"net/http"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/http/httperr"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SecretHandler struct {
	service *service.SecretService
}

func NewSecretHandler(service *service.SecretService) *SecretHandler {
	return &SecretHandler{service: service}
}

// CreateSecret handles POST /secrets
func (h *SecretHandler) CreateSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateSecretRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	secret, err := h.service.Create(ctx, actorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "secret created",
		zap.String("secret_id", secret.ID),
		zap.String("workspace_id", secret.WorkspaceID))

	writeJSON(w, http.StatusCreated, secret)
}

// ListSecretsByWorkspace handles GET /secrets/workspace/{workspaceId}
func (h *SecretHandler) ListSecretsByWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	if workspaceID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "workspaceId is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	secrets, err := h.service.ListByWorkspace(ctx, actorID, workspaceID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, secrets)
}

// GetSecret handles GET /secrets/{id}
func (h *SecretHandler) GetSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	secretID := chi.URLParam(r, "id")
	if secretID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	secret, err := h.service.Get(ctx, actorID, secretID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, secret)
}

// UpdateSecret handles PUT /secrets/{id}
func (h *SecretHandler) UpdateSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	secretID := chi.URLParam(r, "id")
	if secretID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	var req domain.UpdateSecretRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	secret, err := h.service.Update(ctx, actorID, secretID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "secret updated",
		zap.String("secret_id", secretID),
		zap.String("workspace_id", secret.WorkspaceID))

	writeJSON(w, http.StatusOK, secret)
}

// DeleteSecret handles DELETE /secrets/{id}
func (h *SecretHandler) DeleteSecret(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	secretID := chi.URLParam(r, "id")
	if secretID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, actorID, secretID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "secret deleted",
		zap.String("secret_id", secretID))

	w.WriteHeader(http.StatusNoContent)
}
