package handler

import (
	"net/http"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/service"

	"go.uber.org/zap"
)

type ChatBindingHandler struct {
	service *service.ChatBindingService
}

func NewChatBindingHandler(service *service.ChatBindingService) *ChatBindingHandler {
	return &ChatBindingHandler{service: service}
}

// CreateChatBinding handles POST /chat-bindings. It mints a fresh pairing
// code for the authenticated user; the code is handed to the bot out of band.
func (h *ChatBindingHandler) CreateChatBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	binding, err := h.service.Create(ctx, actorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "chat binding created",
		zap.String("user_id", actorID))

	writeJSON(w, http.StatusCreated, binding)
}

// GetChatBinding handles GET /chat-bindings
func (h *ChatBindingHandler) GetChatBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	binding, err := h.service.Get(ctx, actorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, binding)
}

// PairChatBinding handles PUT /chat-bindings. The caller is the bot relay,
// authenticated by the origin-check middleware rather than a user token, so
// no claims are read here.
func (h *ChatBindingHandler) PairChatBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	var req domain.PairChatBindingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	binding, err := h.service.Pair(ctx, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "chat binding paired",
		zap.String("user_id", binding.UserID))

	writeJSON(w, http.StatusOK, binding)
}

// DeleteChatBinding handles DELETE /chat-bindings
func (h *ChatBindingHandler) DeleteChatBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, actorID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "chat binding deleted",
		zap.String("user_id", actorID))

	w.WriteHeader(http.StatusNoContent)
}
