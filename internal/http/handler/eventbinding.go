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

type EventBindingHandler struct {
	service *service.EventBindingService
}

func NewEventBindingHandler(service *service.EventBindingService) *EventBindingHandler {
	return &EventBindingHandler{service: service}
}

// CreateEventBinding handles POST /event-bindings
func (h *EventBindingHandler) CreateEventBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateEventBindingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	binding, err := h.service.Create(ctx, actorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "event binding created",
		zap.String("binding_id", binding.ID),
		zap.String("workspace_id", binding.WorkspaceID),
		zap.String("action", string(binding.Type)))

	writeJSON(w, http.StatusCreated, binding)
}

// ListEventBindings handles GET /event-bindings
func (h *EventBindingHandler) ListEventBindings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	bindings, err := h.service.List(ctx, actorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, bindings)
}

// UpdateEventBinding handles PUT /event-bindings/{id}
func (h *EventBindingHandler) UpdateEventBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	bindingID := chi.URLParam(r, "id")
	if bindingID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	var req domain.UpdateEventBindingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	binding, err := h.service.Update(ctx, actorID, bindingID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "event binding updated",
		zap.String("binding_id", bindingID),
		zap.String("action", string(binding.Type)))

	writeJSON(w, http.StatusOK, binding)
}

// DeleteEventBinding handles DELETE /event-bindings/{id}
func (h *EventBindingHandler) DeleteEventBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	bindingID := chi.URLParam(r, "id")
	if bindingID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, actorID, bindingID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "event binding deleted",
		zap.String("binding_id", bindingID))

	w.WriteHeader(http.StatusNoContent)
}
