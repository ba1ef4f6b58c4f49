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

type RoleBindingHandler struct {
	service *service.RoleBindingService
}

func NewRoleBindingHandler(service *service.RoleBindingService) *RoleBindingHandler {
	return &RoleBindingHandler{service: service}
}

// CreateRoleBinding handles POST /role-bindings
func (h *RoleBindingHandler) CreateRoleBinding(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateRoleBindingRequest
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

	log.Info(ctx, "role binding created",
		zap.String("binding_id", binding.ID),
		zap.String("user_id", req.UserID),
		zap.String("role_id", req.RoleID))

	writeJSON(w, http.StatusCreated, binding)
}

// ListOwnRoleBindings handles GET /role-bindings
func (h *RoleBindingHandler) ListOwnRoleBindings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	bindings, err := h.service.ListOwn(ctx, actorID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, bindings)
}

// ListRoleBindingsByUser handles GET /role-bindings/{id} where the path
// segment is a user id.
func (h *RoleBindingHandler) ListRoleBindingsByUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	userID := chi.URLParam(r, "id")
	if userID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "user id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	bindings, err := h.service.ListByUser(ctx, actorID, userID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, bindings)
}

// ListRoleBindingsByUserAndWorkspace handles GET /role-bindings/user/{userId}/workspace/{workspaceId}
func (h *RoleBindingHandler) ListRoleBindingsByUserAndWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	userID := chi.URLParam(r, "userId")
	workspaceID := chi.URLParam(r, "workspaceId")
	if userID == "" || workspaceID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "userId and workspaceId are required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	bindings, err := h.service.ListByUserAndWorkspace(ctx, actorID, userID, workspaceID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, bindings)
}

// ListRoleBindingsByRoleAndWorkspace handles GET /role-bindings/role/{roleId}/workspace/{workspaceId}
func (h *RoleBindingHandler) ListRoleBindingsByRoleAndWorkspace(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	roleID := chi.URLParam(r, "roleId")
	workspaceID := chi.URLParam(r, "workspaceId")
	if roleID == "" || workspaceID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "roleId and workspaceId are required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	bindings, err := h.service.ListByRoleAndWorkspace(ctx, actorID, roleID, workspaceID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, bindings)
}

// DeleteRoleBinding handles DELETE /role-bindings/{id}
func (h *RoleBindingHandler) DeleteRoleBinding(w http.ResponseWriter, r *http.Request) {
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

	log.Info(ctx, "role binding deleted",
		zap.String("binding_id", bindingID))

	w.WriteHeader(http.StatusNoContent)
}
