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

type RoleHandler struct {
	service *service.RoleService
}

func NewRoleHandler(service *service.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// CreateRole handles POST /roles
func (h *RoleHandler) CreateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	role, err := h.service.Create(ctx, actorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "role created",
		zap.String("role_id", role.ID),
		zap.String("workspace_id", role.WorkspaceID))

	writeJSON(w, http.StatusCreated, role)
}

// ListRoles handles GET /roles?workspace_id=
func (h *RoleHandler) ListRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	workspaceID := r.URL.Query().Get("workspace_id")

	roles, err := h.service.List(ctx, actorID, workspaceID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, roles)
}

// GetRoleByName handles GET /roles/{role}?workspace_id= where the path
// segment is a role name.
func (h *RoleHandler) GetRoleByName(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	roleName := chi.URLParam(r, "role")
	if roleName == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "role name is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	workspaceID := r.URL.Query().Get("workspace_id")

	role, err := h.service.GetByName(ctx, actorID, roleName, workspaceID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, role)
}

// UpdateRole handles PUT /roles/{role} where the path segment is a role id.
func (h *RoleHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	roleID := chi.URLParam(r, "role")
	if roleID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "role id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	var req domain.UpdateRoleRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	role, err := h.service.Update(ctx, actorID, roleID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "role updated",
		zap.String("role_id", roleID),
		zap.String("workspace_id", role.WorkspaceID))

	writeJSON(w, http.StatusOK, role)
}

// DeleteRole handles DELETE /roles/{role} where the path segment is a role id.
func (h *RoleHandler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	roleID := chi.URLParam(r, "role")
	if roleID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "role id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, actorID, roleID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "role deleted",
		zap.String("role_id", roleID))

	w.WriteHeader(http.StatusNoContent)
}
