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

type WorkspaceUserHandler struct {
	service *service.WorkspaceUserService
}

func NewWorkspaceUserHandler(service *service.WorkspaceUserService) *WorkspaceUserHandler {
	return &WorkspaceUserHandler{service: service}
}

// AddWorkspaceUser handles POST /workspace-users
func (h *WorkspaceUserHandler) AddWorkspaceUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	var req domain.CreateWorkspaceUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	member, err := h.service.Add(ctx, actorID, &req)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "workspace member added",
		zap.String("workspace_id", req.WorkspaceID),
		zap.String("user_id", req.UserID))

	writeJSON(w, http.StatusCreated, member)
}

// ListWorkspaceUsers handles GET /workspace-users?workspace_id=
func (h *WorkspaceUserHandler) ListWorkspaceUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	workspaceID := r.URL.Query().Get("workspace_id")

	members, err := h.service.List(ctx, actorID, workspaceID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

// GetOwnMembership handles GET /workspace-users/me/{workspaceId}
func (h *WorkspaceUserHandler) GetOwnMembership(w http.ResponseWriter, r *http.Request) {
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

	member, err := h.service.GetOwn(ctx, actorID, workspaceID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, member)
}

// CheckMembership handles GET /workspace-users/check/{workspaceId}/{userId}
func (h *WorkspaceUserHandler) CheckMembership(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	workspaceID := chi.URLParam(r, "workspaceId")
	userID := chi.URLParam(r, "userId")
	if workspaceID == "" || userID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "workspaceId and userId are required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	isMember, err := h.service.Check(ctx, actorID, workspaceID, userID)
	if err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"is_member": isMember})
}

// RemoveWorkspaceUser handles DELETE /workspace-users/{id}
func (h *WorkspaceUserHandler) RemoveWorkspaceUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.GetLogger(ctx)

	membershipID := chi.URLParam(r, "id")
	if membershipID == "" {
		httperr.BadRequest400(w, ctx, httperr.ErrCodeInvalidParameter, "id is required")
		return
	}

	actorID, ok := requireActor(w, ctx)
	if !ok {
		return
	}

	if err := h.service.Remove(ctx, actorID, membershipID); err != nil {
		handleServiceError(w, ctx, log, err)
		return
	}

	log.Info(ctx, "workspace member removed",
		zap.String("membership_id", membershipID))

	w.WriteHeader(http.StatusNoContent)
}
