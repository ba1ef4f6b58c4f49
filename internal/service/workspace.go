package service

import (
	"context"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/repo"

	"go.uber.org/zap"
)

var ErrWorkspaceNotFound = repo.ErrWorkspaceNotFound

// WorkspaceStore is the persistence surface the lifecycle manager needs.
type WorkspaceStore interface {
	CreateWithBootstrap(ctx context.Context, name, ownerID string) (*domain.Workspace, error)
	Get(ctx context.Context, id string) (*domain.Workspace, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Workspace, error)
	UpdateName(ctx context.Context, id, name string) (*domain.Workspace, error)
	SoftDelete(ctx context.Context, id string) error
}

// WorkspaceService manages the workspace lifecycle. Creation bootstraps the
// two standard roles, the creator's membership, and the creator's binding to
// full_control in one transaction, so a crash can never leave a workspace
// nobody can administer.
type WorkspaceService struct {
	workspaces WorkspaceStore
	gate       *Gate
	audit      *AuditLogger
	log        *logger.Logger
}

func NewWorkspaceService(workspaces WorkspaceStore, gate *Gate, audit *AuditLogger, log *logger.Logger) *WorkspaceService {
	return &WorkspaceService{
		workspaces: workspaces,
		gate:       gate,
		audit:      audit,
		log:        log,
	}
}

// Create bootstraps a new workspace for the actor. No capability check: any
// authenticated user may create a workspace and becomes its owner.
func (s *WorkspaceService) Create(ctx context.Context, actorID string, req *domain.CreateWorkspaceRequest) (*domain.Workspace, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.CreateWithBootstrap(ctx, req.Name, actorID)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "workspace created",
		logger.Module("workspace"),
		logger.Action("create"),
		zap.String("workspace_id", ws.ID),
		zap.String("owner_id", actorID),
	)

	s.audit.Record(ctx, actorID, domain.ActionCreate, domain.SubjectWorkspace, &ws.ID)
	return ws, nil
}

// Get returns one workspace. Requires read in that workspace.
func (s *WorkspaceService) Get(ctx context.Context, actorID, workspaceID string) (*domain.Workspace, error) {
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapRead, "view this workspace"); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.Get(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionRead, domain.SubjectWorkspace, &workspaceID)
	return ws, nil
}

// List returns the non-deleted workspaces the actor is a member of.
// Membership alone suffices; role bindings are not consulted. The audit
// entry carries no workspace scope: the listing spans all of them.
func (s *WorkspaceService) List(ctx context.Context, actorID string) ([]domain.Workspace, error) {
	workspaces, err := s.workspaces.ListForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionRead, domain.SubjectWorkspace, nil)
	return workspaces, nil
}

// Update renames a workspace. Requires admin_rights there.
func (s *WorkspaceService) Update(ctx context.Context, actorID, workspaceID string, req *domain.UpdateWorkspaceRequest) (*domain.Workspace, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapAdminRights, "rename this workspace"); err != nil {
		return nil, err
	}

	ws, err := s.workspaces.UpdateName(ctx, workspaceID, req.Name)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionUpdate, domain.SubjectWorkspace, &workspaceID)
	return ws, nil
}

// Delete soft-deletes a workspace. Requires admin_rights. Roles, bindings,
// secrets and logs stay in place under the deleted workspace.
func (s *WorkspaceService) Delete(ctx context.Context, actorID, workspaceID string) error {
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapAdminRights, "delete this workspace"); err != nil {
		return err
	}
	if err := s.workspaces.SoftDelete(ctx, workspaceID); err != nil {
		return err
	}

	s.log.Info(ctx, "workspace deleted",
		logger.Module("workspace"),
		logger.Action("delete"),
		zap.String("workspace_id", workspaceID),
		zap.String("actor_id", actorID),
	)

	s.audit.Record(ctx, actorID, domain.ActionDelete, domain.SubjectWorkspace, &workspaceID)
	return nil
}
