package service

import (
	"context"
	"errors"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/repo"
)

var (
	ErrRoleNotFound = repo.ErrRoleNotFound

	// ErrWorkspaceIDRequired is returned when a role query omits its
	// workspace scope. Roles only exist within a workspace.
	ErrWorkspaceIDRequired = errors.New("workspace_id is required")
)

// RoleStore is the persistence surface for roles.
type RoleStore interface {
	Create(ctx context.Context, req *domain.CreateRoleRequest) (*domain.Role, error)
	Get(ctx context.Context, id string) (*domain.Role, error)
	GetByName(ctx context.Context, name, workspaceID string) (*domain.Role, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Role, error)
	Update(ctx context.Context, id string, req *domain.UpdateRoleRequest) (*domain.Role, error)
	Delete(ctx context.Context, id string) error
}

// RoleService manages role definitions. Every operation is gated by the
// give_roles capability in the role's workspace; the workspace is taken from
// the stored role for id-addressed operations, never from the request.
type RoleService struct {
	roles RoleStore
	gate  *Gate
	audit *AuditLogger
}

func NewRoleService(roles RoleStore, gate *Gate, audit *AuditLogger) *RoleService {
	return &RoleService{
		roles: roles,
		gate:  gate,
		audit: audit,
	}
}

func (s *RoleService) Create(ctx context.Context, actorID string, req *domain.CreateRoleRequest) (*domain.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, req.WorkspaceID, domain.CapGiveRoles, "create roles"); err != nil {
		return nil, err
	}

	role, err := s.roles.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionCreate, domain.SubjectRole, &req.WorkspaceID)
	return role, nil
}

// List returns the roles of one workspace. The workspace scope is mandatory:
// there is no cross-workspace role listing.
func (s *RoleService) List(ctx context.Context, actorID, workspaceID string) ([]domain.Role, error) {
	if workspaceID == "" {
		return nil, ErrWorkspaceIDRequired
	}
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapGiveRoles, "view roles"); err != nil {
		return nil, err
	}

	roles, err := s.roles.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionRead, domain.SubjectRole, &workspaceID)
	return roles, nil
}

func (s *RoleService) GetByName(ctx context.Context, actorID, name, workspaceID string) (*domain.Role, error) {
	if workspaceID == "" {
		return nil, ErrWorkspaceIDRequired
	}
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapGiveRoles, "view roles"); err != nil {
		return nil, err
	}

	role, err := s.roles.GetByName(ctx, name, workspaceID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionRead, domain.SubjectRole, &workspaceID)
	return role, nil
}

// Update replaces a role's name and capability flags. The role's workspace is
// immutable; the gate runs against the stored workspace.
func (s *RoleService) Update(ctx context.Context, actorID, roleID string, req *domain.UpdateRoleRequest) (*domain.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, existing.WorkspaceID, domain.CapGiveRoles, "update roles"); err != nil {
		return nil, err
	}

	role, err := s.roles.Update(ctx, roleID, req)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionUpdate, domain.SubjectRole, &existing.WorkspaceID)
	return role, nil
}

// Delete removes a role. Bindings referencing it are cascade-deleted by the
// schema; bindings to other roles are untouched.
func (s *RoleService) Delete(ctx context.Context, actorID, roleID string) error {
	existing, err := s.roles.Get(ctx, roleID)
	if err != nil {
		return err
	}
	if err := s.gate.Require(ctx, actorID, existing.WorkspaceID, domain.CapGiveRoles, "delete roles"); err != nil {
		return err
	}

	if err := s.roles.Delete(ctx, roleID); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, domain.ActionDelete, domain.SubjectRole, &existing.WorkspaceID)
	return nil
}
