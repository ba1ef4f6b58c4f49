package service

import (
	"context"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/repo"
)

var ErrRoleBindingNotFound = repo.ErrRoleBindingNotFound

// RoleBindingStore is the persistence surface for role bindings.
type RoleBindingStore interface {
	Create(ctx context.Context, userID, roleID string) (*domain.RoleBinding, error)
	Get(ctx context.Context, id string) (*domain.BoundRole, error)
	ListByUser(ctx context.Context, userID string) ([]domain.BoundRole, error)
	ListByUserAndWorkspace(ctx context.Context, userID, workspaceID string) ([]domain.BoundRole, error)
	ListByRoleAndWorkspace(ctx context.Context, roleID, workspaceID string) ([]domain.BoundRole, error)
	Delete(ctx context.Context, id string) error
}

// RoleBindingService grants and revokes roles. Mutations are gated by
// give_roles in the workspace the role belongs to. Reading your own bindings
// is always allowed; reading another user's requires the capability per
// workspace.
type RoleBindingService struct {
	bindings RoleBindingStore
	roles    RoleStore
	gate     *Gate
	audit    *AuditLogger
}

func NewRoleBindingService(bindings RoleBindingStore, roles RoleStore, gate *Gate, audit *AuditLogger) *RoleBindingService {
	return &RoleBindingService{
		bindings: bindings,
		roles:    roles,
		gate:     gate,
		audit:    audit,
	}
}

// Create binds a user to a role. Duplicate (user, role) bindings are legal;
// the capability union makes them harmless.
func (s *RoleBindingService) Create(ctx context.Context, actorID string, req *domain.CreateRoleBindingRequest) (*domain.RoleBinding, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	role, err := s.roles.Get(ctx, req.RoleID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, role.WorkspaceID, domain.CapGiveRoles, "assign roles"); err != nil {
		return nil, err
	}

	binding, err := s.bindings.Create(ctx, req.UserID, req.RoleID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionCreate, domain.SubjectRoleBinding, &role.WorkspaceID)
	return binding, nil
}

// ListOwn returns the actor's bindings across all workspaces.
func (s *RoleBindingService) ListOwn(ctx context.Context, actorID string) ([]domain.BoundRole, error) {
	return s.bindings.ListByUser(ctx, actorID)
}

// ListByUser returns another user's bindings. The actor sees only the
// bindings in workspaces where they hold give_roles; their own bindings are
// returned unfiltered.
func (s *RoleBindingService) ListByUser(ctx context.Context, actorID, userID string) ([]domain.BoundRole, error) {
	bound, err := s.bindings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if actorID == userID {
		return bound, nil
	}

	allowed := make(map[string]bool)
	visible := make([]domain.BoundRole, 0, len(bound))
	for _, br := range bound {
		wsID := br.Role.WorkspaceID
		granted, seen := allowed[wsID]
		if !seen {
			var err error
			granted, err = s.gate.evaluator.HasCapability(ctx, actorID, wsID, domain.CapGiveRoles)
			if err != nil {
				return nil, err
			}
			allowed[wsID] = granted
		}
		if granted {
			visible = append(visible, br)
		}
	}
	return visible, nil
}

// ListByUserAndWorkspace returns a user's bindings in one workspace. Own
// bindings are free; anyone else's require give_roles there.
func (s *RoleBindingService) ListByUserAndWorkspace(ctx context.Context, actorID, userID, workspaceID string) ([]domain.BoundRole, error) {
	if actorID != userID {
		if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapGiveRoles, "view role assignments"); err != nil {
			return nil, err
		}
	}
	return s.bindings.ListByUserAndWorkspace(ctx, userID, workspaceID)
}

// ListByRoleAndWorkspace returns every binding of one role.
func (s *RoleBindingService) ListByRoleAndWorkspace(ctx context.Context, actorID, roleID, workspaceID string) ([]domain.BoundRole, error) {
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapGiveRoles, "view role assignments"); err != nil {
		return nil, err
	}
	return s.bindings.ListByRoleAndWorkspace(ctx, roleID, workspaceID)
}

// Delete revokes a binding. Revocation takes effect on the next capability
// check; there is no cached grant to invalidate.
func (s *RoleBindingService) Delete(ctx context.Context, actorID, bindingID string) error {
	existing, err := s.bindings.Get(ctx, bindingID)
	if err != nil {
		return err
	}
	if err := s.gate.Require(ctx, actorID, existing.Role.WorkspaceID, domain.CapGiveRoles, "revoke roles"); err != nil {
		return err
	}

	if err := s.bindings.Delete(ctx, bindingID); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, domain.ActionDelete, domain.SubjectRoleBinding, &existing.Role.WorkspaceID)
	return nil
}
