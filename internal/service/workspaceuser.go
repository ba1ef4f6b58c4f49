package service

import (
	"context"
	"errors"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/repo"
)

var (
	ErrWorkspaceUserNotFound = repo.ErrWorkspaceUserNotFound
	ErrAlreadyMember         = repo.ErrAlreadyMember
)

// WorkspaceUserStore is the persistence surface for memberships.
type WorkspaceUserStore interface {
	Create(ctx context.Context, workspaceID, userID string) (*domain.WorkspaceUser, error)
	Get(ctx context.Context, id string) (*domain.WorkspaceUser, error)
	GetByUserAndWorkspace(ctx context.Context, userID, workspaceID string) (*domain.WorkspaceUser, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.WorkspaceUser, error)
	Delete(ctx context.Context, id string) error
}

// WorkspaceUserService manages workspace membership. Membership is orthogonal
// to role possession: adding a member grants no capabilities, and removing
// one leaves their role bindings in place. Bindings are still consulted when
// listing members, to annotate each row with the member's role names.
type WorkspaceUserService struct {
	members  WorkspaceUserStore
	bindings BoundRoleReader
	gate     *Gate
	audit    *AuditLogger
}

func NewWorkspaceUserService(members WorkspaceUserStore, bindings BoundRoleReader, gate *Gate, audit *AuditLogger) *WorkspaceUserService {
	return &WorkspaceUserService{
		members:  members,
		bindings: bindings,
		gate:     gate,
		audit:    audit,
	}
}

// Add makes a user a member. Requires add_users in the workspace.
func (s *WorkspaceUserService) Add(ctx context.Context, actorID string, req *domain.CreateWorkspaceUserRequest) (*domain.WorkspaceUser, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, req.WorkspaceID, domain.CapAddUsers, "add workspace members"); err != nil {
		return nil, err
	}

	member, err := s.members.Create(ctx, req.WorkspaceID, req.UserID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionCreate, domain.SubjectWorkspaceUser, &req.WorkspaceID)
	return member, nil
}

// List returns the members of a workspace, each annotated with the names of
// the roles bound to them there. Requires read in the workspace.
func (s *WorkspaceUserService) List(ctx context.Context, actorID, workspaceID string) ([]domain.WorkspaceUserWithRoles, error) {
	if workspaceID == "" {
		return nil, ErrWorkspaceIDRequired
	}
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapRead, "view workspace members"); err != nil {
		return nil, err
	}

	members, err := s.members.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	enriched := make([]domain.WorkspaceUserWithRoles, 0, len(members))
	for _, m := range members {
		bound, err := s.bindings.ListByUserAndWorkspace(ctx, m.UserID, workspaceID)
		if err != nil {
			return nil, err
		}
		roles := make([]string, 0, len(bound))
		for _, br := range bound {
			roles = append(roles, br.Role.Name)
		}
		enriched = append(enriched, domain.WorkspaceUserWithRoles{WorkspaceUser: m, Roles: roles})
	}

	s.audit.Record(ctx, actorID, domain.ActionRead, domain.SubjectWorkspaceUser, &workspaceID)
	return enriched, nil
}

// GetOwn returns the actor's own membership row in a workspace. Reading your
// own membership needs no capability.
func (s *WorkspaceUserService) GetOwn(ctx context.Context, actorID, workspaceID string) (*domain.WorkspaceUser, error) {
	return s.members.GetByUserAndWorkspace(ctx, actorID, workspaceID)
}

// Check reports whether a user is a member of a workspace. Requires
// add_users, the same capability that mutates membership.
func (s *WorkspaceUserService) Check(ctx context.Context, actorID, workspaceID, userID string) (bool, error) {
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapAddUsers, "check workspace membership"); err != nil {
		return false, err
	}

	_, err := s.members.GetByUserAndWorkspace(ctx, userID, workspaceID)
	if err != nil {
		if errors.Is(err, repo.ErrWorkspaceUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Remove drops a membership. Requires add_users in the workspace the row
// belongs to. Role bindings survive removal; a re-added member gets their
// old capabilities back.
func (s *WorkspaceUserService) Remove(ctx context.Context, actorID, membershipID string) error {
	existing, err := s.members.Get(ctx, membershipID)
	if err != nil {
		return err
	}
	if err := s.gate.Require(ctx, actorID, existing.WorkspaceID, domain.CapAddUsers, "remove workspace members"); err != nil {
		return err
	}

	if err := s.members.Delete(ctx, membershipID); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, domain.ActionDelete, domain.SubjectWorkspaceUser, &existing.WorkspaceID)
	return nil
}
