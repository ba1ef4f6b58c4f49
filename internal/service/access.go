package service

import (
	"context"
	"fmt"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/observability/logger"

	"go.uber.org/zap"
)

// AccessDeniedError carries the reason a gated operation was refused. Handlers
// map it to 403 and put the reason in the response body.
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return e.Reason
}

// denied builds the error for a refused operation. The label names what the
// caller was trying to do, so a member listing denial reads differently from
// a secret read denial even though both check the same capability.
func denied(op string) *AccessDeniedError {
	if op == "" {
		return &AccessDeniedError{Reason: "insufficient permissions"}
	}
	return &AccessDeniedError{Reason: "insufficient permissions to " + op}
}

// BoundRoleReader resolves the roles bound to a user within one workspace.
type BoundRoleReader interface {
	ListByUserAndWorkspace(ctx context.Context, userID, workspaceID string) ([]domain.BoundRole, error)
}

// PermissionEvaluator computes a user's effective capability set in a
// workspace. Capabilities are unioned across every role bound to the user
// there. Every check hits the database so revoking a binding takes effect
// immediately.
type PermissionEvaluator struct {
	bindings BoundRoleReader
}

func NewPermissionEvaluator(bindings BoundRoleReader) *PermissionEvaluator {
	return &PermissionEvaluator{bindings: bindings}
}

// ResolveCapabilities returns the union of flags across the user's bindings
// in the workspace. A user with no bindings there, or an unknown workspace,
// gets the empty set rather than an error.
func (e *PermissionEvaluator) ResolveCapabilities(ctx context.Context, userID, workspaceID string) (domain.CapabilitySet, error) {
	bound, err := e.bindings.ListByUserAndWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return domain.CapabilitySet{}, fmt.Errorf("resolve capabilities: %w", err)
	}
	var set domain.CapabilitySet
	for _, br := range bound {
		set = set.Union(br.Role.Capabilities())
	}
	return set, nil
}

// HasCapability reports whether the user holds the capability in the workspace.
func (e *PermissionEvaluator) HasCapability(ctx context.Context, userID, workspaceID string, c domain.Capability) (bool, error) {
	set, err := e.ResolveCapabilities(ctx, userID, workspaceID)
	if err != nil {
		return false, err
	}
	return set.Has(c), nil
}

// Gate is the single enforcement point the entity services call before any
// mutation or read. The workspace passed in must be derived from the resource
// being acted on, never from anything the caller claims.
type Gate struct {
	evaluator *PermissionEvaluator
	log       *logger.Logger
}

func NewGate(evaluator *PermissionEvaluator, log *logger.Logger) *Gate {
	return &Gate{evaluator: evaluator, log: log}
}

// Require returns nil when the user holds the capability in the workspace and
// an AccessDeniedError otherwise. The op label names the refused operation and
// ends up verbatim in the denial reason.
func (g *Gate) Require(ctx context.Context, userID, workspaceID string, c domain.Capability, op string) error {
	ok, err := g.evaluator.HasCapability(ctx, userID, workspaceID, c)
	if err != nil {
		return err
	}
	if !ok {
		g.log.Warn(ctx, "access denied",
			logger.Module("access"),
			logger.Action("authorization"),
			zap.String("actor_id", userID),
			zap.String("workspace_id", workspaceID),
			zap.String("capability", c.String()),
		)
		return denied(op)
	}
	return nil
}
