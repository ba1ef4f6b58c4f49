package service_test

import (
	"context"
	"errors"
	"testing"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/observability/logger"
	"secretstore-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBindings serves BoundRoles keyed by user and workspace.
type fakeBindings struct {
	byUserWorkspace map[string][]domain.BoundRole
	err             error
}

func bindingKey(userID, workspaceID string) string {
	return userID + "|" + workspaceID
}

func (f *fakeBindings) ListByUserAndWorkspace(_ context.Context, userID, workspaceID string) ([]domain.BoundRole, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byUserWorkspace[bindingKey(userID, workspaceID)], nil
}

func boundRole(workspaceID string, caps domain.CapabilitySet) domain.BoundRole {
	return domain.BoundRole{
		Binding: domain.RoleBinding{ID: "b1", UserID: "u1", RoleID: "r1"},
		Role: domain.Role{
			ID:          "r1",
			Name:        "some-role",
			WorkspaceID: workspaceID,
			Create:      caps.Create,
			Read:        caps.Read,
			Update:      caps.Update,
			Delete:      caps.Delete,
			SeeLogs:     caps.SeeLogs,
			GiveRoles:   caps.GiveRoles,
			AddUsers:    caps.AddUsers,
			AdminRights: caps.AdminRights,
		},
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test-service", "error")
	require.NoError(t, err)
	return log
}

func TestPermissionEvaluator_EmptySetWithoutBindings(t *testing.T) {
	evaluator := service.NewPermissionEvaluator(&fakeBindings{
		byUserWorkspace: map[string][]domain.BoundRole{
			bindingKey("alice", "ws-other"): {boundRole("ws-other", domain.FullCapabilitySet())},
		},
	})

	// Bindings in other workspaces must not leak in.
	set, err := evaluator.ResolveCapabilities(context.Background(), "alice", "ws-1")
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())

	// Unknown workspace resolves to the empty set, not an error.
	set, err = evaluator.ResolveCapabilities(context.Background(), "alice", "no-such-workspace")
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

func TestPermissionEvaluator_UnionsAcrossBindings(t *testing.T) {
	evaluator := service.NewPermissionEvaluator(&fakeBindings{
		byUserWorkspace: map[string][]domain.BoundRole{
			bindingKey("alice", "ws-1"): {
				boundRole("ws-1", domain.CapabilitySet{Read: true}),
				boundRole("ws-1", domain.CapabilitySet{Create: true}),
			},
		},
	})

	set, err := evaluator.ResolveCapabilities(context.Background(), "alice", "ws-1")
	require.NoError(t, err)
	assert.True(t, set.Read)
	assert.True(t, set.Create)
	assert.False(t, set.Update)
	assert.False(t, set.AdminRights)
}

func TestPermissionEvaluator_FullControlGrantsEverything(t *testing.T) {
	evaluator := service.NewPermissionEvaluator(&fakeBindings{
		byUserWorkspace: map[string][]domain.BoundRole{
			bindingKey("creator", "ws-1"): {boundRole("ws-1", domain.FullCapabilitySet())},
		},
	})

	set, err := evaluator.ResolveCapabilities(context.Background(), "creator", "ws-1")
	require.NoError(t, err)
	assert.Equal(t, domain.FullCapabilitySet(), set)
}

func TestPermissionEvaluator_PropagatesStoreErrors(t *testing.T) {
	storeErr := errors.New("connection lost")
	evaluator := service.NewPermissionEvaluator(&fakeBindings{err: storeErr})

	_, err := evaluator.ResolveCapabilities(context.Background(), "alice", "ws-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
}

func TestGate_DeniesWithStableReason(t *testing.T) {
	evaluator := service.NewPermissionEvaluator(&fakeBindings{
		byUserWorkspace: map[string][]domain.BoundRole{
			bindingKey("alice", "ws-1"): {boundRole("ws-1", domain.CapabilitySet{Read: true})},
		},
	})
	gate := service.NewGate(evaluator, testLogger(t))

	// Same denial twice yields the same reason.
	for i := 0; i < 2; i++ {
		err := gate.Require(context.Background(), "alice", "ws-1", domain.CapCreate, "create secrets")
		require.Error(t, err)

		var denied *service.AccessDeniedError
		require.True(t, errors.As(err, &denied))
		assert.Equal(t, "insufficient permissions to create secrets", denied.Reason)
	}
}

func TestGate_ReasonNamesTheOperation(t *testing.T) {
	evaluator := service.NewPermissionEvaluator(&fakeBindings{
		byUserWorkspace: map[string][]domain.BoundRole{},
	})
	gate := service.NewGate(evaluator, testLogger(t))

	// The same missing capability produces a different reason per operation:
	// a member-listing denial must not talk about secrets.
	cases := []struct {
		cap    domain.Capability
		op     string
		reason string
	}{
		{domain.CapRead, "view this workspace", "insufficient permissions to view this workspace"},
		{domain.CapRead, "view workspace members", "insufficient permissions to view workspace members"},
		{domain.CapRead, "list secrets", "insufficient permissions to list secrets"},
		{domain.CapGiveRoles, "view roles", "insufficient permissions to view roles"},
		{domain.CapGiveRoles, "assign roles", "insufficient permissions to assign roles"},
	}
	for _, tc := range cases {
		err := gate.Require(context.Background(), "alice", "ws-1", tc.cap, tc.op)
		var denied *service.AccessDeniedError
		require.True(t, errors.As(err, &denied))
		assert.Equal(t, tc.reason, denied.Reason)
	}
}

func TestGate_AllowsGrantedCapability(t *testing.T) {
	evaluator := service.NewPermissionEvaluator(&fakeBindings{
		byUserWorkspace: map[string][]domain.BoundRole{
			bindingKey("alice", "ws-1"): {boundRole("ws-1", domain.CapabilitySet{SeeLogs: true})},
		},
	})
	gate := service.NewGate(evaluator, testLogger(t))

	require.NoError(t, gate.Require(context.Background(), "alice", "ws-1", domain.CapSeeLogs, "view logs"))

	// The granted flag does not imply any other flag.
	err := gate.Require(context.Background(), "alice", "ws-1", domain.CapGiveRoles, "manage roles")
	var denied *service.AccessDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, "insufficient permissions to manage roles", denied.Reason)
}
