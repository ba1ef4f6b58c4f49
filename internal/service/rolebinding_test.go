package service_test

import (
	"context"
	"testing"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/repo"
	"secretstore-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRoleStore struct {
	byID map[string]*domain.Role
}

func (f *fakeRoleStore) Create(_ context.Context, req *domain.CreateRoleRequest) (*domain.Role, error) {
	role := &domain.Role{ID: "role-" + req.Name, Name: req.Name, WorkspaceID: req.WorkspaceID}
	f.byID[role.ID] = role
	return role, nil
}

func (f *fakeRoleStore) Get(_ context.Context, id string) (*domain.Role, error) {
	role, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrRoleNotFound
	}
	return role, nil
}

func (f *fakeRoleStore) GetByName(_ context.Context, name, workspaceID string) (*domain.Role, error) {
	for _, role := range f.byID {
		if role.Name == name && role.WorkspaceID == workspaceID {
			return role, nil
		}
	}
	return nil, repo.ErrRoleNotFound
}

func (f *fakeRoleStore) ListByWorkspace(_ context.Context, workspaceID string) ([]domain.Role, error) {
	var out []domain.Role
	for _, role := range f.byID {
		if role.WorkspaceID == workspaceID {
			out = append(out, *role)
		}
	}
	return out, nil
}

func (f *fakeRoleStore) Update(_ context.Context, id string, req *domain.UpdateRoleRequest) (*domain.Role, error) {
	role, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrRoleNotFound
	}
	role.Name = req.Name
	return role, nil
}

func (f *fakeRoleStore) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repo.ErrRoleNotFound
	}
	delete(f.byID, id)
	return nil
}

func newRoleBindingService(t *testing.T, bindings *fakeRoleBindingStore, roles *fakeRoleStore) *service.RoleBindingService {
	t.Helper()
	evaluator := service.NewPermissionEvaluator(bindings)
	gate := service.NewGate(evaluator, testLogger(t))
	audit := service.NewAuditLogger(
		&fakeLogWriter{},
		&fakeWorkspaces{byID: map[string]*domain.Workspace{}},
		&fakeSubscriptions{},
		&fakeChats{},
		evaluator,
		&fakeNotifier{},
		testLogger(t),
	)
	return service.NewRoleBindingService(bindings, roles, gate, audit)
}

func giveRolesBinding(userID, bindingID, workspaceID string) domain.BoundRole {
	return domain.BoundRole{
		Binding: domain.RoleBinding{ID: bindingID, UserID: userID, RoleID: "granter-" + workspaceID},
		Role:    domain.Role{ID: "granter-" + workspaceID, WorkspaceID: workspaceID, GiveRoles: true},
	}
}

const testRoleID = "3d2f8c41-9b6a-4c2e-8f1d-5a7e9b0c4d21"

func TestRoleBindingService_CreateGatedByRoleWorkspace(t *testing.T) {
	roles := &fakeRoleStore{byID: map[string]*domain.Role{
		testRoleID: {ID: testRoleID, Name: "viewer", WorkspaceID: "ws-1", Read: true},
	}}

	// Admin holds give_roles in ws-1.
	admin := &fakeRoleBindingStore{bound: []domain.BoundRole{
		giveRolesBinding("admin", "b0", "ws-1"),
	}}
	svc := newRoleBindingService(t, admin, roles)

	binding, err := svc.Create(context.Background(), "admin", &domain.CreateRoleBindingRequest{
		UserID: "carol",
		RoleID: testRoleID,
	})
	require.NoError(t, err)
	assert.Equal(t, "carol", binding.UserID)

	// A user without give_roles in the role's workspace is denied.
	nobody := newRoleBindingService(t, &fakeRoleBindingStore{}, roles)
	_, err = nobody.Create(context.Background(), "mallory", &domain.CreateRoleBindingRequest{
		UserID: "mallory",
		RoleID: testRoleID,
	})
	var denied *service.AccessDeniedError
	assert.ErrorAs(t, err, &denied)
}

func TestRoleBindingService_ListByUserFiltersByWorkspaceGrant(t *testing.T) {
	bindings := &fakeRoleBindingStore{bound: []domain.BoundRole{
		// Actor can give roles in ws-1 only.
		giveRolesBinding("admin", "b0", "ws-1"),
		// Target user holds bindings in ws-1 and ws-2.
		{
			Binding: domain.RoleBinding{ID: "b1", UserID: "carol", RoleID: "r1"},
			Role:    domain.Role{ID: "r1", WorkspaceID: "ws-1", Read: true},
		},
		{
			Binding: domain.RoleBinding{ID: "b2", UserID: "carol", RoleID: "r2"},
			Role:    domain.Role{ID: "r2", WorkspaceID: "ws-2", Read: true},
		},
	}}
	svc := newRoleBindingService(t, bindings, &fakeRoleStore{byID: map[string]*domain.Role{}})

	visible, err := svc.ListByUser(context.Background(), "admin", "carol")
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "b1", visible[0].Binding.ID)

	// A user listing themselves sees everything.
	own, err := svc.ListByUser(context.Background(), "carol", "carol")
	require.NoError(t, err)
	assert.Len(t, own, 2)
}

func TestRoleBindingService_DeleteRequiresGiveRoles(t *testing.T) {
	bindings := &fakeRoleBindingStore{bound: []domain.BoundRole{
		{
			Binding: domain.RoleBinding{ID: "b1", UserID: "carol", RoleID: "r1"},
			Role:    domain.Role{ID: "r1", WorkspaceID: "ws-1", Read: true},
		},
	}}
	svc := newRoleBindingService(t, bindings, &fakeRoleStore{byID: map[string]*domain.Role{}})

	// carol cannot revoke her own binding without give_roles.
	err := svc.Delete(context.Background(), "carol", "b1")
	var denied *service.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	// Grant give_roles and retry.
	bindings.bound = append(bindings.bound, giveRolesBinding("admin", "b0", "ws-1"))
	require.NoError(t, svc.Delete(context.Background(), "admin", "b1"))

	_, err = svc.ListByUserAndWorkspace(context.Background(), "carol", "carol", "ws-1")
	require.NoError(t, err)
}
