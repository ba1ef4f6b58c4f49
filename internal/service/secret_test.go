package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"secretstore-api/internal/crypto/secretval"
	"secretstore-api/internal/domain"
	"secretstore-api/internal/repo"
	"secretstore-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCipherKey   = "6368616e676520746869732070617373776f726420746f206120736563726574"
	testWorkspaceID = "8f14e45f-ceea-467f-9e5f-624d2f6d8a3b"
)

type fakeSecretStore struct {
	byID map[string]*domain.Secret
}

func newFakeSecretStore() *fakeSecretStore {
	return &fakeSecretStore{byID: make(map[string]*domain.Secret)}
}

func (f *fakeSecretStore) Create(_ context.Context, s *domain.Secret) error {
	if s.ID == "" {
		s.ID = "sec-" + s.Name
	}
	stored := *s
	f.byID[s.ID] = &stored
	return nil
}

func (f *fakeSecretStore) Get(_ context.Context, id string) (*domain.Secret, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrSecretNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSecretStore) ListByWorkspace(_ context.Context, workspaceID string) ([]domain.Secret, error) {
	var out []domain.Secret
	for _, s := range f.byID {
		if s.WorkspaceID == workspaceID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeSecretStore) Update(_ context.Context, id string, upd repo.SecretUpdate) (*domain.Secret, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrSecretNotFound
	}
	if upd.Name != nil {
		s.Name = *upd.Name
	}
	if upd.Value != nil {
		s.Value = *upd.Value
	}
	if upd.ClearExpiry {
		s.ExpiresAt = nil
	} else if upd.ExpiresAt != nil {
		s.ExpiresAt = upd.ExpiresAt
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSecretStore) Delete(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repo.ErrSecretNotFound
	}
	delete(f.byID, id)
	return nil
}

func newSecretService(t *testing.T, store service.SecretStore, caps domain.CapabilitySet) *service.SecretService {
	t.Helper()
	cipher, err := secretval.New(testCipherKey)
	require.NoError(t, err)

	evaluator := service.NewPermissionEvaluator(&fakeBindings{
		byUserWorkspace: map[string][]domain.BoundRole{
			bindingKey("alice", testWorkspaceID): {boundRole(testWorkspaceID, caps)},
		},
	})
	gate := service.NewGate(evaluator, testLogger(t))
	audit := service.NewAuditLogger(
		&fakeLogWriter{},
		&fakeWorkspaces{byID: map[string]*domain.Workspace{testWorkspaceID: {ID: testWorkspaceID, Name: "prod"}}},
		&fakeSubscriptions{},
		&fakeChats{},
		evaluator,
		&fakeNotifier{},
		testLogger(t),
	)
	return service.NewSecretService(store, cipher, gate, audit)
}

func TestSecretService_ValueEncryptedAtRest(t *testing.T) {
	store := newFakeSecretStore()
	svc := newSecretService(t, store, domain.FullCapabilitySet())

	created, err := svc.Create(context.Background(), "alice", &domain.CreateSecretRequest{
		Name:        "db-password",
		Value:       "hunter2",
		WorkspaceID: testWorkspaceID,
	})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", created.Value)

	// The stored value is ciphertext in iv:payload hex form.
	stored := store.byID[created.ID]
	assert.NotEqual(t, "hunter2", stored.Value)
	assert.Contains(t, stored.Value, ":")
	assert.NotContains(t, stored.Value, "hunter2")

	// Reads decrypt back to the original.
	got, err := svc.Get(context.Background(), "alice", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Value)
}

func TestSecretService_ListDecryptsAllValues(t *testing.T) {
	store := newFakeSecretStore()
	svc := newSecretService(t, store, domain.FullCapabilitySet())

	for _, v := range []string{"", "plain", "with:colon"} {
		_, err := svc.Create(context.Background(), "alice", &domain.CreateSecretRequest{
			Name:        "s-" + strings.ReplaceAll(v, ":", "_"),
			Value:       v,
			WorkspaceID: testWorkspaceID,
		})
		require.NoError(t, err)
	}

	secrets, err := svc.ListByWorkspace(context.Background(), "alice", testWorkspaceID)
	require.NoError(t, err)
	require.Len(t, secrets, 3)

	values := make(map[string]bool)
	for _, s := range secrets {
		values[s.Value] = true
	}
	assert.True(t, values[""])
	assert.True(t, values["plain"])
	assert.True(t, values["with:colon"])
}

func TestSecretService_OperationsAreGatedPerVerb(t *testing.T) {
	store := newFakeSecretStore()

	// Seed via a fully-privileged service.
	full := newSecretService(t, store, domain.FullCapabilitySet())
	created, err := full.Create(context.Background(), "alice", &domain.CreateSecretRequest{
		Name:        "api-key",
		Value:       "k",
		WorkspaceID: testWorkspaceID,
	})
	require.NoError(t, err)

	// Read-only can read but not create, update, or delete.
	readOnly := newSecretService(t, store, domain.CapabilitySet{Read: true})

	_, err = readOnly.Get(context.Background(), "alice", created.ID)
	require.NoError(t, err)

	_, err = readOnly.Create(context.Background(), "alice", &domain.CreateSecretRequest{
		Name:        "nope",
		WorkspaceID: testWorkspaceID,
	})
	var denied *service.AccessDeniedError
	require.True(t, errors.As(err, &denied))

	newName := "renamed"
	_, err = readOnly.Update(context.Background(), "alice", created.ID, &domain.UpdateSecretRequest{Name: &newName})
	require.True(t, errors.As(err, &denied))

	err = readOnly.Delete(context.Background(), "alice", created.ID)
	require.True(t, errors.As(err, &denied))
}

func TestSecretService_UpdateReEncryptsValue(t *testing.T) {
	store := newFakeSecretStore()
	svc := newSecretService(t, store, domain.FullCapabilitySet())

	created, err := svc.Create(context.Background(), "alice", &domain.CreateSecretRequest{
		Name:        "token",
		Value:       "old",
		WorkspaceID: testWorkspaceID,
	})
	require.NoError(t, err)

	newValue := "new-value"
	updated, err := svc.Update(context.Background(), "alice", created.ID, &domain.UpdateSecretRequest{Value: &newValue})
	require.NoError(t, err)
	assert.Equal(t, "new-value", updated.Value)

	stored := store.byID[created.ID]
	assert.NotContains(t, stored.Value, "new-value")
}

func TestSecretService_GetUnknownID(t *testing.T) {
	svc := newSecretService(t, newFakeSecretStore(), domain.FullCapabilitySet())

	_, err := svc.Get(context.Background(), "alice", "missing")
	assert.ErrorIs(t, err, service.ErrSecretNotFound)
}
