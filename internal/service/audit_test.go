package service_test

import (
	"context"
	"errors"
	"testing"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/notify"
	"secretstore-api/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogWriter struct {
	entries []domain.LogEntry
	err     error
}

func (f *fakeLogWriter) Insert(_ context.Context, entry *domain.LogEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

type fakeWorkspaces struct {
	byID map[string]*domain.Workspace
}

func (f *fakeWorkspaces) Get(_ context.Context, id string) (*domain.Workspace, error) {
	ws, ok := f.byID[id]
	if !ok {
		return nil, service.ErrWorkspaceNotFound
	}
	return ws, nil
}

type fakeSubscriptions struct {
	bindings []domain.EventBinding
}

func (f *fakeSubscriptions) ListByWorkspaceAndType(_ context.Context, workspaceID string, actionType domain.Action) ([]domain.EventBinding, error) {
	var out []domain.EventBinding
	for _, eb := range f.bindings {
		if eb.WorkspaceID == workspaceID && eb.Type == actionType {
			out = append(out, eb)
		}
	}
	return out, nil
}

type fakeChats struct {
	byUser map[string]*domain.ChatBinding
}

func (f *fakeChats) Get(_ context.Context, userID string) (*domain.ChatBinding, error) {
	cb, ok := f.byUser[userID]
	if !ok {
		return nil, service.ErrChatBindingNotFound
	}
	return cb, nil
}

type fakeNotifier struct {
	sent []notify.Message
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, msg notify.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func TestAuditLogger_RecordDenormalizesWorkspaceName(t *testing.T) {
	logs := &fakeLogWriter{}
	wsID := "ws-1"
	audit := service.NewAuditLogger(
		logs,
		&fakeWorkspaces{byID: map[string]*domain.Workspace{wsID: {ID: wsID, Name: "prod"}}},
		&fakeSubscriptions{},
		&fakeChats{},
		service.NewPermissionEvaluator(&fakeBindings{}),
		&fakeNotifier{},
		testLogger(t),
	)

	audit.Record(context.Background(), "alice", domain.ActionCreate, domain.SubjectSecret, &wsID)

	require.Len(t, logs.entries, 1)
	entry := logs.entries[0]
	assert.Equal(t, "alice", entry.UserID)
	assert.Equal(t, domain.ActionCreate, entry.Action)
	assert.Equal(t, domain.SubjectSecret, entry.Subject)
	require.NotNil(t, entry.SubjectName)
	assert.Equal(t, "prod", *entry.SubjectName)
}

func TestAuditLogger_StorageFailureIsSwallowed(t *testing.T) {
	audit := service.NewAuditLogger(
		&fakeLogWriter{err: errors.New("disk full")},
		&fakeWorkspaces{byID: map[string]*domain.Workspace{}},
		&fakeSubscriptions{},
		&fakeChats{},
		service.NewPermissionEvaluator(&fakeBindings{}),
		&fakeNotifier{},
		testLogger(t),
	)

	// Must not panic and must not propagate the failure.
	wsID := "ws-1"
	audit.Record(context.Background(), "alice", domain.ActionUpdate, domain.SubjectSecret, &wsID)
}

func TestAuditLogger_NotifiesPairedSubscriberWithSeeLogs(t *testing.T) {
	wsID := "ws-1"
	notifier := &fakeNotifier{}
	audit := service.NewAuditLogger(
		&fakeLogWriter{},
		&fakeWorkspaces{byID: map[string]*domain.Workspace{wsID: {ID: wsID, Name: "prod"}}},
		&fakeSubscriptions{bindings: []domain.EventBinding{
			{ID: "eb1", UserID: "carol", Type: domain.ActionUpdate, WorkspaceID: wsID},
		}},
		&fakeChats{byUser: map[string]*domain.ChatBinding{
			"carol": {UserID: "carol", ChatID: "chat-42", Code: "spent"},
		}},
		service.NewPermissionEvaluator(&fakeBindings{
			byUserWorkspace: map[string][]domain.BoundRole{
				bindingKey("carol", wsID): {boundRole(wsID, domain.CapabilitySet{SeeLogs: true})},
			},
		}),
		notifier,
		testLogger(t),
	)

	audit.Record(context.Background(), "admin", domain.ActionUpdate, domain.SubjectSecret, &wsID)

	require.Len(t, notifier.sent, 1)
	msg := notifier.sent[0]
	assert.Equal(t, "chat-42", msg.ChatID)
	assert.Equal(t, "prod", msg.WorkspaceName)
	assert.Equal(t, "update", msg.Action)
	assert.Equal(t, "secret", msg.Subject)
}

func TestAuditLogger_SkipsSubscriberWithoutSeeLogs(t *testing.T) {
	wsID := "ws-1"
	notifier := &fakeNotifier{}
	audit := service.NewAuditLogger(
		&fakeLogWriter{},
		&fakeWorkspaces{byID: map[string]*domain.Workspace{wsID: {ID: wsID, Name: "prod"}}},
		&fakeSubscriptions{bindings: []domain.EventBinding{
			{ID: "eb1", UserID: "carol", Type: domain.ActionUpdate, WorkspaceID: wsID},
		}},
		&fakeChats{byUser: map[string]*domain.ChatBinding{
			"carol": {UserID: "carol", ChatID: "chat-42", Code: "spent"},
		}},
		// carol has no see_logs binding anymore.
		service.NewPermissionEvaluator(&fakeBindings{}),
		notifier,
		testLogger(t),
	)

	audit.Record(context.Background(), "admin", domain.ActionUpdate, domain.SubjectSecret, &wsID)

	assert.Empty(t, notifier.sent)
}

func TestAuditLogger_SkipsUnpairedChat(t *testing.T) {
	wsID := "ws-1"
	notifier := &fakeNotifier{}
	audit := service.NewAuditLogger(
		&fakeLogWriter{},
		&fakeWorkspaces{byID: map[string]*domain.Workspace{wsID: {ID: wsID, Name: "prod"}}},
		&fakeSubscriptions{bindings: []domain.EventBinding{
			{ID: "eb1", UserID: "carol", Type: domain.ActionDelete, WorkspaceID: wsID},
		}},
		&fakeChats{byUser: map[string]*domain.ChatBinding{
			"carol": {UserID: "carol", ChatID: "", Code: "unspent"},
		}},
		service.NewPermissionEvaluator(&fakeBindings{
			byUserWorkspace: map[string][]domain.BoundRole{
				bindingKey("carol", wsID): {boundRole(wsID, domain.CapabilitySet{SeeLogs: true})},
			},
		}),
		notifier,
		testLogger(t),
	)

	audit.Record(context.Background(), "admin", domain.ActionDelete, domain.SubjectSecret, &wsID)

	assert.Empty(t, notifier.sent)
}

func TestAuditLogger_RelayFailureIsNonFatal(t *testing.T) {
	wsID := "ws-1"
	logs := &fakeLogWriter{}
	audit := service.NewAuditLogger(
		logs,
		&fakeWorkspaces{byID: map[string]*domain.Workspace{wsID: {ID: wsID, Name: "prod"}}},
		&fakeSubscriptions{bindings: []domain.EventBinding{
			{ID: "eb1", UserID: "carol", Type: domain.ActionCreate, WorkspaceID: wsID},
		}},
		&fakeChats{byUser: map[string]*domain.ChatBinding{
			"carol": {UserID: "carol", ChatID: "chat-42", Code: "spent"},
		}},
		service.NewPermissionEvaluator(&fakeBindings{
			byUserWorkspace: map[string][]domain.BoundRole{
				bindingKey("carol", wsID): {boundRole(wsID, domain.CapabilitySet{SeeLogs: true})},
			},
		}),
		&fakeNotifier{err: errors.New("relay unreachable")},
		testLogger(t),
	)

	audit.Record(context.Background(), "admin", domain.ActionCreate, domain.SubjectSecret, &wsID)

	// The entry is persisted even though delivery failed.
	assert.Len(t, logs.entries, 1)
}
