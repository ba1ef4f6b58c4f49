package service

import (
	"context"
	"time"

	"secretstore-api/internal/auth"
	"secretstore-api/internal/domain"
	"secretstore-api/internal/notify"
	"secretstore-api/internal/observability/logger"

	"go.uber.org/zap"
)

// LogWriter appends audit entries.
type LogWriter interface {
	Insert(ctx context.Context, entry *domain.LogEntry) error
}

// WorkspaceNameReader resolves a workspace for name denormalization.
type WorkspaceNameReader interface {
	Get(ctx context.Context, id string) (*domain.Workspace, error)
}

// SubscriptionReader finds event bindings matching an audit action.
type SubscriptionReader interface {
	ListByWorkspaceAndType(ctx context.Context, workspaceID string, actionType domain.Action) ([]domain.EventBinding, error)
}

// ChatReader resolves a subscriber's chat binding.
type ChatReader interface {
	Get(ctx context.Context, userID string) (*domain.ChatBinding, error)
}

// Notifier hands a message to the bot relay.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// AuditLogger records gated operations and fans the matching notifications
// out to subscribed chats. Recording is fire-and-forget: neither a storage
// failure nor a relay failure may abort the operation being audited.
type AuditLogger struct {
	logs          LogWriter
	workspaces    WorkspaceNameReader
	subscriptions SubscriptionReader
	chats         ChatReader
	evaluator     *PermissionEvaluator
	notifier      Notifier
	log           *logger.Logger
}

func NewAuditLogger(
	logs LogWriter,
	workspaces WorkspaceNameReader,
	subscriptions SubscriptionReader,
	chats ChatReader,
	evaluator *PermissionEvaluator,
	notifier Notifier,
	log *logger.Logger,
) *AuditLogger {
	return &AuditLogger{
		logs:          logs,
		workspaces:    workspaces,
		subscriptions: subscriptions,
		chats:         chats,
		evaluator:     evaluator,
		notifier:      notifier,
		log:           log,
	}
}

// Record persists one audit entry and dispatches notifications for it.
// Errors are logged and swallowed.
func (a *AuditLogger) Record(ctx context.Context, userID string, action domain.Action, subject domain.Subject, workspaceID *string) {
	entry := &domain.LogEntry{
		UserID:      userID,
		Action:      action,
		Subject:     subject,
		WorkspaceID: workspaceID,
	}

	// Denormalize the workspace name so the entry stays readable after a
	// rename or soft delete.
	var workspaceName string
	if workspaceID != nil {
		if ws, err := a.workspaces.Get(ctx, *workspaceID); err == nil {
			workspaceName = ws.Name
			entry.SubjectName = &ws.Name
		}
	}

	if err := a.logs.Insert(ctx, entry); err != nil {
		a.log.Error(ctx, "failed to persist audit entry",
			logger.Module("audit"),
			logger.Action("record"),
			zap.String("audit_action", string(action)),
			zap.String("audit_subject", string(subject)),
			zap.Error(err),
		)
		return
	}

	if workspaceID != nil {
		a.dispatch(ctx, entry, *workspaceID, workspaceName)
	}
}

// dispatch notifies every subscriber with an event binding matching the
// entry's action in its workspace. Subscribers must still hold see_logs there
// and have a paired chat; both are checked at dispatch time, not at
// subscription time.
func (a *AuditLogger) dispatch(ctx context.Context, entry *domain.LogEntry, workspaceID, workspaceName string) {
	subscriptions, err := a.subscriptions.ListByWorkspaceAndType(ctx, workspaceID, entry.Action)
	if err != nil {
		a.log.Error(ctx, "failed to resolve event bindings",
			logger.Module("audit"),
			logger.Action("notify"),
			zap.Error(err),
		)
		return
	}

	username := entry.UserID
	if claims, ok := auth.GetClaims(ctx); ok && claims.Username != "" {
		username = claims.Username
	}

	for _, sub := range subscriptions {
		ok, err := a.evaluator.HasCapability(ctx, sub.UserID, workspaceID, domain.CapSeeLogs)
		if err != nil || !ok {
			continue
		}

		chat, err := a.chats.Get(ctx, sub.UserID)
		if err != nil || !chat.IsPaired() {
			continue
		}

		msg := notify.Message{
			Username:      username,
			WorkspaceName: workspaceName,
			Timestamp:     entry.Timestamp.Format(time.RFC3339),
			Subject:       string(entry.Subject),
			Action:        string(entry.Action),
			ChatID:        chat.ChatID,
		}
		if err := a.notifier.Send(ctx, msg); err != nil {
			a.log.Warn(ctx, "notification delivery failed",
				logger.Module("audit"),
				logger.Action("notify"),
				zap.String("subscriber_id", sub.UserID),
				zap.Error(err),
			)
		}
	}
}
