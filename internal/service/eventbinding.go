package service

import (
	"context"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/repo"
)

var (
	ErrEventBindingNotFound = repo.ErrEventBindingNotFound
	ErrNotSubscriptionOwner = &AccessDeniedError{Reason: "subscription belongs to another user"}
)

// EventBindingStore is the persistence surface for subscriptions.
type EventBindingStore interface {
	Create(ctx context.Context, userID string, actionType domain.Action, workspaceID string) (*domain.EventBinding, error)
	Get(ctx context.Context, id string) (*domain.EventBinding, error)
	ListByUser(ctx context.Context, userID string) ([]domain.EventBinding, error)
	Update(ctx context.Context, id string, actionType domain.Action) (*domain.EventBinding, error)
	Delete(ctx context.Context, id string) error
}

// EventBindingService manages a user's notification subscriptions. Users act
// only on their own subscriptions; whether a subscription actually delivers
// is decided at event time by the audit logger, which re-checks see_logs and
// the chat pairing.
type EventBindingService struct {
	subscriptions EventBindingStore
	audit         *AuditLogger
}

func NewEventBindingService(subscriptions EventBindingStore, audit *AuditLogger) *EventBindingService {
	return &EventBindingService{
		subscriptions: subscriptions,
		audit:         audit,
	}
}

func (s *EventBindingService) Create(ctx context.Context, actorID string, req *domain.CreateEventBindingRequest) (*domain.EventBinding, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	eb, err := s.subscriptions.Create(ctx, actorID, req.Type, req.WorkspaceID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionCreate, domain.SubjectEventBinding, &req.WorkspaceID)
	return eb, nil
}

// List returns the actor's own subscriptions.
func (s *EventBindingService) List(ctx context.Context, actorID string) ([]domain.EventBinding, error) {
	return s.subscriptions.ListByUser(ctx, actorID)
}

func (s *EventBindingService) Update(ctx context.Context, actorID, id string, req *domain.UpdateEventBindingRequest) (*domain.EventBinding, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.subscriptions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.UserID != actorID {
		return nil, ErrNotSubscriptionOwner
	}

	eb, err := s.subscriptions.Update(ctx, id, req.Type)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionUpdate, domain.SubjectEventBinding, &existing.WorkspaceID)
	return eb, nil
}

func (s *EventBindingService) Delete(ctx context.Context, actorID, id string) error {
	existing, err := s.subscriptions.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.UserID != actorID {
		return ErrNotSubscriptionOwner
	}

	if err := s.subscriptions.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, domain.ActionDelete, domain.SubjectEventBinding, &existing.WorkspaceID)
	return nil
}
