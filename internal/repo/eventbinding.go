package repo

import (
	"context"
	"errors"
	"fmt"

	"secretstore-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrEventBindingNotFound indicates the event binding id does not resolve.
var ErrEventBindingNotFound = errors.New("event binding not found")

// EventBindingRepository handles database operations for notification
// subscriptions.
type EventBindingRepository struct {
	pool *pgxpool.Pool
}

// NewEventBindingRepository creates a new EventBindingRepository instance.
func NewEventBindingRepository(pool *pgxpool.Pool) *EventBindingRepository {
	return &EventBindingRepository{pool: pool}
}

// Create inserts a subscription.
func (r *EventBindingRepository) Create(ctx context.Context, userID string, actionType domain.Action, workspaceID string) (*domain.EventBinding, error) {
	eb := &domain.EventBinding{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        actionType,
		WorkspaceID: workspaceID,
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_bindings (id, user_id, type, workspace_id)
		VALUES ($1, $2, $3, $4)
	`, eb.ID, eb.UserID, eb.Type, eb.WorkspaceID)
	if err != nil {
		return nil, fmt.Errorf("insert event binding: %w", err)
	}
	return eb, nil
}

// Get retrieves a subscription by id.
func (r *EventBindingRepository) Get(ctx context.Context, id string) (*domain.EventBinding, error) {
	var eb domain.EventBinding
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, type, workspace_id FROM event_bindings WHERE id = $1
	`, id).Scan(&eb.ID, &eb.UserID, &eb.Type, &eb.WorkspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventBindingNotFound
		}
		return nil, fmt.Errorf("query event binding: %w", err)
	}
	return &eb, nil
}

// ListByUser returns a user's subscriptions.
func (r *EventBindingRepository) ListByUser(ctx context.Context, userID string) ([]domain.EventBinding, error) {
	return r.list(ctx, `
		SELECT id, user_id, type, workspace_id
		FROM event_bindings
		WHERE user_id = $1
	`, userID)
}

// ListByWorkspaceAndType returns every subscription matching a triggering
// action in a workspace. The audit logger fans notifications out over these.
func (r *EventBindingRepository) ListByWorkspaceAndType(ctx context.Context, workspaceID string, actionType domain.Action) ([]domain.EventBinding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, type, workspace_id
		FROM event_bindings
		WHERE workspace_id = $1 AND type = $2
	`, workspaceID, actionType)
	if err != nil {
		return nil, fmt.Errorf("query event bindings: %w", err)
	}
	defer rows.Close()
	return scanEventBindings(rows)
}

func (r *EventBindingRepository) list(ctx context.Context, query string, arg any) ([]domain.EventBinding, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query event bindings: %w", err)
	}
	defer rows.Close()
	return scanEventBindings(rows)
}

func scanEventBindings(rows pgx.Rows) ([]domain.EventBinding, error) {
	var bindings []domain.EventBinding
	for rows.Next() {
		var eb domain.EventBinding
		if err := rows.Scan(&eb.ID, &eb.UserID, &eb.Type, &eb.WorkspaceID); err != nil {
			return nil, fmt.Errorf("scan event binding: %w", err)
		}
		bindings = append(bindings, eb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate event bindings: %w", err)
	}
	return bindings, nil
}

// Update replaces the subscribed action type.
func (r *EventBindingRepository) Update(ctx context.Context, id string, actionType domain.Action) (*domain.EventBinding, error) {
	var eb domain.EventBinding
	err := r.pool.QueryRow(ctx, `
		UPDATE event_bindings SET type = $2 WHERE id = $1
		RETURNING id, user_id, type, workspace_id
	`, id, actionType).Scan(&eb.ID, &eb.UserID, &eb.Type, &eb.WorkspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventBindingNotFound
		}
		return nil, fmt.Errorf("update event binding: %w", err)
	}
	return &eb, nil
}

// Delete removes a subscription.
func (r *EventBindingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM event_bindings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event binding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventBindingNotFound
	}
	return nil
}
