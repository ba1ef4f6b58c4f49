package repo

import (
	"context"
	"fmt"

	"secretstore-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LogRepository handles audit log storage. Entries are append-only: there is
// no update or delete path in this repository on purpose.
type LogRepository struct {
	pool *pgxpool.Pool
}

// NewLogRepository creates a new LogRepository instance.
func NewLogRepository(pool *pgxpool.Pool) *LogRepository {
	return &LogRepository{pool: pool}
}

// Insert persists one audit entry.
func (r *LogRepository) Insert(ctx context.Context, entry *domain.LogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO logs (id, user_id, action, subject, workspace_id, subject_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING timestamp
	`, entry.ID, entry.UserID, entry.Action, entry.Subject, entry.WorkspaceID, entry.SubjectName).
		Scan(&entry.Timestamp)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

// ListByWorkspaces returns entries for the given workspaces, newest first.
// An empty id list short-circuits to no rows.
func (r *LogRepository) ListByWorkspaces(ctx context.Context, workspaceIDs []string) ([]domain.LogEntry, error) {
	if len(workspaceIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, `
		SELECT id, user_id, action, subject, timestamp, workspace_id, subject_name
		FROM logs
		WHERE workspace_id = ANY($1)
		ORDER BY timestamp DESC
	`, workspaceIDs)
}

// ListByWorkspace returns all entries of one workspace, newest first.
func (r *LogRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.LogEntry, error) {
	return r.list(ctx, `
		SELECT id, user_id, action, subject, timestamp, workspace_id, subject_name
		FROM logs
		WHERE workspace_id = $1
		ORDER BY timestamp DESC
	`, workspaceID)
}

func (r *LogRepository) list(ctx context.Context, query string, arg any) ([]domain.LogEntry, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query log entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Subject, &e.Timestamp, &e.WorkspaceID, &e.SubjectName); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}
	return entries, nil
}
