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

var (
	// ErrWorkspaceUserNotFound indicates the membership row does not resolve.
	ErrWorkspaceUserNotFound = errors.New("workspace user not found")

	// ErrAlreadyMember indicates the (workspace, user) pair already exists.
	ErrAlreadyMember = errors.New("user is already a member of this workspace")
)

// WorkspaceUserRepository handles database operations for workspace
// membership. Membership is orthogonal to role possession.
type WorkspaceUserRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceUserRepository creates a new WorkspaceUserRepository instance.
func NewWorkspaceUserRepository(pool *pgxpool.Pool) *WorkspaceUserRepository {
	return &WorkspaceUserRepository{pool: pool}
}

// Create inserts a membership row. The UNIQUE(workspace_id, user_id)
// constraint maps to ErrAlreadyMember.
func (r *WorkspaceUserRepository) Create(ctx context.Context, workspaceID, userID string) (*domain.WorkspaceUser, error) {
	wu := &domain.WorkspaceUser{
		ID:          uuid.New().String(),
		WorkspaceID: workspaceID,
		UserID:      userID,
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO workspace_users (id, workspace_id, user_id)
		VALUES ($1, $2, $3)
	`, wu.ID, wu.WorkspaceID, wu.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("insert workspace user: %w", err)
	}
	return wu, nil
}

// Get retrieves a membership row by id.
func (r *WorkspaceUserRepository) Get(ctx context.Context, id string) (*domain.WorkspaceUser, error) {
	var wu domain.WorkspaceUser
	err := r.pool.QueryRow(ctx, `
		SELECT id, workspace_id, user_id FROM workspace_users WHERE id = $1
	`, id).Scan(&wu.ID, &wu.WorkspaceID, &wu.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkspaceUserNotFound
		}
		return nil, fmt.Errorf("query workspace user: %w", err)
	}
	return &wu, nil
}

// GetByUserAndWorkspace retrieves the membership row for a (user, workspace)
// pair.
func (r *WorkspaceUserRepository) GetByUserAndWorkspace(ctx context.Context, userID, workspaceID string) (*domain.WorkspaceUser, error) {
	var wu domain.WorkspaceUser
	err := r.pool.QueryRow(ctx, `
		SELECT id, workspace_id, user_id
		FROM workspace_users
		WHERE user_id = $1 AND workspace_id = $2
	`, userID, workspaceID).Scan(&wu.ID, &wu.WorkspaceID, &wu.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkspaceUserNotFound
		}
		return nil, fmt.Errorf("query workspace membership: %w", err)
	}
	return &wu, nil
}

// ListByWorkspace returns all members of a workspace.
func (r *WorkspaceUserRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.WorkspaceUser, error) {
	return r.list(ctx, `
		SELECT id, workspace_id, user_id
		FROM workspace_users
		WHERE workspace_id = $1
	`, workspaceID)
}

func (r *WorkspaceUserRepository) list(ctx context.Context, query string, arg any) ([]domain.WorkspaceUser, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query workspace users: %w", err)
	}
	defer rows.Close()

	var members []domain.WorkspaceUser
	for rows.Next() {
		var wu domain.WorkspaceUser
		if err := rows.Scan(&wu.ID, &wu.WorkspaceID, &wu.UserID); err != nil {
			return nil, fmt.Errorf("scan workspace user: %w", err)
		}
		members = append(members, wu)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspace users: %w", err)
	}
	return members, nil
}

// Delete removes a membership row. The user's role bindings in that workspace
// are left alone; removal from the member list does not strip roles.
func (r *WorkspaceUserRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workspace_users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete workspace user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkspaceUserNotFound
	}
	return nil
}
