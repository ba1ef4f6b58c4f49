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

// ErrWorkspaceNotFound indicates the workspace id does not resolve.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// WorkspaceRepository handles database operations for workspaces, including
// the bootstrap transaction that creates a workspace together with its two
// default roles and the creator's membership and binding.
type WorkspaceRepository struct {
	pool *pgxpool.Pool
}

// NewWorkspaceRepository creates a new WorkspaceRepository instance.
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return &WorkspaceRepository{pool: pool}
}

// CreateWithBootstrap inserts the workspace, its full_control and read_only
// roles, the creator's membership row and the creator's full_control binding
// in a single transaction. Either the workspace comes up fully bootstrapped or
// not at all; a half-created workspace with missing default roles is the
// failure mode this guards against.
func (r *WorkspaceRepository) CreateWithBootstrap(ctx context.Context, name, ownerID string) (*domain.Workspace, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin bootstrap tx: %w", err)
	}
	defer tx.Rollback(ctx)

	ws := &domain.Workspace{
		ID:      uuid.New().String(),
		Name:    name,
		OwnerID: ownerID,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (id, name, owner_id, deleted)
		VALUES ($1, $2, $3, false)
		RETURNING created_at
	`, ws.ID, ws.Name, ws.OwnerID).Scan(&ws.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert workspace: %w", err)
	}

	fullControlID := uuid.New().String()
	caps := domain.FullCapabilitySet()
	if err := insertRoleTx(ctx, tx, fullControlID, domain.RoleNameFullControl, ws.ID, caps); err != nil {
		return nil, fmt.Errorf("insert full_control role: %w", err)
	}

	readOnly := domain.CapabilitySet{Read: true}
	if err := insertRoleTx(ctx, tx, uuid.New().String(), domain.RoleNameReadOnly, ws.ID, readOnly); err != nil {
		return nil, fmt.Errorf("insert read_only role: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO workspace_users (id, workspace_id, user_id)
		VALUES ($1, $2, $3)
	`, uuid.New().String(), ws.ID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("insert creator membership: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO role_bindings (id, user_id, role_id)
		VALUES ($1, $2, $3)
	`, uuid.New().String(), ownerID, fullControlID)
	if err != nil {
		return nil, fmt.Errorf("insert creator binding: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit bootstrap tx: %w", err)
	}
	return ws, nil
}

func insertRoleTx(ctx context.Context, tx pgx.Tx, id, name, workspaceID string, caps domain.CapabilitySet) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO roles (
			id, name, workspace_id,
			can_create, can_read, can_update, can_delete,
			see_logs, give_roles, add_users, admin_rights
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, id, name, workspaceID,
		caps.Create, caps.Read, caps.Update, caps.Delete,
		caps.SeeLogs, caps.GiveRoles, caps.AddUsers, caps.AdminRights)
	return err
}

// Get retrieves a workspace by id, soft-deleted ones included. Callers that
// must hide deleted workspaces check the flag themselves.
func (r *WorkspaceRepository) Get(ctx context.Context, id string) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, owner_id, deleted, created_at
		FROM workspaces
		WHERE id = $1
	`, id).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.Deleted, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("query workspace: %w", err)
	}
	return &ws, nil
}

// ListForUser returns non-deleted workspaces where the user has a membership
// row. Membership is the only criterion: a role binding without membership
// does not surface the workspace.
func (r *WorkspaceRepository) ListForUser(ctx context.Context, userID string) ([]domain.Workspace, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT w.id, w.name, w.owner_id, w.deleted, w.created_at
		FROM workspaces w
		JOIN workspace_users wu ON wu.workspace_id = w.id
		WHERE wu.user_id = $1 AND w.deleted = false
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query user workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []domain.Workspace
	for rows.Next() {
		var ws domain.Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.Deleted, &ws.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		workspaces = append(workspaces, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workspaces: %w", err)
	}
	return workspaces, nil
}

// UpdateName renames a workspace and returns the updated row.
func (r *WorkspaceRepository) UpdateName(ctx context.Context, id, name string) (*domain.Workspace, error) {
	var ws domain.Workspace
	err := r.pool.QueryRow(ctx, `
		UPDATE workspaces
		SET name = $2
		WHERE id = $1
		RETURNING id, name, owner_id, deleted, created_at
	`, id, name).Scan(&ws.ID, &ws.Name, &ws.OwnerID, &ws.Deleted, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("update workspace: %w", err)
	}
	return &ws, nil
}

// SoftDelete flips the deleted flag. Child rows stay intact so audit entries
// keep their foreign-key targets.
func (r *WorkspaceRepository) SoftDelete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE workspaces SET deleted = true WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("soft delete workspace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkspaceNotFound
	}
	return nil
}
