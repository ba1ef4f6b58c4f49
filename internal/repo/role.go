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

// ErrRoleNotFound indicates the role id or name does not resolve.
var ErrRoleNotFound = errors.New("role not found")

const roleColumns = `
	id, name, workspace_id,
	can_create, can_read, can_update, can_delete,
	see_logs, give_roles, add_users, admin_rights,
	created_at`

// RoleRepository handles database operations for workspace-scoped roles.
type RoleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository creates a new RoleRepository instance.
func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func scanRole(row pgx.Row) (*domain.Role, error) {
	var role domain.Role
	err := row.Scan(
		&role.ID, &role.Name, &role.WorkspaceID,
		&role.Create, &role.Read, &role.Update, &role.Delete,
		&role.SeeLogs, &role.GiveRoles, &role.AddUsers, &role.AdminRights,
		&role.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// Create inserts a role scoped to its workspace.
func (r *RoleRepository) Create(ctx context.Context, req *domain.CreateRoleRequest) (*domain.Role, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO roles (
			id, name, workspace_id,
			can_create, can_read, can_update, can_delete,
			see_logs, give_roles, add_users, admin_rights
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+roleColumns,
		uuid.New().String(), req.Name, req.WorkspaceID,
		req.Create, req.Read, req.Update, req.Delete,
		req.SeeLogs, req.GiveRoles, req.AddUsers, req.AdminRights,
	)
	role, err := scanRole(row)
	if err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}
	return role, nil
}

// Get retrieves a role by id.
func (r *RoleRepository) Get(ctx context.Context, id string) (*domain.Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `
		SELECT `+roleColumns+` FROM roles WHERE id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("query role: %w", err)
	}
	return role, nil
}

// GetByName retrieves a role by name within a workspace. Role names are only
// meaningful inside their workspace.
func (r *RoleRepository) GetByName(ctx context.Context, name, workspaceID string) (*domain.Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `
		SELECT `+roleColumns+` FROM roles WHERE name = $1 AND workspace_id = $2
	`, name, workspaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("query role by name: %w", err)
	}
	return role, nil
}

// ListByWorkspace returns all roles defined in a workspace.
func (r *RoleRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Role, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+roleColumns+` FROM roles WHERE workspace_id = $1 ORDER BY created_at
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query workspace roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

// Update replaces a role's name and capability flags. The owning workspace is
// immutable.
func (r *RoleRepository) Update(ctx context.Context, id string, req *domain.UpdateRoleRequest) (*domain.Role, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE roles SET
			name = $2,
			can_create = $3, can_read = $4, can_update = $5, can_delete = $6,
			see_logs = $7, give_roles = $8, add_users = $9, admin_rights = $10
		WHERE id = $1
		RETURNING `+roleColumns,
		id, req.Name,
		req.Create, req.Read, req.Update, req.Delete,
		req.SeeLogs, req.GiveRoles, req.AddUsers, req.AdminRights,
	)
	role, err := scanRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	return role, nil
}

// Delete removes a role. role_bindings.role_id is ON DELETE CASCADE, so every
// binding referencing the role goes with it; bindings to other roles are
// untouched.
func (r *RoleRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoleNotFound
	}
	return nil
}
