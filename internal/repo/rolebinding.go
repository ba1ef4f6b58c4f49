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

// ErrRoleBindingNotFound indicates the binding id does not resolve.
var ErrRoleBindingNotFound = errors.New("role binding not found")

const boundRoleColumns = `
	rb.id, rb.user_id, rb.role_id,
	r.id, r.name, r.workspace_id,
	r.can_create, r.can_read, r.can_update, r.can_delete,
	r.see_logs, r.give_roles, r.add_users, r.admin_rights,
	r.created_at`

// RoleBindingRepository handles database operations for role assignments.
// Every read joins the role in: the permission evaluator and the listing
// endpoints always need the flags next to the binding.
type RoleBindingRepository struct {
	pool *pgxpool.Pool
}

// NewRoleBindingRepository creates a new RoleBindingRepository instance.
func NewRoleBindingRepository(pool *pgxpool.Pool) *RoleBindingRepository {
	return &RoleBindingRepository{pool: pool}
}

func scanBoundRole(row pgx.Row) (*domain.BoundRole, error) {
	var br domain.BoundRole
	err := row.Scan(
		&br.Binding.ID, &br.Binding.UserID, &br.Binding.RoleID,
		&br.Role.ID, &br.Role.Name, &br.Role.WorkspaceID,
		&br.Role.Create, &br.Role.Read, &br.Role.Update, &br.Role.Delete,
		&br.Role.SeeLogs, &br.Role.GiveRoles, &br.Role.AddUsers, &br.Role.AdminRights,
		&br.Role.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &br, nil
}

func (r *RoleBindingRepository) queryBoundRoles(ctx context.Context, query string, args ...any) ([]domain.BoundRole, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query role bindings: %w", err)
	}
	defer rows.Close()

	var bindings []domain.BoundRole
	for rows.Next() {
		br, err := scanBoundRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role binding: %w", err)
		}
		bindings = append(bindings, *br)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate role bindings: %w", err)
	}
	return bindings, nil
}

// Create inserts a binding. Duplicate (user, role) pairs are allowed; the
// schema carries no uniqueness constraint on them and the capability union
// makes a duplicate a no-op.
func (r *RoleBindingRepository) Create(ctx context.Context, userID, roleID string) (*domain.RoleBinding, error) {
	binding := &domain.RoleBinding{
		ID:     uuid.New().String(),
		UserID: userID,
		RoleID: roleID,
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO role_bindings (id, user_id, role_id)
		VALUES ($1, $2, $3)
	`, binding.ID, binding.UserID, binding.RoleID)
	if err != nil {
		return nil, fmt.Errorf("insert role binding: %w", err)
	}
	return binding, nil
}

// Get retrieves a binding by id, joined with its role.
func (r *RoleBindingRepository) Get(ctx context.Context, id string) (*domain.BoundRole, error) {
	br, err := scanBoundRole(r.pool.QueryRow(ctx, `
		SELECT `+boundRoleColumns+`
		FROM role_bindings rb
		JOIN roles r ON r.id = rb.role_id
		WHERE rb.id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleBindingNotFound
		}
		return nil, fmt.Errorf("query role binding: %w", err)
	}
	return br, nil
}

// ListByUser returns every binding a user holds, across all workspaces.
func (r *RoleBindingRepository) ListByUser(ctx context.Context, userID string) ([]domain.BoundRole, error) {
	return r.queryBoundRoles(ctx, `
		SELECT `+boundRoleColumns+`
		FROM role_bindings rb
		JOIN roles r ON r.id = rb.role_id
		WHERE rb.user_id = $1
	`, userID)
}

// ListByUserAndWorkspace returns the user's bindings whose role belongs to the
// given workspace. This is the query the permission evaluator runs: a single
// join, not a fetch-then-filter.
func (r *RoleBindingRepository) ListByUserAndWorkspace(ctx context.Context, userID, workspaceID string) ([]domain.BoundRole, error) {
	return r.queryBoundRoles(ctx, `
		SELECT `+boundRoleColumns+`
		FROM role_bindings rb
		JOIN roles r ON r.id = rb.role_id
		WHERE rb.user_id = $1 AND r.workspace_id = $2
	`, userID, workspaceID)
}

// ListByRoleAndWorkspace returns all bindings of one role, provided the role
// lives in the given workspace.
func (r *RoleBindingRepository) ListByRoleAndWorkspace(ctx context.Context, roleID, workspaceID string) ([]domain.BoundRole, error) {
	return r.queryBoundRoles(ctx, `
		SELECT `+boundRoleColumns+`
		FROM role_bindings rb
		JOIN roles r ON r.id = rb.role_id
		WHERE rb.role_id = $1 AND r.workspace_id = $2
	`, roleID, workspaceID)
}

// Delete removes a single binding.
func (r *RoleBindingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM role_bindings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete role binding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRoleBindingNotFound
	}
	return nil
}
