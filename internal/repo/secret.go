package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"secretstore-api/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSecretNotFound indicates the secret id does not resolve.
var ErrSecretNotFound = errors.New("secret not found")

// SecretRepository handles database operations for secrets. Values pass
// through this layer as opaque ciphertext; encryption and decryption are the
// service's concern.
type SecretRepository struct {
	pool *pgxpool.Pool
}

// NewSecretRepository creates a new SecretRepository instance.
func NewSecretRepository(pool *pgxpool.Pool) *SecretRepository {
	return &SecretRepository{pool: pool}
}

// Create inserts a secret with an already-encrypted value.
func (r *SecretRepository) Create(ctx context.Context, s *domain.Secret) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO secrets (id, name, value, workspace_id, created_by, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, s.ID, s.Name, s.Value, s.WorkspaceID, s.CreatedBy, s.ExpiresAt).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert secret: %w", err)
	}
	return nil
}

// Get retrieves a secret by id, ciphertext in the Value field.
func (r *SecretRepository) Get(ctx context.Context, id string) (*domain.Secret, error) {
	var s domain.Secret
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, value, workspace_id, created_by, expires_at, created_at
		FROM secrets
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Value, &s.WorkspaceID, &s.CreatedBy, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSecretNotFound
		}
		return nil, fmt.Errorf("query secret: %w", err)
	}
	return &s, nil
}

// ListByWorkspace returns all secrets of a workspace, expired ones included.
// Expiry is informational; hiding expired secrets is a UI decision that never
// made it into the storage contract.
func (r *SecretRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Secret, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, value, workspace_id, created_by, expires_at, created_at
		FROM secrets
		WHERE workspace_id = $1
		ORDER BY created_at DESC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("query workspace secrets: %w", err)
	}
	defer rows.Close()

	var secrets []domain.Secret
	for rows.Next() {
		var s domain.Secret
		if err := rows.Scan(&s.ID, &s.Name, &s.Value, &s.WorkspaceID, &s.CreatedBy, &s.ExpiresAt, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan secret: %w", err)
		}
		secrets = append(secrets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate secrets: %w", err)
	}
	return secrets, nil
}

// SecretUpdate is a partial update. Nil fields keep the stored column; Value,
// when set, must already be encrypted. ClearExpiry nulls expires_at and wins
// over ExpiresAt.
type SecretUpdate struct {
	Name        *string
	Value       *string
	ExpiresAt   *time.Time
	ClearExpiry bool
}

// Update applies a partial update and returns the updated row (ciphertext).
func (r *SecretRepository) Update(ctx context.Context, id string, upd SecretUpdate) (*domain.Secret, error) {
	var s domain.Secret
	err := r.pool.QueryRow(ctx, `
		UPDATE secrets SET
			name = COALESCE($2, name),
			value = COALESCE($3, value),
			expires_at = CASE
				WHEN $5 THEN NULL
				WHEN $4::timestamptz IS NOT NULL THEN $4::timestamptz
				ELSE expires_at
			END
		WHERE id = $1
		RETURNING id, name, value, workspace_id, created_by, expires_at, created_at
	`, id, upd.Name, upd.Value, upd.ExpiresAt, upd.ClearExpiry).
		Scan(&s.ID, &s.Name, &s.Value, &s.WorkspaceID, &s.CreatedBy, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSecretNotFound
		}
		return nil, fmt.Errorf("update secret: %w", err)
	}
	return &s, nil
}

// PurgeExpired hard-deletes secrets whose expiry cutoff has passed. Listing
// keeps showing expired secrets until an operator runs the purge.
func (r *SecretRepository) PurgeExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM secrets
		WHERE expires_at IS NOT NULL AND expires_at < $1
	`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("purge expired secrets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Delete removes a secret.
func (r *SecretRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM secrets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSecretNotFound
	}
	return nil
}
