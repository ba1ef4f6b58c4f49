package repo

import (
	"context"
	"errors"
	"fmt"

	"secretstore-api/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrChatBindingNotFound indicates the user has no chat binding.
	ErrChatBindingNotFound = errors.New("chat binding not found")
	// ErrChatBindingExists indicates the user already has a chat binding.
	ErrChatBindingExists = errors.New("chat binding already exists")
	// ErrPairingCodeInvalid indicates the pairing code matched no unpaired
	// binding.
	ErrPairingCodeInvalid = errors.New("pairing code invalid")
)

// ChatBindingRepository handles database operations for chat bindings.
// Bindings are keyed by user id; each user has at most one.
type ChatBindingRepository struct {
	pool *pgxpool.Pool
}

// NewChatBindingRepository creates a new ChatBindingRepository instance.
func NewChatBindingRepository(pool *pgxpool.Pool) *ChatBindingRepository {
	return &ChatBindingRepository{pool: pool}
}

// Create inserts an unpaired binding holding a fresh pairing code.
func (r *ChatBindingRepository) Create(ctx context.Context, userID, code string) (*domain.ChatBinding, error) {
	cb := &domain.ChatBinding{
		UserID: userID,
		ChatID: "",
		Code:   code,
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chat_bindings (user_id, chat_id, code)
		VALUES ($1, $2, $3)
	`, cb.UserID, cb.ChatID, cb.Code)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrChatBindingExists
		}
		return nil, fmt.Errorf("insert chat binding: %w", err)
	}
	return cb, nil
}

// Get retrieves the binding for a user.
func (r *ChatBindingRepository) Get(ctx context.Context, userID string) (*domain.ChatBinding, error) {
	var cb domain.ChatBinding
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, chat_id, code FROM chat_bindings WHERE user_id = $1
	`, userID).Scan(&cb.UserID, &cb.ChatID, &cb.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrChatBindingNotFound
		}
		return nil, fmt.Errorf("query chat binding: %w", err)
	}
	return &cb, nil
}

// Pair attaches a chat id to the binding holding the given code. Only
// unpaired bindings match, so a code cannot be replayed to rebind a chat.
func (r *ChatBindingRepository) Pair(ctx context.Context, code, chatID string) (*domain.ChatBinding, error) {
	var cb domain.ChatBinding
	err := r.pool.QueryRow(ctx, `
		UPDATE chat_bindings SET chat_id = $2
		WHERE code = $1 AND chat_id = ''
		RETURNING user_id, chat_id, code
	`, code, chatID).Scan(&cb.UserID, &cb.ChatID, &cb.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPairingCodeInvalid
		}
		return nil, fmt.Errorf("pair chat binding: %w", err)
	}
	return &cb, nil
}

// Delete removes a user's binding.
func (r *ChatBindingRepository) Delete(ctx context.Context, userID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_bindings WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete chat binding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrChatBindingNotFound
	}
	return nil
}
