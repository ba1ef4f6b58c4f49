package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"secretstore-api/internal/domain"
	"secretstore-api/internal/repo"
)

var (
	ErrChatBindingNotFound = repo.ErrChatBindingNotFound
	ErrChatBindingExists   = repo.ErrChatBindingExists
	ErrPairingCodeInvalid  = repo.ErrPairingCodeInvalid

	// ErrChatIDRequired rejects a pairing attempt without a chat id.
	ErrChatIDRequired = errors.New("chat_id is required")
)

// ChatBindingStore is the persistence surface for chat bindings.
type ChatBindingStore interface {
	Create(ctx context.Context, userID, code string) (*domain.ChatBinding, error)
	Get(ctx context.Context, userID string) (*domain.ChatBinding, error)
	Pair(ctx context.Context, code, chatID string) (*domain.ChatBinding, error)
	Delete(ctx context.Context, userID string) error
}

// ChatBindingService manages the pairing handshake between a user and their
// chat. Create issues a one-time code the user hands to the bot; the bot
// calls Pair through the relay-gated endpoint to spend it.
type ChatBindingService struct {
	chats ChatBindingStore
	audit *AuditLogger
}

func NewChatBindingService(chats ChatBindingStore, audit *AuditLogger) *ChatBindingService {
	return &ChatBindingService{
		chats: chats,
		audit: audit,
	}
}

// newPairingCode returns a 32-character random hex code.
func newPairingCode() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate pairing code: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Create issues an unpaired binding for the actor. One binding per user.
func (s *ChatBindingService) Create(ctx context.Context, actorID string) (*domain.ChatBinding, error) {
	code, err := newPairingCode()
	if err != nil {
		return nil, err
	}

	binding, err := s.chats.Create(ctx, actorID, code)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, domain.ActionCreate, domain.SubjectChatBinding, nil)
	return binding, nil
}

// Get returns the actor's own binding.
func (s *ChatBindingService) Get(ctx context.Context, actorID string) (*domain.ChatBinding, error) {
	return s.chats.Get(ctx, actorID)
}

// Pair spends a pairing code and attaches the chat id. Called by the bot
// relay, not by an authenticated user; a replayed or unknown code fails with
// ErrPairingCodeInvalid.
func (s *ChatBindingService) Pair(ctx context.Context, req *domain.PairChatBindingRequest) (*domain.ChatBinding, error) {
	if req.ChatID == "" {
		return nil, ErrChatIDRequired
	}
	if req.Code == "" {
		return nil, ErrPairingCodeInvalid
	}

	binding, err := s.chats.Pair(ctx, req.Code, req.ChatID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, binding.UserID, domain.ActionUpdate, domain.SubjectChatBinding, nil)
	return binding, nil
}

// Delete removes the actor's binding, unsubscribing them from delivery.
func (s *ChatBindingService) Delete(ctx context.Context, actorID string) error {
	if err := s.chats.Delete(ctx, actorID); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, domain.ActionDelete, domain.SubjectChatBinding, nil)
	return nil
}
