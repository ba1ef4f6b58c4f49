package service

import (
	"context"

	"secretstore-api/internal/crypto/secretval"
	"secretstore-api/internal/domain"
	"secretstore-api/internal/repo"
)

var ErrSecretNotFound = repo.ErrSecretNotFound

// SecretStore is the persistence surface for secrets. Values cross this
// boundary as ciphertext.
type SecretStore interface {
	Create(ctx context.Context, s *domain.Secret) error
	Get(ctx context.Context, id string) (*domain.Secret, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.Secret, error)
	Update(ctx context.Context, id string, upd repo.SecretUpdate) (*domain.Secret, error)
	Delete(ctx context.Context, id string) error
}

// SecretService stores and serves encrypted values. The gate capability per
// operation mirrors HTTP verbs: create for POST, read for GET, update for
// PUT, deletable for DELETE. The workspace checked is always the one the
// stored secret belongs to.
type SecretService struct {
	secrets SecretStore
	cipher  *secretval.Cipher
	gate    *Gate
	audit   *AuditLogger
}

func NewSecretService(secrets SecretStore, cipher *secretval.Cipher, gate *Gate, audit *AuditLogger) *SecretService {
	return &SecretService{
		secrets: secrets,
		cipher:  cipher,
		gate:    gate,
		audit:   audit,
	}
}

func (s *SecretService) Create(ctx context.Context, actorID string, req *domain.CreateSecretRequest) (*domain.Secret, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, req.WorkspaceID, domain.CapCreate, "create secrets"); err != nil {
		return nil, err
	}

	encrypted, err := s.cipher.Encrypt(req.Value)
	if err != nil {
		return nil, err
	}

	secret := &domain.Secret{
		Name:        req.Name,
		Value:       encrypted,
		WorkspaceID: req.WorkspaceID,
		CreatedBy:   actorID,
		ExpiresAt:   req.ExpiresAt,
	}
	if err := s.secrets.Create(ctx, secret); err != nil {
		return nil, err
	}

	secret.Value = req.Value
	s.audit.Record(ctx, actorID, domain.ActionCreate, domain.SubjectSecret, &req.WorkspaceID)
	return secret, nil
}

// Get returns one secret with the value decrypted.
func (s *SecretService) Get(ctx context.Context, actorID, secretID string) (*domain.Secret, error) {
	secret, err := s.secrets.Get(ctx, secretID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, secret.WorkspaceID, domain.CapRead, "read secrets"); err != nil {
		return nil, err
	}

	plain, err := s.cipher.Decrypt(secret.Value)
	if err != nil {
		return nil, err
	}
	secret.Value = plain

	s.audit.Record(ctx, actorID, domain.ActionAccess, domain.SubjectSecret, &secret.WorkspaceID)
	return secret, nil
}

// ListByWorkspace returns every secret of a workspace, decrypted. Expired
// secrets are included; expiry is metadata for the caller to act on.
func (s *SecretService) ListByWorkspace(ctx context.Context, actorID, workspaceID string) ([]domain.Secret, error) {
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapRead, "list secrets"); err != nil {
		return nil, err
	}

	secrets, err := s.secrets.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range secrets {
		plain, err := s.cipher.Decrypt(secrets[i].Value)
		if err != nil {
			return nil, err
		}
		secrets[i].Value = plain
	}

	s.audit.Record(ctx, actorID, domain.ActionRead, domain.SubjectSecret, &workspaceID)
	return secrets, nil
}

func (s *SecretService) Update(ctx context.Context, actorID, secretID string, req *domain.UpdateSecretRequest) (*domain.Secret, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.secrets.Get(ctx, secretID)
	if err != nil {
		return nil, err
	}
	if err := s.gate.Require(ctx, actorID, existing.WorkspaceID, domain.CapUpdate, "update secrets"); err != nil {
		return nil, err
	}

	upd := repo.SecretUpdate{
		Name:        req.Name,
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearTTL,
	}
	if req.Value != nil {
		encrypted, err := s.cipher.Encrypt(*req.Value)
		if err != nil {
			return nil, err
		}
		upd.Value = &encrypted
	}

	secret, err := s.secrets.Update(ctx, secretID, upd)
	if err != nil {
		return nil, err
	}

	plain, err := s.cipher.Decrypt(secret.Value)
	if err != nil {
		return nil, err
	}
	secret.Value = plain

	s.audit.Record(ctx, actorID, domain.ActionUpdate, domain.SubjectSecret, &secret.WorkspaceID)
	return secret, nil
}

func (s *SecretService) Delete(ctx context.Context, actorID, secretID string) error {
	existing, err := s.secrets.Get(ctx, secretID)
	if err != nil {
		return err
	}
	if err := s.gate.Require(ctx, actorID, existing.WorkspaceID, domain.CapDelete, "delete secrets"); err != nil {
		return err
	}

	if err := s.secrets.Delete(ctx, secretID); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, domain.ActionDelete, domain.SubjectSecret, &existing.WorkspaceID)
	return nil
}
