package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Secret is a named value stored inside a workspace. The value is AES-256-CBC
// encrypted at rest ("ivhex:cipherhex") and decrypted on every read path; the
// Value field here always carries plaintext, ciphertext never leaves the
// repository layer.
//
// Listing returns expired secrets too. Expiry is informational; removal is an
// operator action via the cleanup command.
type Secret struct {
	ID          string     `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Value       string     `json:"value" db:"value"`
	WorkspaceID string     `json:"workspace_id" db:"workspace_id"`
	CreatedBy   string     `json:"created_by" db:"created_by"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// CreateSecretRequest is the body of POST /secrets. An empty value is legal;
// only a missing name or workspace is rejected.
type CreateSecretRequest struct {
	Name        string     `json:"name" validate:"required,min=1,max=255"`
	Value       string     `json:"value"`
	WorkspaceID string     `json:"workspace_id" validate:"required,uuid4"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
}

// UpdateSecretRequest is the body of PUT /secrets/{id}. Nil means "do not
// touch"; ExpiresAt set to the zero time clears the expiry.
type UpdateSecretRequest struct {
	Name      *string    `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Value     *string    `json:"value,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	ClearTTL  bool       `json:"clear_expiry,omitempty"`
}

func (r *CreateSecretRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	validate := validator.New()
	return validate.Struct(r)
}

func (r *UpdateSecretRequest) Validate() error {
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
	}
	validate := validator.New()
	return validate.Struct(r)
}
