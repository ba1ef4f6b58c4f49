package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Bootstrap role names every workspace carries immediately after creation.
const (
	RoleNameFullControl = "full_control"
	RoleNameReadOnly    = "read_only"
)

// Workspace is the tenancy root. Roles, members and secrets are exclusively
// owned by their workspace. Deletion is a soft delete: the flag flips, child
// rows stay intact so audit log foreign keys keep resolving.
type Workspace struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   string    `json:"owner_id" db:"owner_id"`
	Deleted   bool      `json:"deleted" db:"deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateWorkspaceRequest is the body of POST /workspaces. The creator is taken
// from the authenticated context, never from the body.
type CreateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// UpdateWorkspaceRequest is the body of PUT /workspaces/{id} (rename).
type UpdateWorkspaceRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

func (r *CreateWorkspaceRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	validate := validator.New()
	return validate.Struct(r)
}

func (r *UpdateWorkspaceRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	validate := validator.New()
	return validate.Struct(r)
}
