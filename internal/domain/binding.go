package domain

import (
	"github.com/go-playground/validator/v10"
)

// RoleBinding assigns a role to a user. It is owned by the Role (cascade on
// role delete) and references the user by id only. (user_id, role_id) pairs
// are deliberately not unique; the capability union makes duplicates harmless.
type RoleBinding struct {
	ID     string `json:"id" db:"id"`
	UserID string `json:"user_id" db:"user_id"`
	RoleID string `json:"role_id" db:"role_id"`
}

// BoundRole is a role binding joined with its role. The evaluator and the
// binding listing endpoints always need both halves at once, so the repository
// returns them joined rather than in two round trips.
type BoundRole struct {
	Binding RoleBinding `json:"binding"`
	Role    Role        `json:"role"`
}

// CreateRoleBindingRequest is the body of POST /role-bindings. The target
// workspace is derived from the role, never declared by the caller.
type CreateRoleBindingRequest struct {
	UserID string `json:"user_id" validate:"required,min=1,max=255"`
	RoleID string `json:"role_id" validate:"required,uuid4"`
}

func (r *CreateRoleBindingRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// WorkspaceUser is a membership record, independent of role possession. A user
// can be a member with zero roles and therefore zero effective capabilities.
type WorkspaceUser struct {
	ID          string `json:"id" db:"id"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`
	UserID      string `json:"user_id" db:"user_id"`
}

// WorkspaceUserWithRoles decorates a membership row with the names of the
// roles the user holds in that workspace, for the member listing endpoint.
type WorkspaceUserWithRoles struct {
	WorkspaceUser
	Roles []string `json:"roles"`
}

// CreateWorkspaceUserRequest is the body of POST /workspace-users.
type CreateWorkspaceUserRequest struct {
	WorkspaceID string `json:"workspace_id" validate:"required,uuid4"`
	UserID      string `json:"user_id" validate:"required,min=1,max=255"`
}

func (r *CreateWorkspaceUserRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
