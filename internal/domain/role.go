package domain

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Role is a named bundle of capability flags scoped to exactly one workspace.
// There are no cross-workspace roles. The "deletable" column name avoids the
// SQL DELETE keyword; it means "may delete resources", not "may be deleted".
type Role struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	WorkspaceID string    `json:"workspace_id" db:"workspace_id"`
	Create      bool      `json:"create" db:"can_create"`
	Read        bool      `json:"read" db:"can_read"`
	Update      bool      `json:"update" db:"can_update"`
	Delete      bool      `json:"deletable" db:"can_delete"`
	SeeLogs     bool      `json:"see_logs" db:"see_logs"`
	GiveRoles   bool      `json:"give_roles" db:"give_roles"`
	AddUsers    bool      `json:"add_users" db:"add_users"`
	AdminRights bool      `json:"admin_rights" db:"admin_rights"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Capabilities returns the role's flags as a CapabilitySet.
func (r *Role) Capabilities() CapabilitySet {
	return CapabilitySet{
		Create:      r.Create,
		Read:        r.Read,
		Update:      r.Update,
		Delete:      r.Delete,
		SeeLogs:     r.SeeLogs,
		GiveRoles:   r.GiveRoles,
		AddUsers:    r.AddUsers,
		AdminRights: r.AdminRights,
	}
}

// CreateRoleRequest is the body of POST /roles. Flags left out of the body
// default to false.
type CreateRoleRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	WorkspaceID string `json:"workspace_id" validate:"required,uuid4"`
	Create      bool   `json:"create"`
	Read        bool   `json:"read"`
	Update      bool   `json:"update"`
	Delete      bool   `json:"deletable"`
	SeeLogs     bool   `json:"see_logs"`
	GiveRoles   bool   `json:"give_roles"`
	AddUsers    bool   `json:"add_users"`
	AdminRights bool   `json:"admin_rights"`
}

// UpdateRoleRequest is the body of PUT /roles/{id}. The owning workspace is
// immutable; flags are full-replace, a flag left out of the body turns off.
type UpdateRoleRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	Create      bool   `json:"create"`
	Read        bool   `json:"read"`
	Update      bool   `json:"update"`
	Delete      bool   `json:"deletable"`
	SeeLogs     bool   `json:"see_logs"`
	GiveRoles   bool   `json:"give_roles"`
	AddUsers    bool   `json:"add_users"`
	AdminRights bool   `json:"admin_rights"`
}

func (r *CreateRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	validate := validator.New()
	return validate.Struct(r)
}

func (r *UpdateRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	validate := validator.New()
	return validate.Struct(r)
}
