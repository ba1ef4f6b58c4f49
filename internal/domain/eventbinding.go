package domain

import (
	"github.com/go-playground/validator/v10"
)

// EventBinding subscribes a user to be notified when a given action occurs in
// a given workspace. The subscription only fires if the user still holds
// see_logs in that workspace at the moment the triggering action happens.
type EventBinding struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	Type        Action `json:"type" db:"type"`
	WorkspaceID string `json:"workspace_id" db:"workspace_id"`
}

// CreateEventBindingRequest is the body of POST /event-bindings. The
// subscribing user comes from the authenticated context.
type CreateEventBindingRequest struct {
	Type        Action `json:"type" validate:"required"`
	WorkspaceID string `json:"workspace_id" validate:"required,uuid4"`
}

// UpdateEventBindingRequest is the body of PUT /event-bindings/{id}.
type UpdateEventBindingRequest struct {
	Type Action `json:"type" validate:"required"`
}

func (r *CreateEventBindingRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !r.Type.IsValid() {
		return ErrInvalidAction
	}
	return nil
}

func (r *UpdateEventBindingRequest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !r.Type.IsValid() {
		return ErrInvalidAction
	}
	return nil
}
