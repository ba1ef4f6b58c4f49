package domain

import (
	"errors"
	"time"
)

// ErrInvalidAction rejects action values outside the defined enum.
var ErrInvalidAction = errors.New("invalid action type")

// Action is the verb recorded in the audit log and matched by event bindings.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAccess Action = "access"
	ActionExport Action = "export"
)

// IsValid checks if the action is one of the defined constants
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAccess, ActionExport:
		return true
	default:
		return false
	}
}

// Subject is the entity kind an audit entry is about.
type Subject string

const (
	SubjectWorkspace     Subject = "workspace"
	SubjectRole          Subject = "role"
	SubjectRoleBinding   Subject = "role_binding"
	SubjectWorkspaceUser Subject = "workspace_user"
	SubjectLog           Subject = "log"
	SubjectEventBinding  Subject = "event_binding"
	SubjectSecret        Subject = "secret"
	SubjectChatBinding   Subject = "chat_binding"
)

// LogEntry is one immutable audit record. SubjectName denormalizes the
// workspace name at write time so historical entries stay readable after the
// workspace is renamed or soft-deleted. The application never updates or
// deletes rows once written.
type LogEntry struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Action      Action    `json:"action" db:"action"`
	Subject     Subject   `json:"subject" db:"subject"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	WorkspaceID *string   `json:"workspace_id,omitempty" db:"workspace_id"`
	SubjectName *string   `json:"subject_name,omitempty" db:"subject_name"`
}
