// Package activity defines the append-only task activity event log entities.
package activity

import "time"

// Type identifies the kind of lifecycle event.
type Type string

const (
	TypeCreated           Type = "task.created"
	TypeStatusChange      Type = "task.status_change"
	TypeImageUpload       Type = "task.image_upload"
	TypeFlagAdded         Type = "task.flag_added"
	TypeFlagRemoved       Type = "task.flag_removed"
	TypeBlocked           Type = "task.blocked"
	TypeUnblocked         Type = "task.unblocked"
	TypeDependencyMarked  Type = "task.dependency_marked"
	TypeDependencyRemoved Type = "task.dependency_removed"
	TypeCommentAdded      Type = "task.comment_added"
	TypeAssigned          Type = "task.assigned"
)

// Actor is the identity mutations are attributed to.
type Actor struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
	Role     string `json:"role,omitempty"`
}

// Metadata carries the structured before/after values of a mutation. Only
// the fields relevant to the event type are set.
type Metadata struct {
	OldStatus        string `json:"old_status,omitempty"`
	NewStatus        string `json:"new_status,omitempty"`
	FlagReason       string `json:"flag_reason,omitempty"`
	BlockReason      string `json:"block_reason,omitempty"`
	DependencyTaskID string `json:"dependency_task_id,omitempty"`
	DependencyType   string `json:"dependency_type,omitempty"`
	MediaID          string `json:"media_id,omitempty"`
	Note             string `json:"note,omitempty"`
}

// Event is a single immutable entry in a task's audit trail. Events are
// appended on every lifecycle mutation and never updated or deleted.
type Event struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"task_id"`
	ProjectID string    `json:"project_id"`
	Type      Type      `json:"type"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details"`
	Metadata  Metadata  `json:"metadata"`
}
