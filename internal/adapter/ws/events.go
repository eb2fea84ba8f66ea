package ws

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Event type constants for WebSocket messages.
const (
	EventTasksGenerated = "tasks.generated"
	EventTaskCreated    = "task.created"
	EventTaskStatus     = "task.status"
	EventTaskFlagged    = "task.flagged"
	EventTaskBlocked    = "task.blocked"
	EventBOQRollup      = "boq.rollup"
)

// TasksGeneratedEvent is broadcast after a generation sync completes.
type TasksGeneratedEvent struct {
	ProjectID string `json:"project_id"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
	Total     int    `json:"total"`
}

// TaskStatusEvent is broadcast when a task's status changes.
type TaskStatusEvent struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
}

// TaskFlagEvent is broadcast when a task's flag overlay is toggled.
type TaskFlagEvent struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	Flagged   bool   `json:"flagged"`
	Reason    string `json:"reason,omitempty"`
}

// TaskBlockEvent is broadcast when a task's block overlay is toggled.
type TaskBlockEvent struct {
	TaskID    string `json:"task_id"`
	ProjectID string `json:"project_id"`
	Blocked   bool   `json:"blocked"`
	Reason    string `json:"reason,omitempty"`
}

// BOQRollupEvent is broadcast when a unit stage change moves a line's rollup.
type BOQRollupEvent struct {
	ItemID     string `json:"item_id"`
	ProjectID  string `json:"project_id"`
	Bottleneck string `json:"bottleneck"`
	Complete   bool   `json:"complete"`
}

// BroadcastEvent is a convenience method that marshals a typed event and broadcasts it.
func (h *Hub) BroadcastEvent(ctx context.Context, eventType string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal ws event payload", "type", eventType, "error", err)
		return
	}

	h.Broadcast(ctx, Message{
		Type:    eventType,
		Payload: json.RawMessage(data),
	})
}
