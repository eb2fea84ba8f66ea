// Package eventstore defines the port interface for the append-only task
// activity log.
package eventstore

import (
	"context"

	"github.com/Strob0t/SiteForge/internal/domain/activity"
)

// FeedPage is a cursor-paginated page of activity events.
type FeedPage struct {
	Events  []activity.Event `json:"events"`
	Cursor  string           `json:"cursor"`
	HasMore bool             `json:"has_more"`
}

// Store is the port interface for appending and loading activity events.
// Events are immutable: there is no update or delete. Append order matches
// mutation order for a given task; cross-task ordering is not guaranteed.
type Store interface {
	// Append persists events in order, assigning IDs to any event without
	// one. Appending zero events is a no-op.
	Append(ctx context.Context, events ...activity.Event) error

	// LoadByTask returns all events for the given task in append order.
	LoadByTask(ctx context.Context, taskID string) ([]activity.Event, error)

	// LoadByProject returns a cursor-paginated page of a project's events,
	// newest first.
	LoadByProject(ctx context.Context, projectID string, cursor string, limit int) (*FeedPage, error)
}
