// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/task"
)

// Store is the port interface for persistent project state. Task writes use
// optimistic concurrency: UpdateTask compares the task's Version and returns
// domain.ErrConflict when another writer got there first.
type Store interface {
	// BOQ
	ListBOQItems(ctx context.Context, projectID string) ([]boq.Item, error)
	GetBOQItem(ctx context.Context, id string) (*boq.Item, error)
	CreateBOQItem(ctx context.Context, item *boq.Item) error
	UpdateBOQItem(ctx context.Context, item *boq.Item) error

	// Rooms
	ListRooms(ctx context.Context, projectID string) ([]boq.Room, error)
	CreateRoom(ctx context.Context, projectID string, room *boq.Room) error

	// Tasks
	ListTasks(ctx context.Context, projectID string) ([]task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	// InsertTask fails with domain.ErrConflict when the ID already exists;
	// generated and manual namespaces colliding is an invariant violation
	// that must surface loudly.
	InsertTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, t *task.Task) error
}
