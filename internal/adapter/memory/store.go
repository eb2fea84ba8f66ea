// Package memory implements the database and event store ports in process
// memory. It backs single-node deployments without Postgres and doubles as
// the store used by service tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/task"
)

// Store implements database.Store with copy-on-read semantics: callers never
// share slices or structs with the store's internal state.
type Store struct {
	mu    sync.RWMutex
	items map[string]boq.Item
	rooms map[string][]boq.Room // projectID -> rooms in creation order
	tasks map[string]task.Task
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		items: make(map[string]boq.Item),
		rooms: make(map[string][]boq.Room),
		tasks: make(map[string]task.Task),
	}
}

// --- BOQ ---

func (s *Store) ListBOQItems(_ context.Context, projectID string) ([]boq.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []boq.Item
	for _, item := range s.items {
		if item.ProjectID == projectID {
			out = append(out, copyItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetBOQItem(_ context.Context, id string) (*boq.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("get boq item %s: %w", id, domain.ErrNotFound)
	}
	cp := copyItem(item)
	return &cp, nil
}

func (s *Store) CreateBOQItem(_ context.Context, item *boq.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[item.ID]; exists {
		return fmt.Errorf("create boq item %s: %w", item.ID, domain.ErrConflict)
	}
	item.Version = 1
	s.items[item.ID] = copyItem(*item)
	return nil
}

func (s *Store) UpdateBOQItem(_ context.Context, item *boq.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.items[item.ID]
	if !ok {
		return fmt.Errorf("update boq item %s: %w", item.ID, domain.ErrNotFound)
	}
	if current.Version != item.Version {
		return fmt.Errorf("update boq item %s: %w", item.ID, domain.ErrConflict)
	}
	item.Version++
	s.items[item.ID] = copyItem(*item)
	return nil
}

// --- Rooms ---

func (s *Store) ListRooms(_ context.Context, projectID string) ([]boq.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := s.rooms[projectID]
	out := make([]boq.Room, len(rooms))
	copy(out, rooms)
	return out, nil
}

func (s *Store) CreateRoom(_ context.Context, projectID string, room *boq.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rooms[projectID] {
		if existing.ID == room.ID {
			return fmt.Errorf("create room %s: %w", room.ID, domain.ErrConflict)
		}
	}
	s.rooms[projectID] = append(s.rooms[projectID], *room)
	return nil
}

// --- Tasks ---

func (s *Store) ListTasks(_ context.Context, projectID string) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []task.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, copyTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) GetTask(_ context.Context, id string) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
	}
	cp := copyTask(t)
	return &cp, nil
}

func (s *Store) InsertTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[t.ID]; exists {
		return fmt.Errorf("insert task %s: %w", t.ID, domain.ErrConflict)
	}
	t.Version = 1
	s.tasks[t.ID] = copyTask(*t)
	return nil
}

func (s *Store) UpdateTask(_ context.Context, t *task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.tasks[t.ID]
	if !ok {
		return fmt.Errorf("update task %s: %w", t.ID, domain.ErrNotFound)
	}
	if current.Version != t.Version {
		return fmt.Errorf("update task %s: %w", t.ID, domain.ErrConflict)
	}
	t.Version++
	s.tasks[t.ID] = copyTask(*t)
	return nil
}

func copyItem(item boq.Item) boq.Item {
	if len(item.Units) > 0 {
		units := make([]boq.Unit, len(item.Units))
		copy(units, item.Units)
		item.Units = units
	}
	return item
}

func copyTask(t task.Task) task.Task {
	if len(t.Images) > 0 {
		images := make([]string, len(t.Images))
		copy(images, t.Images)
		t.Images = images
	}
	return t
}
