package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/port/eventstore"
)

// EventStore implements eventstore.Store as an in-memory append-only log.
type EventStore struct {
	mu     sync.RWMutex
	events []activity.Event
}

// NewEventStore creates an empty in-memory event store.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// Append adds events to the log in order, assigning IDs where missing.
func (s *EventStore) Append(_ context.Context, events ...activity.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ev := range events {
		if ev.ID == "" {
			ev.ID = uuid.NewString()
		}
		s.events = append(s.events, ev)
	}
	return nil
}

// LoadByTask returns the task's events in append order.
func (s *EventStore) LoadByTask(_ context.Context, taskID string) ([]activity.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []activity.Event
	for _, ev := range s.events {
		if ev.TaskID == taskID {
			out = append(out, ev)
		}
	}
	return out, nil
}

// LoadByProject returns a page of the project's events, newest first. The
// cursor is the offset into the reversed log.
func (s *EventStore) LoadByProject(_ context.Context, projectID string, cursor string, limit int) (*eventstore.FeedPage, error) {
	if limit <= 0 {
		limit = 50
	}

	offset := 0
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: invalid cursor %q", domain.ErrValidation, cursor)
		}
		offset = n
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var scoped []activity.Event
	for i := len(s.events) - 1; i >= 0; i-- {
		if s.events[i].ProjectID == projectID {
			scoped = append(scoped, s.events[i])
		}
	}

	if offset >= len(scoped) {
		return &eventstore.FeedPage{}, nil
	}

	end := offset + limit
	hasMore := end < len(scoped)
	if !hasMore {
		end = len(scoped)
	}

	page := &eventstore.FeedPage{
		Events:  append([]activity.Event(nil), scoped[offset:end]...),
		HasMore: hasMore,
	}
	if hasMore {
		page.Cursor = strconv.Itoa(end)
	}
	return page, nil
}
