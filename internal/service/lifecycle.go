package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sfotel "github.com/Strob0t/SiteForge/internal/adapter/otel"
	"github.com/Strob0t/SiteForge/internal/adapter/ws"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/domain/task"
	"github.com/Strob0t/SiteForge/internal/port/broadcast"
	"github.com/Strob0t/SiteForge/internal/port/database"
	"github.com/Strob0t/SiteForge/internal/port/eventstore"
	"github.com/Strob0t/SiteForge/internal/port/messagequeue"
)

// LifecycleService executes task commands: load, apply the pure mutation,
// save with version CAS, append the audit events, then notify.
type LifecycleService struct {
	store  database.Store
	events eventstore.Store
	queue  messagequeue.Queue
	hub    broadcast.Broadcaster

	metrics     *sfotel.Metrics
	invalidator ViewInvalidator
	now         func() time.Time
}

// NewLifecycleService creates a new LifecycleService.
func NewLifecycleService(store database.Store, events eventstore.Store, queue messagequeue.Queue, hub broadcast.Broadcaster) *LifecycleService {
	return &LifecycleService{
		store:  store,
		events: events,
		queue:  queue,
		hub:    hub,
		now:    time.Now,
	}
}

// SetMetrics attaches optional metric instruments.
func (s *LifecycleService) SetMetrics(m *sfotel.Metrics) {
	s.metrics = m
}

// SetInvalidator attaches the optional view cache invalidator.
func (s *LifecycleService) SetInvalidator(v ViewInvalidator) {
	s.invalidator = v
}

// List returns all tasks of a project.
func (s *LifecycleService) List(ctx context.Context, projectID string) ([]task.Task, error) {
	return s.store.ListTasks(ctx, projectID)
}

// Get returns a task by ID.
func (s *LifecycleService) Get(ctx context.Context, id string) (*task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// SetStatus moves a task to the given status.
func (s *LifecycleService) SetStatus(ctx context.Context, taskID string, status task.Status, actor activity.Actor) (*task.Task, error) {
	ctx, span := sfotel.StartCommandSpan(ctx, "set_status", taskID)
	defer span.End()

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, ev, err := task.SetStatus(*t, status, actor, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, &updated, ev); err != nil {
		return nil, err
	}

	if s.metrics != nil && status == task.StatusDone {
		s.metrics.TasksCompleted.Add(ctx, 1)
	}
	s.notify(ctx, messagequeue.SubjectTaskStatus, ws.EventTaskStatus, ws.TaskStatusEvent{
		TaskID:    updated.ID,
		ProjectID: updated.ProjectID,
		Status:    string(updated.Status),
	})

	return &updated, nil
}

// SetFlag toggles the attention flag on a task.
func (s *LifecycleService) SetFlag(ctx context.Context, taskID string, flagged bool, reason string, actor activity.Actor) (*task.Task, error) {
	ctx, span := sfotel.StartCommandSpan(ctx, "set_flag", taskID)
	defer span.End()

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, ev := task.SetFlag(*t, flagged, reason, actor, s.now())
	if err := s.save(ctx, &updated, ev); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TasksFlagged.Add(ctx, 1)
	}
	s.notify(ctx, messagequeue.SubjectTaskFlagged, ws.EventTaskFlagged, ws.TaskFlagEvent{
		TaskID:    updated.ID,
		ProjectID: updated.ProjectID,
		Flagged:   updated.Flagged,
		Reason:    updated.FlagReason,
	})

	return &updated, nil
}

// SetBlocked sets or clears the block overlay on a task.
func (s *LifecycleService) SetBlocked(ctx context.Context, taskID string, isBlocked bool, opts task.BlockOptions, actor activity.Actor) (*task.Task, error) {
	ctx, span := sfotel.StartCommandSpan(ctx, "set_blocked", taskID)
	defer span.End()

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, ev := task.SetBlocked(*t, isBlocked, opts, actor, s.now())
	if err := s.save(ctx, &updated, ev); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TasksBlocked.Add(ctx, 1)
	}
	s.notify(ctx, messagequeue.SubjectTaskBlocked, ws.EventTaskBlocked, ws.TaskBlockEvent{
		TaskID:    updated.ID,
		ProjectID: updated.ProjectID,
		Blocked:   updated.Block.IsBlocked,
		Reason:    updated.Block.Reason,
	})

	return &updated, nil
}

// SetDependency annotates what external party a task waits on.
func (s *LifecycleService) SetDependency(ctx context.Context, taskID string, depType task.DependencyType, note string, actor activity.Actor) (*task.Task, error) {
	ctx, span := sfotel.StartCommandSpan(ctx, "set_dependency", taskID)
	defer span.End()

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, ev, err := task.SetDependency(*t, depType, note, actor, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.save(ctx, &updated, ev); err != nil {
		return nil, err
	}
	return &updated, nil
}

// save persists the mutated task with version CAS and appends the events.
func (s *LifecycleService) save(ctx context.Context, t *task.Task, events ...activity.Event) error {
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return fmt.Errorf("update task %s: %w", t.ID, err)
	}
	if err := s.events.Append(ctx, events...); err != nil {
		slog.Error("append events failed", "task_id", t.ID, "error", err)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateProject(ctx, t.ProjectID)
	}
	return nil
}

// notify publishes to the queue and broadcasts over WS, best effort.
func (s *LifecycleService) notify(ctx context.Context, subject, wsEvent string, payload any) {
	if s.queue != nil {
		if data, err := json.Marshal(payload); err == nil {
			if err := s.queue.Publish(ctx, subject, data); err != nil {
				slog.Error("publish failed", "subject", subject, "error", err)
			}
		}
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, wsEvent, payload)
	}
}
