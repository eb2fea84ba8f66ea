package service

import (
	"context"
	"time"

	sfotel "github.com/Strob0t/SiteForge/internal/adapter/otel"
	"github.com/Strob0t/SiteForge/internal/adapter/ws"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/domain/task"
	"github.com/Strob0t/SiteForge/internal/port/messagequeue"
)

// FieldService is the command surface used on site: complete with photos,
// photo upload, flagging, blocking and notes. It reuses LifecycleService for
// persistence and notification.
type FieldService struct {
	lifecycle *LifecycleService
	now       func() time.Time
}

// NewFieldService creates a new FieldService.
func NewFieldService(lifecycle *LifecycleService) *FieldService {
	return &FieldService{lifecycle: lifecycle, now: time.Now}
}

// CompleteTask marks a task DONE, attaching any completion photos. An active
// block is cleared as part of the same command.
func (s *FieldService) CompleteTask(ctx context.Context, taskID string, mediaIDs []string, actor activity.Actor) (*task.Task, error) {
	ctx, span := sfotel.StartCommandSpan(ctx, "complete", taskID)
	defer span.End()

	t, err := s.lifecycle.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, events, err := task.Complete(*t, mediaIDs, actor, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.save(ctx, &updated, events...); err != nil {
		return nil, err
	}

	if s.lifecycle.metrics != nil {
		s.lifecycle.metrics.TasksCompleted.Add(ctx, 1)
	}
	s.lifecycle.notify(ctx, messagequeue.SubjectTaskStatus, ws.EventTaskStatus, ws.TaskStatusEvent{
		TaskID:    updated.ID,
		ProjectID: updated.ProjectID,
		Status:    string(updated.Status),
	})

	return &updated, nil
}

// AddPhoto attaches a single photo to a task.
func (s *FieldService) AddPhoto(ctx context.Context, taskID, mediaID string, actor activity.Actor) (*task.Task, error) {
	ctx, span := sfotel.StartCommandSpan(ctx, "add_photo", taskID)
	defer span.End()

	t, err := s.lifecycle.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, ev := task.AddPhoto(*t, mediaID, actor, s.now())
	if err := s.lifecycle.save(ctx, &updated, ev); err != nil {
		return nil, err
	}
	return &updated, nil
}

// FlagTask raises the attention flag, optionally with evidence photos and a
// note recorded in the same pass.
func (s *FieldService) FlagTask(ctx context.Context, taskID, reason, note string, mediaIDs []string, actor activity.Actor) (*task.Task, error) {
	ctx, span := sfotel.StartCommandSpan(ctx, "flag", taskID)
	defer span.End()

	t, err := s.lifecycle.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	updated, flagEv := task.SetFlag(*t, true, reason, actor, now)
	events := []activity.Event{flagEv}

	for _, id := range mediaIDs {
		var ev activity.Event
		updated, ev = task.AddPhoto(updated, id, actor, now)
		events = append(events, ev)
	}
	if note != "" {
		var ev activity.Event
		updated, ev = task.AddNote(updated, note, actor, now)
		events = append(events, ev)
	}

	if err := s.lifecycle.save(ctx, &updated, events...); err != nil {
		return nil, err
	}

	if s.lifecycle.metrics != nil {
		s.lifecycle.metrics.TasksFlagged.Add(ctx, 1)
	}
	s.lifecycle.notify(ctx, messagequeue.SubjectTaskFlagged, ws.EventTaskFlagged, ws.TaskFlagEvent{
		TaskID:    updated.ID,
		ProjectID: updated.ProjectID,
		Flagged:   updated.Flagged,
		Reason:    updated.FlagReason,
	})

	return &updated, nil
}

// SetBlocked sets or clears the block overlay.
func (s *FieldService) SetBlocked(ctx context.Context, taskID string, isBlocked bool, opts task.BlockOptions, actor activity.Actor) (*task.Task, error) {
	return s.lifecycle.SetBlocked(ctx, taskID, isBlocked, opts, actor)
}

// AddNote records a free-text comment against a task.
func (s *FieldService) AddNote(ctx context.Context, taskID, note string, actor activity.Actor) (*task.Task, error) {
	ctx, span := sfotel.StartCommandSpan(ctx, "add_note", taskID)
	defer span.End()

	t, err := s.lifecycle.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	updated, ev := task.AddNote(*t, note, actor, s.now())
	if err := s.lifecycle.save(ctx, &updated, ev); err != nil {
		return nil, err
	}
	return &updated, nil
}
