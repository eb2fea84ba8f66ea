// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sfotel "github.com/Strob0t/SiteForge/internal/adapter/otel"
	"github.com/Strob0t/SiteForge/internal/adapter/ws"
	"github.com/Strob0t/SiteForge/internal/domain"
	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/domain/task"
	"github.com/Strob0t/SiteForge/internal/domain/template"
	"github.com/Strob0t/SiteForge/internal/port/broadcast"
	"github.com/Strob0t/SiteForge/internal/port/database"
	"github.com/Strob0t/SiteForge/internal/port/eventstore"
	"github.com/Strob0t/SiteForge/internal/port/messagequeue"
)

// ViewInvalidator drops cached views for a project after a mutation.
// Implemented by ViewService.
type ViewInvalidator interface {
	InvalidateProject(ctx context.Context, projectID string)
}

// SyncResult summarizes one generation pass over a project's BOQ.
type SyncResult struct {
	ProjectID string `json:"project_id"`
	Created   int    `json:"created"`
	Skipped   int    `json:"skipped"`
	Total     int    `json:"total"`
}

// GenerationService expands the BOQ into stakeholder tasks and creates
// manual tasks outside the generation flow.
type GenerationService struct {
	store   database.Store
	events  eventstore.Store
	queue   messagequeue.Queue
	hub     broadcast.Broadcaster
	catalog *template.Catalog

	metrics     *sfotel.Metrics
	invalidator ViewInvalidator
	now         func() time.Time
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(store database.Store, events eventstore.Store, queue messagequeue.Queue, hub broadcast.Broadcaster, catalog *template.Catalog) *GenerationService {
	return &GenerationService{
		store:   store,
		events:  events,
		queue:   queue,
		hub:     hub,
		catalog: catalog,
		now:     time.Now,
	}
}

// SetMetrics attaches optional metric instruments.
func (s *GenerationService) SetMetrics(m *sfotel.Metrics) {
	s.metrics = m
}

// SetInvalidator attaches the optional view cache invalidator.
func (s *GenerationService) SetInvalidator(v ViewInvalidator) {
	s.invalidator = v
}

// Sync regenerates the project's task set from its current BOQ. The pass is
// idempotent: generated IDs are deterministic, so tasks that already exist
// are skipped and re-running a sync never duplicates work. Manual tasks are
// never touched.
func (s *GenerationService) Sync(ctx context.Context, projectID string, actor activity.Actor) (*SyncResult, error) {
	start := s.now()

	items, err := s.store.ListBOQItems(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list boq items: %w", err)
	}

	ctx, span := sfotel.StartSyncSpan(ctx, projectID, len(items))
	defer span.End()
	rooms, err := s.store.ListRooms(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	existing, err := s.store.ListTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	known := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		known[t.ID] = struct{}{}
	}

	generated := task.Generate(task.GenerateInput{
		ProjectID: projectID,
		Items:     items,
		Rooms:     rooms,
		Catalog:   s.catalog,
	}, start)

	scope := task.ScopeFromItems(items)
	result := &SyncResult{ProjectID: projectID, Total: len(generated)}

	for _, t := range generated {
		if _, ok := known[t.ID]; ok {
			result.Skipped++
			continue
		}

		t = task.Categorize(t, scope)
		if err := s.store.InsertTask(ctx, &t); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				// Another sync raced us to this ID; same outcome.
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("insert task %s: %w", t.ID, err)
		}

		if err := s.events.Append(ctx, task.NewCreatedEvent(t, actor, start)); err != nil {
			slog.Error("append created event failed", "task_id", t.ID, "error", err)
		}
		result.Created++
	}

	s.afterSync(ctx, result, start)
	return result, nil
}

func (s *GenerationService) afterSync(ctx context.Context, result *SyncResult, start time.Time) {
	if s.metrics != nil {
		s.metrics.TasksGenerated.Add(ctx, int64(result.Created))
		s.metrics.SyncDuration.Record(ctx, s.now().Sub(start).Seconds())
	}
	if s.invalidator != nil && result.Created > 0 {
		s.invalidator.InvalidateProject(ctx, result.ProjectID)
	}

	if s.queue != nil {
		data, err := json.Marshal(result)
		if err == nil {
			if err := s.queue.Publish(ctx, messagequeue.SubjectTasksGenerated, data); err != nil {
				slog.Error("publish tasks.generated failed", "project_id", result.ProjectID, "error", err)
			}
		}
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventTasksGenerated, ws.TasksGeneratedEvent{
			ProjectID: result.ProjectID,
			Created:   result.Created,
			Skipped:   result.Skipped,
			Total:     result.Total,
		})
	}

	slog.Info("generation sync completed",
		"project_id", result.ProjectID,
		"created", result.Created,
		"skipped", result.Skipped,
		"total", result.Total,
	)
}

// CreateManualTask creates an out-of-band task and records its audit entry.
func (s *GenerationService) CreateManualTask(ctx context.Context, projectID string, req task.CreateManualRequest, actor activity.Actor) (*task.Task, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", domain.ErrValidation)
	}

	items, err := s.store.ListBOQItems(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list boq items: %w", err)
	}

	now := s.now()
	t := task.Categorize(task.NewManualTask(projectID, req, now), task.ScopeFromItems(items))

	if err := s.store.InsertTask(ctx, &t); err != nil {
		return nil, fmt.Errorf("insert manual task: %w", err)
	}
	if err := s.events.Append(ctx, task.NewCreatedEvent(t, actor, now)); err != nil {
		slog.Error("append created event failed", "task_id", t.ID, "error", err)
	}

	if s.metrics != nil {
		s.metrics.TasksCreated.Add(ctx, 1)
	}
	if s.invalidator != nil {
		s.invalidator.InvalidateProject(ctx, projectID)
	}
	if s.queue != nil {
		if data, mErr := json.Marshal(t); mErr == nil {
			if err := s.queue.Publish(ctx, messagequeue.SubjectTaskCreated, data); err != nil {
				slog.Error("publish tasks.created failed", "task_id", t.ID, "error", err)
			}
		}
	}
	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, ws.EventTaskCreated, t)
	}

	return &t, nil
}
