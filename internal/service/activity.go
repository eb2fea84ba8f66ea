package service

import (
	"context"

	"github.com/Strob0t/SiteForge/internal/domain/activity"
	"github.com/Strob0t/SiteForge/internal/port/eventstore"
)

// ActivityService serves the audit trail: per-task histories and the paged
// per-project feed.
type ActivityService struct {
	events eventstore.Store
}

// NewActivityService creates a new ActivityService.
func NewActivityService(events eventstore.Store) *ActivityService {
	return &ActivityService{events: events}
}

// TaskHistory returns a task's events oldest first.
func (s *ActivityService) TaskHistory(ctx context.Context, taskID string) ([]activity.Event, error) {
	return s.events.LoadByTask(ctx, taskID)
}

// ProjectFeed returns a page of a project's events newest first.
func (s *ActivityService) ProjectFeed(ctx context.Context, projectID, cursor string, limit int) (*eventstore.FeedPage, error) {
	return s.events.LoadByProject(ctx, projectID, cursor, limit)
}
