package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	sfotel "github.com/Strob0t/SiteForge/internal/adapter/otel"
	"github.com/Strob0t/SiteForge/internal/domain/boq"
	"github.com/Strob0t/SiteForge/internal/domain/task"
	"github.com/Strob0t/SiteForge/internal/port/cache"
	"github.com/Strob0t/SiteForge/internal/port/database"
)

// ViewService computes the derived read models consumed by dashboard
// widgets. Views are cached serialized; concurrent recomputes of the same
// view are collapsed through singleflight.
type ViewService struct {
	store   database.Store
	cache   cache.Cache
	ttl     time.Duration
	group   singleflight.Group
	metrics *sfotel.Metrics
}

// NewViewService creates a new ViewService. A nil cache disables caching.
func NewViewService(store database.Store, c cache.Cache, ttl time.Duration) *ViewService {
	return &ViewService{store: store, cache: c, ttl: ttl}
}

// SetMetrics attaches optional metric instruments.
func (s *ViewService) SetMetrics(m *sfotel.Metrics) {
	s.metrics = m
}

// RoomGroups returns the non-PM tasks of a project partitioned for display.
func (s *ViewService) RoomGroups(ctx context.Context, projectID string) ([]task.RoomGroup, error) {
	return cachedView(ctx, s, "room-groups", cache.RoomGroupsKey(projectID), func() ([]task.RoomGroup, error) {
		tasks, err := s.store.ListTasks(ctx, projectID)
		if err != nil {
			return nil, err
		}
		rooms, err := s.store.ListRooms(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return task.GroupByRoom(tasks, rooms), nil
	})
}

// DependencyGroups returns the PM tasks of a project partitioned by what
// they are waiting on.
func (s *ViewService) DependencyGroups(ctx context.Context, projectID string) ([]task.DependencyGroup, error) {
	return cachedView(ctx, s, "dependency-groups", cache.DependencyGroupsKey(projectID), func() ([]task.DependencyGroup, error) {
		tasks, err := s.store.ListTasks(ctx, projectID)
		if err != nil {
			return nil, err
		}
		return task.GroupByDependency(tasks), nil
	})
}

// Stats returns status counts over a project's task set.
func (s *ViewService) Stats(ctx context.Context, projectID string) (task.Stats, error) {
	stats, err := cachedView(ctx, s, "stats", cache.StatsKey(projectID), func() (*task.Stats, error) {
		tasks, err := s.store.ListTasks(ctx, projectID)
		if err != nil {
			return nil, err
		}
		st := task.ComputeStats(tasks)
		return &st, nil
	})
	if err != nil {
		return task.Stats{}, err
	}
	return *stats, nil
}

// Rollups returns the per-line aggregate and bottleneck for every BOQ item.
func (s *ViewService) Rollups(ctx context.Context, projectID string) ([]boq.Rollup, error) {
	return cachedView(ctx, s, "rollups", cache.RollupsKey(projectID), func() ([]boq.Rollup, error) {
		items, err := s.store.ListBOQItems(ctx, projectID)
		if err != nil {
			return nil, err
		}
		rollups := make([]boq.Rollup, 0, len(items))
		for _, item := range items {
			rollups = append(rollups, boq.RollupFor(item))
		}
		return rollups, nil
	})
}

// InvalidateProject drops every cached view of a project. Called by the
// mutation services after a write.
func (s *ViewService) InvalidateProject(ctx context.Context, projectID string) {
	if s.cache == nil {
		return
	}
	for _, key := range cache.ProjectViewKeys(projectID) {
		if err := s.cache.Delete(ctx, key); err != nil {
			slog.Warn("view cache delete failed", "key", key, "error", err)
		}
	}
}

// cachedView serves a view from cache when possible, otherwise computes it
// once per key and stores the serialized result.
func cachedView[T any](ctx context.Context, s *ViewService, name, key string, compute func() (T, error)) (T, error) {
	var zero T

	ctx, span := sfotel.StartViewSpan(ctx, name, key)
	defer span.End()

	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				if s.metrics != nil {
					s.metrics.ViewCacheHits.Add(ctx, 1)
				}
				return v, nil
			}
		}
		if s.metrics != nil {
			s.metrics.ViewCacheMiss.Add(ctx, 1)
		}
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		v, err := compute()
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if data, mErr := json.Marshal(v); mErr == nil {
				if sErr := s.cache.Set(ctx, key, data, s.ttl); sErr != nil {
					slog.Warn("view cache set failed", "key", key, "error", sErr)
				}
			}
		}
		return v, nil
	})
	if err != nil {
		return zero, fmt.Errorf("compute %s view: %w", name, err)
	}
	return result.(T), nil
}
