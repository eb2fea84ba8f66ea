// Package cache defines the port interface for caching derived views.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the port interface for key-value caching of serialized views.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// View cache key builders. Keys embed the project so invalidation can target
// one project's views without touching others.

func RoomGroupsKey(projectID string) string {
	return fmt.Sprintf("views:%s:room-groups", projectID)
}

func DependencyGroupsKey(projectID string) string {
	return fmt.Sprintf("views:%s:dependency-groups", projectID)
}

func StatsKey(projectID string) string {
	return fmt.Sprintf("views:%s:stats", projectID)
}

func RollupsKey(projectID string) string {
	return fmt.Sprintf("views:%s:rollups", projectID)
}

// ProjectViewKeys lists every view key for a project, for invalidation.
func ProjectViewKeys(projectID string) []string {
	return []string{
		RoomGroupsKey(projectID),
		DependencyGroupsKey(projectID),
		StatsKey(projectID),
		RollupsKey(projectID),
	}
}
