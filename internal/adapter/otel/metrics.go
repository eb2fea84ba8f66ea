package otel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "siteforge"

// Metrics holds all SiteForge metric instruments.
type Metrics struct {
	TasksGenerated metric.Int64Counter
	TasksCreated   metric.Int64Counter
	TasksCompleted metric.Int64Counter
	TasksFlagged   metric.Int64Counter
	TasksBlocked   metric.Int64Counter
	SyncDuration   metric.Float64Histogram
	ViewCacheHits  metric.Int64Counter
	ViewCacheMiss  metric.Int64Counter
}

// NewMetrics creates all metric instruments.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(meterName)
	m := &Metrics{}
	var err error

	m.TasksGenerated, err = meter.Int64Counter("siteforge.tasks.generated",
		metric.WithDescription("Number of tasks created by generation syncs"))
	if err != nil {
		return nil, err
	}

	m.TasksCreated, err = meter.Int64Counter("siteforge.tasks.created",
		metric.WithDescription("Number of manual tasks created"))
	if err != nil {
		return nil, err
	}

	m.TasksCompleted, err = meter.Int64Counter("siteforge.tasks.completed",
		metric.WithDescription("Number of tasks completed"))
	if err != nil {
		return nil, err
	}

	m.TasksFlagged, err = meter.Int64Counter("siteforge.tasks.flagged",
		metric.WithDescription("Number of flag toggles"))
	if err != nil {
		return nil, err
	}

	m.TasksBlocked, err = meter.Int64Counter("siteforge.tasks.blocked",
		metric.WithDescription("Number of block toggles"))
	if err != nil {
		return nil, err
	}

	m.SyncDuration, err = meter.Float64Histogram("siteforge.sync.duration_seconds",
		metric.WithDescription("Generation sync duration in seconds"))
	if err != nil {
		return nil, err
	}

	m.ViewCacheHits, err = meter.Int64Counter("siteforge.views.cache_hits",
		metric.WithDescription("Number of view cache hits"))
	if err != nil {
		return nil, err
	}

	m.ViewCacheMiss, err = meter.Int64Counter("siteforge.views.cache_misses",
		metric.WithDescription("Number of view cache misses"))
	if err != nil {
		return nil, err
	}

	return m, nil
}
