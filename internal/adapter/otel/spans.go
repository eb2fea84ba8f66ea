package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "siteforge"

// StartSyncSpan starts a span for a generation sync over a project's BOQ.
func StartSyncSpan(ctx context.Context, projectID string, itemCount int) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "generation.sync",
		trace.WithAttributes(
			attribute.String("project.id", projectID),
			attribute.Int("boq.items", itemCount),
		),
	)
}

// StartCommandSpan starts a span for a task lifecycle command.
func StartCommandSpan(ctx context.Context, command, taskID string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "task."+command,
		trace.WithAttributes(
			attribute.String("task.id", taskID),
		),
	)
}

// StartViewSpan starts a span for computing a derived project view.
func StartViewSpan(ctx context.Context, view, key string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "view."+view,
		trace.WithAttributes(
			attribute.String("view.key", key),
		),
	)
}
