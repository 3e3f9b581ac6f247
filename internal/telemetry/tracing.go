package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the single process-wide tracer every pipeline stage starts
// spans from, named after the service.
var tracer = otel.Tracer("claimfusion")

// StartSpan starts a span named name as a child of ctx's current span,
// for wrapping Resolver cluster passes and Workflow stages.
func StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}
