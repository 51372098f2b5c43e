// Package observability carries the OpenTelemetry tracing helper shared by
// the protocol engine, browser controller, and extraction pipeline. It holds
// no state of its own; the active TracerProvider is whatever has been
// installed on the ambient context (or the global provider if none has).
package observability

import (
	"context"

	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope reported for every span this
// package starts.
const tracerName = "github.com/shaharia-lab/reasonkit-web"

// StartSpan starts a new span named name, parented to ctx.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return trace.SpanFromContext(ctx).TracerProvider().
		Tracer(tracerName).
		Start(ctx, name, opts...)
}
