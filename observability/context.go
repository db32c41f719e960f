package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Stage tracks one pipeline stage: a span plus its duration metric.
type Stage struct {
	Name    string
	Vendor  string
	Start   time.Time
	span    trace.Span
	metrics *Metrics
}

// StartStage opens a span named "scribe.<stage>" tagged with the vendor.
// metrics may be nil.
func StartStage(ctx context.Context, metrics *Metrics, stage, vendor string) (context.Context, *Stage) {
	ctx, span := StartSpan(ctx, "scribe."+stage,
		attribute.String(AttrStage, stage),
		attribute.String(AttrVendor, vendor),
	)
	return ctx, &Stage{Name: stage, Vendor: vendor, Start: time.Now(), span: span, metrics: metrics}
}

// Elapsed returns the time since the stage started.
func (s *Stage) Elapsed() time.Duration {
	return time.Since(s.Start)
}

// End closes the span and records the stage metric. Failed stages record
// no duration.
func (s *Stage) End(ctx context.Context, err error, cached bool) {
	s.span.SetAttributes(attribute.Bool(AttrCached, cached))
	if err == nil {
		s.metrics.RecordStage(ctx, s.Name, s.Vendor, cached, s.Elapsed())
	}
	EndSpan(s.span, err)
}
