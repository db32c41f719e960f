package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/scribe/logger"
)

// InitMeter initializes the OpenTelemetry meter provider.
// Returns a MeterProvider that should be shut down on application exit.
func InitMeter(ctx context.Context, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval.String(),
	))
	return mp, nil
}

// Meter returns the scribe meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics holds the pipeline instruments. A nil *Metrics records nothing.
type Metrics struct {
	tasksTotal    metric.Int64Counter
	tasksActive   metric.Int64UpDownCounter
	stageDuration metric.Float64Histogram
	cacheHits     metric.Int64Counter
	pollAttempts  metric.Int64Histogram
	errorTotal    metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	tasksTotal, err := meter.Int64Counter("scribe.tasks.total",
		metric.WithDescription("Finished tasks by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.tasks.total counter: %w", err)
	}

	tasksActive, err := meter.Int64UpDownCounter("scribe.tasks.active",
		metric.WithDescription("Tasks currently running"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.tasks.active counter: %w", err)
	}

	stageDuration, err := meter.Float64Histogram("scribe.stage.duration",
		metric.WithDescription("Duration of asr and llm stages in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.stage.duration histogram: %w", err)
	}

	cacheHits, err := meter.Int64Counter("scribe.cache.hits",
		metric.WithDescription("Stages served from persisted artifacts"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.cache.hits counter: %w", err)
	}

	pollAttempts, err := meter.Int64Histogram("scribe.poll.attempts",
		metric.WithDescription("Status checks needed per vendor job"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.poll.attempts histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("scribe.errors.total",
		metric.WithDescription("Task failures by error code and stage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating scribe.errors.total counter: %w", err)
	}

	return &Metrics{
		tasksTotal:    tasksTotal,
		tasksActive:   tasksActive,
		stageDuration: stageDuration,
		cacheHits:     cacheHits,
		pollAttempts:  pollAttempts,
		errorTotal:    errorTotal,
	}, nil
}

// TaskStarted increments the active task count.
func (m *Metrics) TaskStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.tasksActive.Add(ctx, 1)
}

// TaskFinished decrements the active task count and records the outcome.
func (m *Metrics) TaskFinished(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.tasksActive.Add(ctx, -1)
	m.tasksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
}

// RecordStage records a stage duration, counting cache hits separately.
func (m *Metrics) RecordStage(ctx context.Context, stage, vendor string, cached bool, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("vendor", vendor),
	)
	if cached {
		m.cacheHits.Add(ctx, 1, attrs)
		return
	}
	m.stageDuration.Record(ctx, d.Seconds(), attrs)
}

// RecordPoll records how many status checks a vendor job took.
func (m *Metrics) RecordPoll(ctx context.Context, vendor string, attempts int) {
	if m == nil {
		return
	}
	m.pollAttempts.Record(ctx, int64(attempts), metric.WithAttributes(attribute.String("vendor", vendor)))
}

// RecordError records a failure by error code and stage.
func (m *Metrics) RecordError(ctx context.Context, code, stage string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("code", code),
		attribute.String("stage", stage),
	))
}
