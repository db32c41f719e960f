package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected default endpoint, got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected 15s interval, got %v", cfg.Interval)
	}
	cfg.SampleRate = 2
	if err := cfg.Validate(); err == nil {
		t.Error("expected sample rate above 1 to fail")
	}
}

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	ctx := context.Background()
	m.TaskStarted(ctx)
	m.TaskFinished(ctx, "done")
	m.RecordStage(ctx, "asr", "openai", false, time.Second)
	m.RecordPoll(ctx, "aliyun", 3)
	m.RecordError(ctx, "POLL_TIMEOUT", "asr")
}

func TestNewMetricsWithNoopMeter(t *testing.T) {
	metrics, err := NewMetrics(noop.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error creating metrics: %v", err)
	}
	metrics.TaskStarted(context.Background())
	metrics.TaskFinished(context.Background(), "error")
}

func TestStageRecordsSpanAndMetrics(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(prev)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx := context.Background()
	_, stage := StartStage(ctx, metrics, "asr", "deepgram")
	stage.End(ctx, nil, true)

	_, failed := StartStage(ctx, metrics, "llm", "openai")
	failed.End(ctx, errors.New("boom"), false)

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name() != "scribe.asr" {
		t.Errorf("expected span scribe.asr, got %s", spans[0].Name())
	}
	if spans[1].Status().Code != codes.Error {
		t.Errorf("expected error status on failed stage, got %v", spans[1].Status())
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	hits := int64(-1)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "scribe.cache.hits" {
				if sum, ok := m.Data.(metricdata.Sum[int64]); ok && len(sum.DataPoints) == 1 {
					hits = sum.DataPoints[0].Value
				}
			}
		}
	}
	if hits != 1 {
		t.Errorf("expected one cache hit recorded, got %d", hits)
	}
}

type staticChecker Health

func (s staticChecker) CheckHealth(context.Context) Health { return Health(s) }

func TestCheckAggregates(t *testing.T) {
	sh := Check(context.Background(), "scribe", "1.0.0",
		staticChecker{Name: "storage", Status: HealthStatusDegraded},
		staticChecker{Name: "other", Status: HealthStatusUp},
	)
	if sh.Status != HealthStatusDegraded {
		t.Errorf("expected degraded, got %s", sh.Status)
	}
	if len(sh.Components) != 2 {
		t.Errorf("expected 2 components, got %d", len(sh.Components))
	}

	sh.AddComponent(Health{Name: "x", Status: HealthStatusDown})
	sh.AddComponent(Health{Name: "y", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Errorf("expected down to stick, got %s", sh.Status)
	}
}
