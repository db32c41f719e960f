// Package observability wires OpenTelemetry tracing and metrics for the
// transcription pipeline.
//
// Init installs OTLP/HTTP exporters when enabled in config and returns a
// shutdown function. With both signals disabled the global no-op providers
// stay in place, so StartStage and the Metrics methods are always safe to
// call.
//
//	shutdown, err := observability.Init(ctx, cfg)
//	defer shutdown(context.Background())
//
//	ctx, stage := observability.StartStage(ctx, metrics, "asr", "deepgram")
//	defer stage.End(ctx, err, cached)
package observability
