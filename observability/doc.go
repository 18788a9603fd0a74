// Package observability provides OpenTelemetry tracing and metrics for
// completion calls.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("llmaid"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("llmaid"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter(observability.InstrumentationName))
//
// Per-call tracking (used by the llm client):
//
//	ctx, call := observability.StartCall(ctx, tracer, metrics, observability.SpanCompletion,
//	    observability.ModeSync, requestID, model)
//	defer call.End(err)
//
// Check reports:
//
//	report := observability.NewServiceHealth("llmaid", version)
//	report.AddComponent(observability.Health{Name: "basic", Status: observability.HealthStatusUp})
package observability
