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

	"github.com/kbukum/llmaid/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
	// Log receives a line once the provider is installed. Optional.
	Log *logger.Logger
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) *MeterConfig {
	return &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. The returned provider should be shut down on exit.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	if config.Log != nil {
		config.Log.Info("meter initialized", logger.Fields(
			"service", config.ServiceName,
			"endpoint", config.Endpoint,
			"interval", config.Interval.String(),
		))
	}

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Call modes.
const (
	ModeSync   = "sync"
	ModeAsync  = "async"
	ModeStream = "stream"
)

// Call outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Metrics holds the instruments recorded for completion calls.
// A nil *Metrics records nothing.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	streamTokens    metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter("llm.requests",
		metric.WithDescription("Completion calls by mode and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.requests counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("llm.request.duration",
		metric.WithDescription("Duration of completion calls in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.request.duration histogram: %w", err)
	}

	requestActive, err := meter.Int64UpDownCounter("llm.requests.active",
		metric.WithDescription("Completion calls in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.requests.active counter: %w", err)
	}

	streamTokens, err := meter.Int64Counter("llm.stream.tokens",
		metric.WithDescription("Tokens delivered by streaming calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.stream.tokens counter: %w", err)
	}

	errorTotal, err := meter.Int64Counter("llm.errors",
		metric.WithDescription("Failed completion calls by error kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating llm.errors counter: %w", err)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		streamTokens:    streamTokens,
		errorTotal:      errorTotal,
	}, nil
}

// RecordRequestStart increments the in-flight count.
func (m *Metrics) RecordRequestStart(ctx context.Context, mode string) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrMode, mode)))
}

// RecordRequestEnd decrements the in-flight count and records the finished call.
func (m *Metrics) RecordRequestEnd(ctx context.Context, mode, model, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1, metric.WithAttributes(attribute.String(AttrMode, mode)))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrMode, mode),
		attribute.String(AttrModel, model),
		attribute.String(AttrStatus, status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String(AttrMode, mode),
		attribute.String(AttrModel, model),
	))
}

// RecordTokens adds n streamed tokens.
func (m *Metrics) RecordTokens(ctx context.Context, model string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.streamTokens.Add(ctx, int64(n), metric.WithAttributes(attribute.String(AttrModel, model)))
}

// RecordError records a failed call by error kind.
func (m *Metrics) RecordError(ctx context.Context, mode, kind string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrMode, mode),
		attribute.String(AttrErrorKind, kind),
	))
}
