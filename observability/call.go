package observability

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/llmaid/errors"
)

// Call tracks the span and metrics of one completion call.
type Call struct {
	Mode      string
	Model     string
	RequestID string
	StartTime time.Time

	ctx     context.Context
	span    trace.Span
	metrics *Metrics
	tokens  atomic.Int64
	once    sync.Once
}

// StartCall starts a span named spanName and records the call as in flight.
// metrics may be nil.
func StartCall(ctx context.Context, tracer trace.Tracer, metrics *Metrics, spanName, mode, requestID, model string) (context.Context, *Call) {
	ctx, span := tracer.Start(ctx, spanName, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String(AttrMode, mode),
		attribute.String(AttrModel, model),
		attribute.String(AttrRequestID, requestID),
	)
	metrics.RecordRequestStart(ctx, mode)

	return ctx, &Call{
		Mode:      mode,
		Model:     model,
		RequestID: requestID,
		StartTime: time.Now(),
		ctx:       ctx,
		span:      span,
		metrics:   metrics,
	}
}

// AddTokens counts n streamed tokens.
func (c *Call) AddTokens(n int) {
	c.tokens.Add(int64(n))
}

// Tokens returns the number of tokens counted so far.
func (c *Call) Tokens() int {
	return int(c.tokens.Load())
}

// Duration returns the elapsed time since the call started.
func (c *Call) Duration() time.Duration {
	return time.Since(c.StartTime)
}

// End finishes the span and records the outcome. Only the first call has
// any effect.
func (c *Call) End(err error) {
	c.once.Do(func() {
		duration := c.Duration()
		status := StatusOK
		if err != nil {
			status = StatusError
			kind := ErrorKind(err)
			SetSpanError(c.span, err)
			c.span.SetAttributes(attribute.String(AttrErrorKind, kind))
			c.metrics.RecordError(c.ctx, c.Mode, kind)
		}
		if c.Mode == ModeStream {
			n := c.Tokens()
			c.span.SetAttributes(attribute.Int(AttrTokens, n))
			c.metrics.RecordTokens(c.ctx, c.Model, n)
		}
		c.span.SetAttributes(
			attribute.String(AttrStatus, status),
			attribute.Int64(AttrDurationMs, duration.Milliseconds()),
		)
		c.span.End()
		c.metrics.RecordRequestEnd(c.ctx, c.Mode, c.Model, status, duration)
	})
}

// ErrorKind names the kind of err for span attributes and metric labels.
func ErrorKind(err error) string {
	if k, ok := errors.KindOf(err); ok {
		return k.String()
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	return "unknown"
}
