package bridge

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	slogctx "github.com/veqryn/slog-context"
)

const meterName = "openkcm/auth-bridge"

var (
	counter metric.Int64Counter
	hist    metric.Int64Histogram
	tracer  trace.Tracer
)

// InitMeters creates the bridge's OTEL instruments. Safe to skip in
// tests; operations fall back to no-op instruments.
func InitMeters(ctx context.Context) error {
	meter := otel.Meter(
		meterName,
		metric.WithInstrumentationVersion(otel.Version()),
	)

	var err error

	counter, err = meter.Int64Counter(
		"bridge.operation_count",
		metric.WithDescription("Bridge operation count"),
		metric.WithUnit("operation"),
	)
	if err != nil {
		return oops.In("Bridge").
			WithContext(ctx).
			Wrapf(err, "creating operation_count meter")
	}

	hist, err = meter.Int64Histogram(
		"bridge.operation_duration",
		metric.WithDescription("Bridge operation end to end duration"),
		metric.WithUnit("milliseconds"),
	)
	if err != nil {
		return oops.In("Bridge").
			WithContext(ctx).
			Wrapf(err, "creating duration meter")
	}

	tracer = otel.Tracer(meterName)

	return nil
}

// startOperation opens a span for one bridge operation and stamps the
// log context with a correlation id. The returned func closes the span
// and records the metrics.
func startOperation(ctx context.Context, operation string) (context.Context, func()) {
	ctx = slogctx.With(ctx,
		"correlation_id", uuid.NewString(),
		"operation", operation,
	)

	var span trace.Span
	if tracer != nil {
		ctx, span = tracer.Start(ctx, operation+"-span",
			trace.WithAttributes(attribute.String("operation", operation)))
	}

	start := time.Now()

	return ctx, func() {
		if span != nil {
			span.End()
		}

		if counter != nil {
			attrs := metric.WithAttributes(attribute.String("operation", operation))
			counter.Add(ctx, 1, attrs)
			hist.Record(ctx, time.Since(start).Milliseconds(), attrs)
		}
	}
}
