package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/go-rental-api/internal/domains/rentals/application"
)

const tracerName = "github.com/Apurer/go-rental-api/internal/domains/rentals/adapters/observability"

// instrumentation is shared by the ledger and order decorators.
type instrumentation struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics rentalMetrics
}

// Option configures a decorator.
type Option func(*instrumentation)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *instrumentation) {
		i.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(i *instrumentation) {
		i.tracer = tr
	}
}

// WithMeter injects the meter used to create the rentals counters.
func WithMeter(m metric.Meter) Option {
	return func(i *instrumentation) {
		i.metrics = newRentalMetrics(m)
	}
}

func newInstrumentation(opts []Option) instrumentation {
	i := instrumentation{}
	for _, opt := range opts {
		if opt != nil {
			opt(&i)
		}
	}
	if i.tracer == nil {
		i.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if i.logger == nil {
		i.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return i
}

func (i instrumentation) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return i.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (i instrumentation) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	i.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

// handleError records err on the span. Expected business outcomes are logged at warn so
// a sold-out variant does not page anyone.
func (i instrumentation) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	span.RecordError(err)
	attrs = append(attrs, slog.String("error", err.Error()))
	if application.IsDomainError(err) {
		span.SetAttributes(attribute.Bool("rentals.domain_error", true))
		i.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
		return err
	}
	span.SetStatus(codes.Error, err.Error())
	i.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

type rentalMetrics struct {
	reservationsCreated   metric.Int64Counter
	reservationsCancelled metric.Int64Counter
	ordersCreated         metric.Int64Counter
	ordersCancelled       metric.Int64Counter
	availabilityChecks    metric.Int64Counter
}

func newRentalMetrics(m metric.Meter) rentalMetrics {
	if m == nil {
		return rentalMetrics{}
	}
	reservationsCreated, _ := m.Int64Counter("rentals.reservations.created", metric.WithDescription("Reservations committed"))
	reservationsCancelled, _ := m.Int64Counter("rentals.reservations.cancelled", metric.WithDescription("Reservations released by cancellation"))
	ordersCreated, _ := m.Int64Counter("rentals.orders.created", metric.WithDescription("Orders placed"))
	ordersCancelled, _ := m.Int64Counter("rentals.orders.cancelled", metric.WithDescription("Orders cancelled"))
	availabilityChecks, _ := m.Int64Counter("rentals.availability.checks", metric.WithDescription("Availability checks answered"))
	return rentalMetrics{
		reservationsCreated:   reservationsCreated,
		reservationsCancelled: reservationsCancelled,
		ordersCreated:         ordersCreated,
		ordersCancelled:       ordersCancelled,
		availabilityChecks:    availabilityChecks,
	}
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil || value == 0 {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}
