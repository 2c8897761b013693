// Package temporal dials the Temporal cluster with tracing and structured logging wired in.
package temporal

import (
	"errors"
	"log/slog"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	temporallog "go.temporal.io/sdk/log"

	"github.com/Apurer/go-rental-api/internal/platform/observability"
)

// ErrDisabled is returned by Dial when Temporal is switched off by configuration.
var ErrDisabled = errors.New("temporal disabled via TEMPORAL_DISABLED")

// Options selects the cluster to dial.
type Options struct {
	Address   string
	Namespace string
	Disabled  bool
	// TracerName names the tracer used by the tracing interceptor.
	TracerName string
}

// Dial connects a Temporal client. Callers own Close.
func Dial(opts Options, instruments *observability.Instruments) (client.Client, error) {
	if opts.Disabled {
		return nil, ErrDisabled
	}
	if opts.Address == "" {
		opts.Address = client.DefaultHostPort
	}
	if opts.Namespace == "" {
		opts.Namespace = client.DefaultNamespace
	}
	if opts.TracerName == "" {
		opts.TracerName = "temporal-client"
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer(opts.TracerName),
	})
	if err != nil {
		return nil, err
	}
	logger := instruments.Log().With(slog.String("component", "temporal"))
	options := client.Options{
		HostPort:     opts.Address,
		Namespace:    opts.Namespace,
		Logger:       temporallog.NewStructuredLogger(logger),
		Interceptors: []interceptor.ClientInterceptor{tracingInterceptor},
	}
	return client.Dial(options)
}
