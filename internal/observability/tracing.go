// Package observability wires OpenTelemetry trace export into Genkit.
//
// Genkit instruments every generate call, tool invocation and flow with
// spans on its own TracerProvider; this package attaches an OTLP/HTTP
// exporter to that provider so the spans reach a collector (otel-collector,
// Jaeger, a vendor agent listening on 4318, etc.).
//
// Tracing is strictly optional. Setup failures degrade to a no-op rather
// than block startup: a chat service with no traces is useful, a chat
// service that won't boot because the collector is down is not.
package observability

import (
	"context"
	"log/slog"
	"os"

	"github.com/firebase/genkit/go/core/tracing"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/fathom0/fathom/internal/config"
)

// DefaultEndpoint is the conventional OTLP/HTTP collector endpoint.
const DefaultEndpoint = "localhost:4318"

// Setup registers an OTLP exporter with Genkit's TracerProvider and returns
// a shutdown function that flushes pending spans. When cfg.Enabled is false
// the returned shutdown is a no-op.
func Setup(ctx context.Context, cfg config.OtelConfig, logger *slog.Logger) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return noop, nil
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}

	// Genkit builds its TracerProvider from the standard OTEL environment
	// variables; these must be set before the first span is created.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	// Collectors on localhost run without TLS; remote endpoints should sit
	// behind a local agent or sidecar rather than receive spans directly.
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("trace exporter setup failed, tracing disabled", "endpoint", endpoint, "error", err)
		return noop, nil
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("trace export enabled",
		"endpoint", endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return tracing.TracerProvider().Shutdown, nil
}
