// Package observability provides optional OpenTelemetry trace export.
//
// Traces are sent to a local collector agent via OTLP HTTP. The agent
// handles authentication, buffering, and forwarding to whatever backend the
// deployment uses; the application only needs the agent's endpoint.
//
// Configuration (config.yaml or environment):
//
//	otlp_agent_host: "localhost:4318"
//	service_name: "campuscare"
//	environment: "dev"
//
// Tracing is disabled entirely when no agent host is configured.
package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config for trace export.
type Config struct {
	// AgentHost is the collector's OTLP HTTP endpoint (e.g. "localhost:4318").
	// Empty disables tracing.
	AgentHost string
	// ServiceName tags the exported spans.
	ServiceName string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
}

// Setup registers an OTLP exporter as the global tracer provider.
// Returns a shutdown function that flushes pending spans. When tracing is
// disabled or the exporter cannot be created, the shutdown function is a
// no-op and the service runs untraced.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	if cfg.AgentHost == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.AgentHost),
		otlptracehttp.WithInsecure(), // local agent, no TLS
	)
	if err != nil {
		logger.Warn("creating OTLP exporter, tracing disabled", "error", err)
		return noop, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(cfg.ServiceName),
		semconv.DeploymentEnvironment(cfg.Environment),
	))
	if err != nil {
		logger.Warn("building trace resource, tracing disabled", "error", err)
		return noop, nil
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("tracing enabled",
		"agent", cfg.AgentHost,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return tp.Shutdown, nil
}
