package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/otelhelper"
)

// SetupTracing installs the OTLP tracer provider when an exporter endpoint is
// configured. Without one the global provider stays a noop and spans cost
// nothing.
func SetupTracing(ctx context.Context, logger *slog.Logger, serviceName string) {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return
	}

	if _, err := otelhelper.NewTracer(ctx, serviceName); err != nil {
		logger.WarnContext(ctx, "Failed to set up tracing", "error", err)
	}
}
