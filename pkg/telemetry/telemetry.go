// pkg/telemetry/telemetry.go

package telemetry

import (
	"context"
	"os"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const spanFileName = "invreporter-telemetry.jsonl"

var (
	tracer   trace.Tracer = noop.NewTracerProvider().Tracer("invreporter")
	provider *sdktrace.TracerProvider
)

// Init configures span recording into an owner-only JSONL file in the working
// directory. Disabled unless REPORTER_TELEMETRY=true; probing and reporting
// never depend on it.
func Init(service string) error {
	if os.Getenv("REPORTER_TELEMETRY") != "true" {
		tp := noop.NewTracerProvider()
		otel.SetTracerProvider(tp)
		tracer = tp.Tracer(service)
		return nil
	}

	file, err := os.OpenFile(spanFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return cerr.Wrap(err, "open telemetry file")
	}

	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(file),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		file.Close()
		return cerr.Wrap(err, "create span exporter")
	}

	hostname, _ := os.Hostname()
	provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(sdkresource.NewSchemaless(
			attribute.String("service.name", service),
			attribute.String("host.name", hostname),
		)),
	)

	otel.SetTracerProvider(provider)
	tracer = provider.Tracer(service)
	return nil
}

// Start begins a span with optional attributes.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// Shutdown flushes any batched spans.
func Shutdown() error {
	if provider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return provider.Shutdown(ctx)
}
