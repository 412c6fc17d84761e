package telemetry

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc/credentials"

	"github.com/crmarques/snapdiff/faults"
)

const instrumentationName = "github.com/crmarques/snapdiff"

type TracingOptions struct {
	Endpoint       string
	Insecure       bool
	TLS            TLSOptions
	ServiceVersion string
}

func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// EndSpan records the accumulated error count on span and closes it.
func EndSpan(span trace.Span, errs []error) {
	span.SetAttributes(attribute.Int("snapdiff.errors", len(errs)))
	if len(errs) > 0 {
		span.SetStatus(codes.Error, errs[0].Error())
	}
	span.End()
}

// SetupTracing installs a global tracer provider exporting over OTLP/gRPC.
// An empty endpoint leaves the no-op provider in place.
func SetupTracing(ctx context.Context, options TracingOptions) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	endpoint := strings.TrimSpace(options.Endpoint)
	if endpoint == "" {
		return noop, nil
	}

	exporterOptions := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	switch {
	case options.Insecure:
		exporterOptions = append(exporterOptions, otlptracegrpc.WithInsecure())
	case !options.TLS.IsZero():
		tlsConfig, err := BuildTLSConfig(options.TLS)
		if err != nil {
			return noop, err
		}
		exporterOptions = append(exporterOptions, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsConfig)))
	}
	exporter, err := otlptracegrpc.New(ctx, exporterOptions...)
	if err != nil {
		return noop, faults.NewTypedError(faults.InternalError, "failed to create otlp trace exporter", err)
	}

	attrs := []attribute.KeyValue{attribute.String("service.name", "snapdiff")}
	if options.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", options.ServiceVersion))
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(sdkresource.NewSchemaless(attrs...)),
	)
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
