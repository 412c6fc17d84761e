package telemetry

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/crmarques/snapdiff/faults"
)

func TestNilMetricsIsSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.ObserveFile()
	m.ObserveDocuments(OutcomeLoaded, 2)
	m.ObserveErrors("load", []error{errors.New("boom")})
	m.ObserveComparison(ComparisonChanged, 1)
	m.ObserveExtracted(3)
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "metrics.prom")); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}
}

func TestMetricsCounters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveDocuments(OutcomeLoaded, 2)
	m.ObserveDocuments(OutcomeSkipped, 1)
	m.ObserveErrors("load", []error{
		faults.NewTypedError(faults.InvalidDocumentError, "missing kind", nil),
		faults.NewTypedError(faults.InvalidDocumentError, "missing name", nil),
		errors.New("untyped"),
	})
	m.ObserveComparison(ComparisonChanged, 3)
	m.ObserveComparison(ComparisonUnchanged, 0)

	if got := testutil.ToFloat64(m.documents.WithLabelValues(OutcomeLoaded)); got != 2 {
		t.Fatalf("expected 2 loaded documents, got %v", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("load", string(faults.InvalidDocumentError))); got != 2 {
		t.Fatalf("expected 2 invalid document errors, got %v", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("load", string(faults.InternalError))); got != 1 {
		t.Fatalf("expected untyped error counted as internal, got %v", got)
	}
	if got := testutil.ToFloat64(m.differences); got != 3 {
		t.Fatalf("expected 3 differences, got %v", got)
	}

	path := filepath.Join(t.TempDir(), "snapdiff.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read textfile: %v", err)
	}
	if !strings.Contains(string(data), `snapdiff_documents_total{outcome="loaded"} 2`) {
		t.Fatalf("unexpected textfile contents:\n%s", data)
	}
}

func TestSetupTracingWithoutEndpointIsNoop(t *testing.T) {
	t.Parallel()

	shutdown, err := SetupTracing(context.Background(), TracingOptions{})
	if err != nil {
		t.Fatalf("SetupTracing returned error: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown returned error: %v", err)
	}
}

func TestStartSpanRecordsErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	_, span := StartSpan(context.Background(), "load")
	EndSpan(span, []error{errors.New("broken file")})

	ended := recorder.Ended()
	if len(ended) != 1 || ended[0].Name() != "load" {
		t.Fatalf("unexpected spans %v", ended)
	}
	if ended[0].Status().Description != "broken file" {
		t.Fatalf("unexpected span status %+v", ended[0].Status())
	}
}
