// Package telemetry holds the prometheus counters and tracing helpers shared by
// the loader and the engines. A nil *Metrics is valid and records nothing.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crmarques/snapdiff/faults"
)

const namespace = "snapdiff"

const (
	OutcomeLoaded  = "loaded"
	OutcomeSkipped = "skipped"

	ComparisonChanged        = "changed"
	ComparisonMissingOnRight = "missing_on_right"
	ComparisonUnchanged      = "unchanged"
)

type Metrics struct {
	registry    *prometheus.Registry
	files       prometheus.Counter
	documents   *prometheus.CounterVec
	errors      *prometheus.CounterVec
	comparisons *prometheus.CounterVec
	differences prometheus.Counter
	extracted   prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		files: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_read_total",
			Help:      "Document files read from trees.",
		}),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents seen by the loader, by outcome.",
		}, []string{"outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Accumulated errors, by operation and category.",
		}, []string{"operation", "category"}),
		comparisons: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comparisons_total",
			Help:      "Resource pairings evaluated by the diff engine, by result.",
		}, []string{"result"}),
		differences: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "differences_total",
			Help:      "Field differences reported by the diff engine.",
		}),
		extracted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_values_total",
			Help:      "Values produced by the extraction engine.",
		}),
	}
	m.registry.MustRegister(m.files, m.documents, m.errors, m.comparisons, m.differences, m.extracted)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveFile() {
	if m == nil {
		return
	}
	m.files.Inc()
}

func (m *Metrics) ObserveDocuments(outcome string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.documents.WithLabelValues(outcome).Add(float64(count))
}

func (m *Metrics) ObserveErrors(operation string, errs []error) {
	if m == nil {
		return
	}
	for category, count := range faults.CountByCategory(errs) {
		m.errors.WithLabelValues(operation, string(category)).Add(float64(count))
	}
}

func (m *Metrics) ObserveComparison(result string, differences int) {
	if m == nil {
		return
	}
	m.comparisons.WithLabelValues(result).Inc()
	if differences > 0 {
		m.differences.Add(float64(differences))
	}
}

func (m *Metrics) ObserveExtracted(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.extracted.Add(float64(count))
}

// WriteTextfile writes every counter in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return faults.NewPathError(faults.InternalError, path, "failed to write metrics textfile", err)
	}
	return nil
}
