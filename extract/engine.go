// Package extract reads a fixed list of fields from every resource of a tree
// or file into flat records.
package extract

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/crmarques/snapdiff/debugctx"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/loader"
	"github.com/crmarques/snapdiff/queryspec"
	"github.com/crmarques/snapdiff/resource"
)

type Option func(*Engine)

func WithLoader(l *loader.Loader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

func WithKinds(kinds ...string) Option {
	return func(e *Engine) {
		e.kinds = append([]string(nil), kinds...)
	}
}

type Engine struct {
	loader  *loader.Loader
	metrics *telemetry.Metrics
	kinds   []string
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.loader == nil {
		e.loader = loader.New(loader.WithMetrics(e.metrics))
	}
	return e
}

// Extract loads path (a tree, a single file or a git locator) and extracts
// specs from every resource found. Loader errors precede extraction errors.
func (e *Engine) Extract(ctx context.Context, path string, specs []queryspec.Spec) Report {
	loaded := e.loader.LoadPath(ctx, path)
	report := e.ExtractResources(ctx, loaded.Resources, specs)

	errs := make([]error, 0, len(loaded.Errors)+len(report.Errors))
	errs = append(errs, loaded.Errors...)
	report.Errors = append(errs, report.Errors...)
	return report
}

// ExtractResources builds one record per resource, ordered by identity, with
// one value per spec in spec order.
func (e *Engine) ExtractResources(ctx context.Context, items []resource.Resource, specs []queryspec.Spec) Report {
	ctx, span := telemetry.StartSpan(ctx, "extract.ExtractResources", attribute.Int("snapdiff.specs", len(specs)))

	report := Report{RunID: uuid.NewString(), Records: []Record{}}
	if err := queryspec.ValidateAll(specs); err != nil {
		report.Errors = append(report.Errors, err)
		telemetry.EndSpan(span, report.Errors)
		return report
	}

	ordered := loader.FilterKinds(items, e.kinds...)
	ordered = append([]resource.Resource(nil), ordered...)
	resource.SortByIdentity(ordered)

	for _, item := range ordered {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, err)
			break
		}

		record := Record{Resource: item, Values: make([]ExtractedValue, 0, len(specs))}
		for _, spec := range specs {
			extracted, err := extractValue(item, spec)
			if err != nil {
				report.Errors = append(report.Errors, err)
			}
			record.Values = append(record.Values, extracted)
		}
		report.Records = append(report.Records, record)
	}

	e.metrics.ObserveExtracted(report.ValueCount())
	e.metrics.ObserveErrors("extract", report.Errors)
	span.SetAttributes(attribute.Int("snapdiff.records", len(report.Records)))
	telemetry.EndSpan(span, report.Errors)
	debugctx.Logger(ctx).V(1).Info("extraction complete",
		"runId", report.RunID,
		"records", len(report.Records),
		"errors", len(report.Errors),
	)
	return report
}

func extractValue(item resource.Resource, spec queryspec.Spec) (ExtractedValue, error) {
	selected, err := queryspec.Evaluate(item.Content, spec)
	if err == nil {
		return ExtractedValue{
			DisplayKey: spec.DisplayKey(),
			Path:       spec.DisplayPath(),
			Alias:      spec.Alias,
			Value:      selected,
			Absent:     selected.IsAbsent(),
		}, nil
	}

	// The diagnostic replaces the whole embedded entry.
	path := spec.EmbeddedPath()
	extracted := ExtractedValue{
		DisplayKey: queryspec.DisplayKey(path, spec.Alias),
		Path:       path,
		Alias:      spec.Alias,
		Value:      selected,
	}
	return extracted, faults.NewPathError(faults.DecodeError, item.SourcePath, item.Kind+"/"+item.Name+" "+path, err)
}
