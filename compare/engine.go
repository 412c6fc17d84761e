// Package compare aligns the resources of two trees or files and reports the
// fields that differ between them.
package compare

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/crmarques/snapdiff/debugctx"
	"github.com/crmarques/snapdiff/embedded"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/loader"
	"github.com/crmarques/snapdiff/query"
	"github.com/crmarques/snapdiff/queryspec"
	"github.com/crmarques/snapdiff/resource"
	"github.com/crmarques/snapdiff/value"
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

// WithKinds restricts both sides to resources of the given kinds.
func WithKinds(kinds ...string) Option {
	return func(e *Engine) {
		e.kinds = append([]string(nil), kinds...)
	}
}

// Engine keeps no state between calls; every call returns its own Report.
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

// DiffGroups loads two group trees (directories or git locators) and pairs
// their resources by namespace, kind and name.
func (e *Engine) DiffGroups(ctx context.Context, leftRoot string, rightRoot string, specs []queryspec.Spec) Report {
	load := func(root string) func(context.Context) loader.Result {
		return func(ctx context.Context) loader.Result {
			return e.loader.LoadSource(ctx, root)
		}
	}
	left, right := loadPair(ctx, load(leftRoot), load(rightRoot))
	return e.diffLoaded(ctx, left, right, resource.MatchGroup, specs)
}

// DiffFiles loads two single files and pairs their documents by kind and name.
func (e *Engine) DiffFiles(ctx context.Context, leftFile string, rightFile string, specs []queryspec.Spec) Report {
	load := func(path string) func(context.Context) loader.Result {
		return func(ctx context.Context) loader.Result {
			return e.loader.LoadFile(ctx, path, loader.FileOptions{})
		}
	}
	left, right := loadPair(ctx, load(leftFile), load(rightFile))
	return e.diffLoaded(ctx, left, right, resource.MatchFile, specs)
}

// loadPair loads both sides concurrently. Load failures travel in the results,
// so the group never fails.
func loadPair(ctx context.Context, loadLeft func(context.Context) loader.Result, loadRight func(context.Context) loader.Result) (loader.Result, loader.Result) {
	var (
		left  loader.Result
		right loader.Result
		group errgroup.Group
	)
	group.Go(func() error {
		left = loadLeft(ctx)
		return nil
	})
	group.Go(func() error {
		right = loadRight(ctx)
		return nil
	})
	_ = group.Wait()
	return left, right
}

func (e *Engine) diffLoaded(ctx context.Context, left loader.Result, right loader.Result, mode resource.MatchMode, specs []queryspec.Spec) Report {
	report := e.DiffResources(ctx, left.Resources, right.Resources, mode, specs)

	errs := make([]error, 0, len(left.Errors)+len(right.Errors)+len(report.Errors))
	errs = append(errs, left.Errors...)
	errs = append(errs, right.Errors...)
	report.Errors = append(errs, report.Errors...)
	return report
}

// DiffResources compares already loaded resources. Only pairings with at
// least one difference, and left resources without a right counterpart, are
// reported.
func (e *Engine) DiffResources(ctx context.Context, left []resource.Resource, right []resource.Resource, mode resource.MatchMode, specs []queryspec.Spec) Report {
	ctx, span := telemetry.StartSpan(ctx, "compare.DiffResources",
		attribute.String("snapdiff.mode", mode.String()),
		attribute.Int("snapdiff.specs", len(specs)),
	)

	report := Report{RunID: uuid.NewString(), Mode: mode.String(), Results: []ComparisonResult{}}
	if err := queryspec.ValidateAll(specs); err != nil {
		report.Errors = append(report.Errors, err)
		telemetry.EndSpan(span, report.Errors)
		return report
	}

	left = loader.FilterKinds(left, e.kinds...)
	right = loader.FilterKinds(right, e.kinds...)

	rightIndex := make(map[resource.MatchKey]*resource.Resource, len(right))
	for idx := range right {
		rightIndex[right[idx].MatchKey(mode)] = &right[idx]
	}

	ordered := append([]resource.Resource(nil), left...)
	resource.SortByIdentity(ordered)

	for idx := range ordered {
		if err := ctx.Err(); err != nil {
			report.Errors = append(report.Errors, err)
			break
		}

		leftItem := &ordered[idx]
		rightItem, found := rightIndex[leftItem.MatchKey(mode)]
		if !found {
			report.Results = append(report.Results, ComparisonResult{
				Identity:       leftItem.Identity(),
				Left:           leftItem,
				MissingOnRight: true,
			})
			e.metrics.ObserveComparison(telemetry.ComparisonMissingOnRight, 0)
			continue
		}

		var differences []DiffEntry
		for _, spec := range specs {
			entries, errs := diffSpec(leftItem, rightItem, spec)
			differences = append(differences, entries...)
			report.Errors = append(report.Errors, errs...)
		}

		if len(differences) == 0 {
			e.metrics.ObserveComparison(telemetry.ComparisonUnchanged, 0)
			continue
		}
		e.metrics.ObserveComparison(telemetry.ComparisonChanged, len(differences))
		report.Results = append(report.Results, ComparisonResult{
			Identity:    leftItem.Identity(),
			Left:        leftItem,
			Right:       rightItem,
			Differences: differences,
		})
	}

	e.metrics.ObserveErrors("diff", report.Errors)
	span.SetAttributes(attribute.Int("snapdiff.results", len(report.Results)))
	telemetry.EndSpan(span, report.Errors)
	debugctx.Logger(ctx).V(1).Info("diff complete",
		"runId", report.RunID,
		"mode", report.Mode,
		"left", len(left),
		"right", len(right),
		"results", len(report.Results),
		"errors", len(report.Errors),
	)
	return report
}

func diffSpec(left *resource.Resource, right *resource.Resource, spec queryspec.Spec) ([]DiffEntry, []error) {
	if !spec.Embedded {
		leftValue := query.Resolve(left.Content, spec.Path)
		rightValue := query.Resolve(right.Content, spec.Path)
		if value.Equal(leftValue, rightValue) {
			return nil, nil
		}
		return []DiffEntry{{FieldPath: spec.DisplayPath(), Alias: spec.Alias, Left: leftValue, Right: rightValue}}, nil
	}

	leftDecoded, leftErr := queryspec.DecodeEmbedded(left.Content, spec)
	rightDecoded, rightErr := queryspec.DecodeEmbedded(right.Content, spec)

	var errs []error
	if leftErr != nil {
		errs = append(errs, decodeError(left, spec, leftErr))
	}
	if rightErr != nil {
		errs = append(errs, decodeError(right, spec, rightErr))
	}
	if len(errs) > 0 {
		return nil, errs
	}

	if spec.ContentType == embedded.LineKV && !spec.UsesInnerPath() {
		return diffLineKV(leftDecoded, rightDecoded, spec), nil
	}

	leftValue := queryspec.Select(leftDecoded, spec)
	rightValue := queryspec.Select(rightDecoded, spec)
	if value.Equal(leftValue, rightValue) {
		return nil, nil
	}
	return []DiffEntry{{FieldPath: spec.DisplayPath(), Alias: spec.Alias, Left: leftValue, Right: rightValue}}, nil
}

// diffLineKV compares the union of keys on both sides, treating a missing key
// as an empty string so the output stays textual.
func diffLineKV(left value.Value, right value.Value, spec queryspec.Spec) []DiffEntry {
	leftMap, _ := left.AsMap()
	rightMap, _ := right.AsMap()

	keys := sets.New[string]()
	if leftMap != nil {
		keys.Insert(leftMap.Keys()...)
	}
	if rightMap != nil {
		keys.Insert(rightMap.Keys()...)
	}

	var entries []DiffEntry
	for _, key := range sets.List(keys) {
		leftValue := lineValue(leftMap, key)
		rightValue := lineValue(rightMap, key)
		if value.Equal(leftValue, rightValue) {
			continue
		}
		entries = append(entries, DiffEntry{
			FieldPath: spec.EmbeddedPath() + "." + key,
			Alias:     spec.Alias,
			Left:      leftValue,
			Right:     rightValue,
		})
	}
	return entries
}

func lineValue(object *value.Map, key string) value.Value {
	if object == nil {
		return value.String("")
	}
	item, found := object.Get(key)
	if !found {
		return value.String("")
	}
	return item
}

func decodeError(item *resource.Resource, spec queryspec.Spec, err error) error {
	return faults.NewPathError(
		faults.DecodeError,
		item.SourcePath,
		item.Kind+"/"+item.Name+" "+spec.EmbeddedPath(),
		err,
	)
}
