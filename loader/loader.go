// Package loader turns group trees and single files into validated resources.
//
// Every operation returns a Result carrying both the resources it could build
// and the errors it accumulated on the way. Only a missing root or file stops
// an operation early.
package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.opentelemetry.io/otel/attribute"

	"github.com/crmarques/snapdiff/debugctx"
	"github.com/crmarques/snapdiff/document"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/internal/providers/source/fsstore"
	"github.com/crmarques/snapdiff/internal/providers/source/git"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/repository"
	"github.com/crmarques/snapdiff/resource"
)

type Result struct {
	Resources []resource.Resource
	Errors    []error
}

func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// FileOptions override the group and root inferred from a single file's path.
type FileOptions struct {
	Group string
	Root  string
}

type Option func(*Loader)

func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(l *Loader) {
		l.metrics = metrics
	}
}

// Loader holds no per-call state and may be shared.
type Loader struct {
	metrics *telemetry.Metrics
}

func New(opts ...Option) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadPath loads a git locator or a directory as a group, and anything else as
// a single file.
func (l *Loader) LoadPath(ctx context.Context, path string) Result {
	if git.IsLocator(path) {
		return l.LoadGitTree(ctx, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return l.statFailure(ctx, path, err)
	}
	if info.IsDir() {
		return l.LoadGroup(ctx, path)
	}
	return l.LoadFile(ctx, path, FileOptions{})
}

// IsFile reports whether path names a regular file on disk. Git locators are
// never files.
func IsFile(path string) bool {
	if git.IsLocator(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// LoadSource loads root as a group: a git locator is read from its commit
// tree, anything else must be a directory.
func (l *Loader) LoadSource(ctx context.Context, root string) Result {
	if git.IsLocator(root) {
		return l.LoadGitTree(ctx, root)
	}
	return l.LoadGroup(ctx, root)
}

// LoadGroup loads every document file below root. The group is the base name
// of root.
func (l *Loader) LoadGroup(ctx context.Context, root string) Result {
	reader, err := fsstore.NewLocalTreeReader(root)
	if err != nil {
		return l.failed(ctx, err)
	}
	return l.LoadTree(ctx, reader)
}

// LoadGitTree loads the tree named by a git:<repository>@<revision>[:<subdir>]
// locator.
func (l *Loader) LoadGitTree(ctx context.Context, locator string) Result {
	ref, err := git.ParseReference(locator)
	if err != nil {
		return l.failed(ctx, err)
	}
	reader, err := git.Open(ctx, ref)
	if err != nil {
		return l.failed(ctx, err)
	}
	return l.LoadTree(ctx, reader)
}

func (l *Loader) LoadTree(ctx context.Context, reader repository.TreeReader) Result {
	ctx, span := telemetry.StartSpan(ctx, "loader.LoadTree",
		attribute.String("snapdiff.group", reader.Name()),
		attribute.String("snapdiff.location", reader.Location()),
	)

	result := l.loadTree(ctx, reader)

	span.SetAttributes(attribute.Int("snapdiff.resources", len(result.Resources)))
	telemetry.EndSpan(span, result.Errors)
	l.metrics.ObserveErrors("load", result.Errors)
	debugctx.Logger(ctx).V(1).Info("tree loaded",
		"group", reader.Name(),
		"location", reader.Location(),
		"resources", len(result.Resources),
		"errors", len(result.Errors),
	)
	return result
}

func (l *Loader) loadTree(ctx context.Context, reader repository.TreeReader) Result {
	files, err := reader.ListDocuments(ctx)
	if err != nil {
		return Result{Errors: []error{err}}
	}

	var result Result
	for _, relativePath := range files {
		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, err)
			break
		}

		location := reader.DocumentLocation(relativePath)
		data, err := reader.ReadDocument(ctx, relativePath)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}

		items, errs := l.parse(data, resource.Origin{
			Group:      reader.Name(),
			Layout:     resource.LayoutFromRelative(relativePath),
			SourcePath: location,
		})
		result.Resources = append(result.Resources, items...)
		result.Errors = append(result.Errors, errs...)
	}

	resource.Sort(result.Resources)
	return result
}

// LoadFile loads one file. Without options the group is inferred from the
// fourth-from-last path segment and the root is the file's grandparent folder.
func (l *Loader) LoadFile(ctx context.Context, path string, opts FileOptions) Result {
	ctx, span := telemetry.StartSpan(ctx, "loader.LoadFile", attribute.String("snapdiff.path", path))

	result := l.loadFile(ctx, path, opts)

	span.SetAttributes(attribute.Int("snapdiff.resources", len(result.Resources)))
	telemetry.EndSpan(span, result.Errors)
	l.metrics.ObserveErrors("load", result.Errors)
	debugctx.Logger(ctx).V(1).Info("file loaded",
		"path", path,
		"resources", len(result.Resources),
		"errors", len(result.Errors),
	)
	return result
}

func (l *Loader) loadFile(ctx context.Context, path string, opts FileOptions) Result {
	if err := ctx.Err(); err != nil {
		return Result{Errors: []error{err}}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{Errors: []error{statError(path, err)}}
	}
	if info.IsDir() {
		return Result{Errors: []error{
			faults.NewPathError(faults.ValidationError, path, "expected a file but found a directory", nil),
		}}
	}

	group := opts.Group
	if group == "" {
		group = resource.InferGroup(path)
	}
	root := opts.Root
	if root == "" {
		root = resource.DefaultRoot(path)
	}
	layout, err := resource.ResolveLayout(path, root)
	if err != nil {
		layout = resource.LayoutFromRelative(filepath.Base(path))
	}

	data, err := util.ReadFile(osfs.New(filepath.Dir(path)), filepath.Base(path))
	if err != nil {
		return Result{Errors: []error{
			faults.NewPathError(faults.InternalError, path, "failed to read document", err),
		}}
	}

	items, errs := l.parse(data, resource.Origin{Group: group, Layout: layout, SourcePath: path})
	return Result{Resources: items, Errors: errs}
}

// parse decodes every document of one file. Malformed text drops the whole
// file; an invalid document drops only itself.
func (l *Loader) parse(data []byte, origin resource.Origin) ([]resource.Resource, []error) {
	l.metrics.ObserveFile()

	documents, err := document.DecodeAll(data)
	if err != nil {
		return nil, []error{faults.NewPathError(faults.MalformedTextError, origin.SourcePath, "malformed yaml", err)}
	}

	var (
		items []resource.Resource
		errs  []error
	)
	for _, doc := range documents {
		if doc.Value.IsNull() {
			continue
		}

		docOrigin := origin
		docOrigin.DocumentIndex = doc.Index
		item, err := resource.New(doc.Value, docOrigin)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		items = append(items, item)
	}

	l.metrics.ObserveDocuments(telemetry.OutcomeLoaded, len(items))
	l.metrics.ObserveDocuments(telemetry.OutcomeSkipped, len(errs))
	return items, errs
}

func (l *Loader) failed(ctx context.Context, err error) Result {
	result := Result{Errors: []error{err}}
	l.metrics.ObserveErrors("load", result.Errors)
	debugctx.Logger(ctx).V(1).Info("load failed", "error", err.Error())
	return result
}

func (l *Loader) statFailure(ctx context.Context, path string, err error) Result {
	return l.failed(ctx, statError(path, err))
}

func statError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return faults.NewPathError(faults.NotFoundError, path, "path does not exist", nil)
	}
	return faults.NewPathError(faults.InternalError, path, "failed to inspect path", err)
}
