package compare

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/crmarques/snapdiff/embedded"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/queryspec"
	"github.com/crmarques/snapdiff/resource"
	"github.com/crmarques/snapdiff/value"
)

func TestDiffFilesReportsChangedField(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	leftFile := filepath.Join(dir, "left.yaml")
	rightFile := filepath.Join(dir, "right.yaml")
	writeFile(t, leftFile, service("a", "ns1", 3))
	writeFile(t, rightFile, service("a", "ns1", 5))

	report := NewEngine().DiffFiles(context.Background(), leftFile, rightFile, []queryspec.Spec{
		queryspec.NewDirect("spec.replicas", ""),
	})
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors %v", report.Errors)
	}
	if report.RunID == "" || report.Mode != "file" {
		t.Fatalf("unexpected report header %+v", report)
	}
	if len(report.Results) != 1 {
		t.Fatalf("expected one result, got %d", len(report.Results))
	}

	result := report.Results[0]
	if result.Identity.Kind != "Service" || result.Identity.Name != "a" {
		t.Fatalf("unexpected identity %+v", result.Identity)
	}
	if len(result.Differences) != 1 {
		t.Fatalf("expected one difference, got %+v", result.Differences)
	}
	entry := result.Differences[0]
	if entry.FieldPath != "spec.replicas" || !value.Equal(entry.Left, value.Int(3)) || !value.Equal(entry.Right, value.Int(5)) {
		t.Fatalf("unexpected entry %+v", entry)
	}
}

func TestDiffEmbeddedStructuredInnerPath(t *testing.T) {
	t.Parallel()

	left := []resource.Resource{configMap(t, "prod", "app", map[string]any{"application.yaml": "server:\n  port: 8080"})}
	right := []resource.Resource{configMap(t, "staging", "app", map[string]any{"application.yaml": "server:\n  port: 9090"})}

	report := NewEngine().DiffResources(context.Background(), left, right, resource.MatchGroup, []queryspec.Spec{
		queryspec.NewEmbedded("application.yaml", embedded.Structured, "server.port", ""),
	})
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors %v", report.Errors)
	}
	if len(report.Results) != 1 || len(report.Results[0].Differences) != 1 {
		t.Fatalf("unexpected results %+v", report.Results)
	}

	result := report.Results[0]
	if result.Identity.Group != "prod" {
		t.Fatalf("expected left identity to key the result, got %+v", result.Identity)
	}
	entry := result.Differences[0]
	if entry.FieldPath != "data.application.yaml.server.port" {
		t.Fatalf("unexpected field path %q", entry.FieldPath)
	}
	if !value.Equal(entry.Left, value.Int(8080)) || !value.Equal(entry.Right, value.Int(9090)) {
		t.Fatalf("unexpected values %v -> %v", entry.Left, entry.Right)
	}
}

func TestDiffSelfIsEmpty(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "prod")
	writeFile(t, filepath.Join(root, "ns1", "services", "web.yaml"), service("web", "ns1", 3))
	writeFile(t, filepath.Join(root, "ns1", "configmaps", "app.yaml"), `kind: ConfigMap
metadata:
  name: app
  namespace: ns1
data:
  application.yaml: |
    server:
      port: 8080
  app.properties: |
    a=1
    b=2
`)

	specs := []queryspec.Spec{
		queryspec.NewDirect("spec.replicas", ""),
		queryspec.NewDirect("spec.image", ""),
		queryspec.NewEmbedded("application.yaml", embedded.Structured, "", ""),
		queryspec.NewEmbedded("app.properties", embedded.LineKV, "", ""),
		queryspec.NewEmbedded("app.properties", embedded.Text, "", ""),
	}
	report := NewEngine().DiffGroups(context.Background(), root, root, specs)
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors %v", report.Errors)
	}
	if len(report.Results) != 0 || report.HasDifferences() {
		t.Fatalf("expected self diff to be empty, got %+v", report.Results)
	}
}

func TestDiffGroupsMissingOnRight(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	leftRoot := filepath.Join(base, "prod")
	rightRoot := filepath.Join(base, "staging")
	writeFile(t, filepath.Join(leftRoot, "ns1", "services", "web.yaml"), service("web", "ns1", 3))
	writeFile(t, filepath.Join(leftRoot, "ns1", "services", "api.yaml"), service("api", "ns1", 2))
	writeFile(t, filepath.Join(rightRoot, "ns1", "services", "web.yaml"), service("web", "ns1", 3))

	metrics := telemetry.NewMetrics()
	report := NewEngine(WithMetrics(metrics)).DiffGroups(context.Background(), leftRoot, rightRoot, []queryspec.Spec{
		queryspec.NewDirect("spec.replicas", ""),
	})
	if len(report.Results) != 1 {
		t.Fatalf("expected exactly one result, got %+v", report.Results)
	}

	result := report.Results[0]
	if !result.MissingOnRight || result.Right != nil || len(result.Differences) != 0 {
		t.Fatalf("unexpected missing-on-right result %+v", result)
	}
	if result.Identity != (resource.Identity{Group: "prod", Namespace: "ns1", Kind: "Service", Name: "api"}) {
		t.Fatalf("unexpected identity %+v", result.Identity)
	}
	if report.DifferenceCount() != 1 {
		t.Fatalf("expected difference count 1, got %d", report.DifferenceCount())
	}
}

func TestDiffLineKVUnion(t *testing.T) {
	t.Parallel()

	left := []resource.Resource{configMap(t, "prod", "app", map[string]any{"app.properties": "b=2\na=1\nsame=x"})}
	right := []resource.Resource{configMap(t, "staging", "app", map[string]any{"app.properties": "a=1\nsame=x\nc=3"})}

	report := NewEngine().DiffResources(context.Background(), left, right, resource.MatchGroup, []queryspec.Spec{
		queryspec.NewEmbedded("app.properties", embedded.LineKV, "", "props"),
	})
	if len(report.Results) != 1 {
		t.Fatalf("unexpected results %+v", report.Results)
	}

	entries := report.Results[0].Differences
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].FieldPath != "data.app.properties.b" || !value.Equal(entries[0].Left, value.String("2")) || !value.Equal(entries[0].Right, value.String("")) {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].FieldPath != "data.app.properties.c" || !value.Equal(entries[1].Left, value.String("")) || entries[1].Alias != "props" {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
}

func TestDiffDecodeFailureSkipsSpec(t *testing.T) {
	t.Parallel()

	left := []resource.Resource{configMap(t, "prod", "app", map[string]any{"application.yaml": "server: [unclosed"})}
	right := []resource.Resource{configMap(t, "staging", "app", map[string]any{"application.yaml": "server: {}"})}

	report := NewEngine().DiffResources(context.Background(), left, right, resource.MatchGroup, []queryspec.Spec{
		queryspec.NewEmbedded("application.yaml", embedded.Structured, "", ""),
	})
	if len(report.Results) != 0 {
		t.Fatalf("expected failing spec to be skipped, got %+v", report.Results)
	}
	if len(report.Errors) != 1 || !faults.IsCategory(report.Errors[0], faults.DecodeError) {
		t.Fatalf("expected one decode error, got %v", report.Errors)
	}
	if !strings.Contains(report.Errors[0].Error(), "data.application.yaml") {
		t.Fatalf("expected error to name the embedded entry, got %v", report.Errors[0])
	}
}

func TestDiffNumberAndStringDiffer(t *testing.T) {
	t.Parallel()

	left := []resource.Resource{newResource(t, "prod", map[string]any{
		"kind": "Service", "metadata": map[string]any{"name": "web"}, "spec": map[string]any{"port": 8080},
	})}
	right := []resource.Resource{newResource(t, "staging", map[string]any{
		"kind": "Service", "metadata": map[string]any{"name": "web"}, "spec": map[string]any{"port": "8080"},
	})}

	report := NewEngine().DiffResources(context.Background(), left, right, resource.MatchGroup, []queryspec.Spec{
		queryspec.NewDirect("spec.port", ""),
	})
	if len(report.Results) != 1 {
		t.Fatalf("expected number and string to differ, got %+v", report.Results)
	}
}

func TestDiffAbsentIsComparable(t *testing.T) {
	t.Parallel()

	left := []resource.Resource{newResource(t, "prod", map[string]any{
		"kind": "Service", "metadata": map[string]any{"name": "web"}, "spec": map[string]any{"image": "nginx"},
	})}
	right := []resource.Resource{newResource(t, "staging", map[string]any{
		"kind": "Service", "metadata": map[string]any{"name": "web"},
	})}

	report := NewEngine().DiffResources(context.Background(), left, right, resource.MatchGroup, []queryspec.Spec{
		queryspec.NewDirect("spec.image", ""),
	})
	if len(report.Results) != 1 || !report.Results[0].Differences[0].Right.IsAbsent() {
		t.Fatalf("expected absent right value, got %+v", report.Results)
	}
}

func TestDiffErrorsOrderLoaderFirst(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	leftRoot := filepath.Join(base, "prod")
	writeFile(t, filepath.Join(leftRoot, "ns1", "configmaps", "app.yaml"), `kind: ConfigMap
metadata:
  name: app
data:
  application.yaml: "server: [unclosed"
`)
	writeFile(t, filepath.Join(leftRoot, "ns1", "configmaps", "broken.yaml"), "kind: [unclosed\n")

	report := NewEngine().DiffGroups(context.Background(), leftRoot, leftRoot, []queryspec.Spec{
		queryspec.NewEmbedded("application.yaml", embedded.Structured, "", ""),
	})
	if len(report.Errors) != 4 {
		t.Fatalf("expected two loader and two decode errors, got %v", report.Errors)
	}
	if !faults.IsCategory(report.Errors[0], faults.MalformedTextError) || !faults.IsCategory(report.Errors[1], faults.MalformedTextError) {
		t.Fatalf("expected loader errors first, got %v", report.Errors)
	}
	if !faults.IsCategory(report.Errors[2], faults.DecodeError) {
		t.Fatalf("expected decode errors last, got %v", report.Errors)
	}
}

func TestDiffInvalidSpec(t *testing.T) {
	t.Parallel()

	report := NewEngine().DiffResources(context.Background(), nil, nil, resource.MatchGroup, []queryspec.Spec{
		queryspec.NewDirect("", ""),
	})
	if len(report.Errors) != 1 || !faults.IsCategory(report.Errors[0], faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", report.Errors)
	}
}

func TestDiffWithKinds(t *testing.T) {
	t.Parallel()

	left := []resource.Resource{
		newResource(t, "prod", map[string]any{"kind": "Service", "metadata": map[string]any{"name": "web"}}),
		newResource(t, "prod", map[string]any{"kind": "ConfigMap", "metadata": map[string]any{"name": "web"}}),
	}

	report := NewEngine(WithKinds("configmap")).DiffResources(context.Background(), left, nil, resource.MatchGroup, nil)
	if len(report.Results) != 1 || report.Results[0].Identity.Kind != "ConfigMap" {
		t.Fatalf("expected only the ConfigMap to be compared, got %+v", report.Results)
	}
}

func service(name string, namespace string, replicas int) string {
	return "kind: Service\nmetadata:\n  name: " + name + "\n  namespace: " + namespace +
		"\nspec:\n  replicas: " + strconv.Itoa(replicas) + "\n"
}

func configMap(t *testing.T, group string, name string, data map[string]any) resource.Resource {
	t.Helper()

	return newResource(t, group, map[string]any{
		"kind":     "ConfigMap",
		"metadata": map[string]any{"name": name, "namespace": "ns1"},
		"data":     data,
	})
}

func newResource(t *testing.T, group string, content map[string]any) resource.Resource {
	t.Helper()

	item, err := resource.New(value.MustFromAny(content), resource.Origin{Group: group, SourcePath: group + ".yaml"})
	if err != nil {
		t.Fatalf("resource.New returned error: %v", err)
	}
	return item
}

func writeFile(t *testing.T, filePath string, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(filePath, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}
