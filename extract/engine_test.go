package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/crmarques/snapdiff/embedded"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/queryspec"
	"github.com/crmarques/snapdiff/resource"
	"github.com/crmarques/snapdiff/value"
)

func TestExtractMarksMissingFieldsAbsent(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "prod")
	writeFile(t, filepath.Join(root, "ns1", "deployments", "web.yaml"), deployment("web", "nginx:1.25"))
	writeFile(t, filepath.Join(root, "ns1", "deployments", "api.yaml"), deployment("api", "api:2"))
	writeFile(t, filepath.Join(root, "ns1", "deployments", "worker.yaml"), "kind: Deployment\nmetadata:\n  name: worker\n  namespace: ns1\nspec: {}\n")

	metrics := telemetry.NewMetrics()
	report := NewEngine(WithMetrics(metrics)).Extract(context.Background(), root, []queryspec.Spec{
		queryspec.NewDirect("spec.image", ""),
	})
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors %v", report.Errors)
	}
	if len(report.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(report.Records))
	}

	names := []string{report.Records[0].Resource.Name, report.Records[1].Resource.Name, report.Records[2].Resource.Name}
	if names[0] != "api" || names[1] != "web" || names[2] != "worker" {
		t.Fatalf("expected records sorted by identity, got %v", names)
	}

	worker := report.Records[2]
	if len(worker.Values) != 1 {
		t.Fatalf("expected the missing field to be kept, got %+v", worker.Values)
	}
	if !worker.Values[0].Absent || !worker.Values[0].Value.IsAbsent() || worker.Values[0].DisplayKey != "spec.image" {
		t.Fatalf("expected absent marker, got %+v", worker.Values[0])
	}

	web, found := report.Records[1].Lookup("spec.image")
	if !found || !value.Equal(web.Value, value.String("nginx:1.25")) || web.Absent {
		t.Fatalf("unexpected web value %+v", web)
	}

	expected := `# HELP snapdiff_extracted_values_total Values produced by the extraction engine.
# TYPE snapdiff_extracted_values_total counter
snapdiff_extracted_values_total 3
`
	if err := testutil.GatherAndCompare(metrics.Registry(), strings.NewReader(expected), "snapdiff_extracted_values_total"); err != nil {
		t.Fatalf("unexpected extracted metric: %v", err)
	}
}

func TestExtractKeepsSpecOrderAndAliases(t *testing.T) {
	t.Parallel()

	item := newResource(t, map[string]any{
		"kind":     "ConfigMap",
		"metadata": map[string]any{"name": "app"},
		"data": map[string]any{
			"application.yaml": "server:\n  port: 8080\n",
			"app.properties":   "db.url=jdbc:pg\nmode: fast\n",
			"motd":             "hello",
		},
	})

	specs := []queryspec.Spec{
		queryspec.NewEmbedded("application.yaml", embedded.Structured, "server.port", "port"),
		queryspec.NewEmbedded("app.properties", embedded.LineKV, "db.url", ""),
		queryspec.NewEmbedded("app.properties", embedded.LineKV, "", ""),
		queryspec.NewEmbedded("motd", embedded.Text, "ignored", ""),
		queryspec.NewDirect("metadata.name", "name"),
	}
	report := NewEngine().ExtractResources(context.Background(), []resource.Resource{item}, specs)
	if len(report.Errors) != 0 {
		t.Fatalf("unexpected errors %v", report.Errors)
	}

	values := report.Records[0].Values
	wantKeys := []string{
		"data.application.yaml.server.port (port)",
		"data.app.properties.db.url",
		"data.app.properties",
		"data.motd",
		"metadata.name (name)",
	}
	if len(values) != len(wantKeys) {
		t.Fatalf("expected %d values, got %d", len(wantKeys), len(values))
	}
	for idx, want := range wantKeys {
		if values[idx].DisplayKey != want {
			t.Fatalf("value %d: expected display key %q, got %q", idx, want, values[idx].DisplayKey)
		}
	}

	if !value.Equal(values[0].Value, value.Int(8080)) {
		t.Fatalf("unexpected port %v", values[0].Value)
	}
	if !value.Equal(values[1].Value, value.String("jdbc:pg")) {
		t.Fatalf("unexpected db url %v", values[1].Value)
	}
	whole := value.MustFromAny(map[string]any{"db.url": "jdbc:pg", "mode": "fast"})
	if !value.Equal(values[2].Value, whole) {
		t.Fatalf("unexpected properties %v", values[2].Value)
	}
	if !value.Equal(values[3].Value, value.String("hello")) {
		t.Fatalf("unexpected text %v", values[3].Value)
	}
}

func TestExtractDecodeFailureRecordsDiagnostic(t *testing.T) {
	t.Parallel()

	item := newResource(t, map[string]any{
		"kind":     "ConfigMap",
		"metadata": map[string]any{"name": "app"},
		"data":     map[string]any{"application.yaml": "server: [unclosed"},
	})

	report := NewEngine().ExtractResources(context.Background(), []resource.Resource{item}, []queryspec.Spec{
		queryspec.NewEmbedded("application.yaml", embedded.Structured, "server.port", ""),
	})
	if len(report.Errors) != 1 || !faults.IsCategory(report.Errors[0], faults.DecodeError) {
		t.Fatalf("expected one decode error, got %v", report.Errors)
	}

	extracted := report.Records[0].Values[0]
	if extracted.Path != "data.application.yaml" || extracted.Absent {
		t.Fatalf("expected diagnostic at the embedded entry, got %+v", extracted)
	}
	text, ok := extracted.Value.AsString()
	if !ok || !strings.HasPrefix(text, "parse failed: ") {
		t.Fatalf("unexpected diagnostic %v", extracted.Value)
	}
}

func TestExtractSingleFileAndMissingPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "web.yaml")
	writeFile(t, file, deployment("web", "nginx")+"---\n"+deployment("web2", "nginx:2"))

	report := NewEngine().Extract(context.Background(), file, []queryspec.Spec{queryspec.NewDirect("spec.image", "")})
	if len(report.Errors) != 0 || len(report.Records) != 2 {
		t.Fatalf("unexpected report %+v errors %v", report.Records, report.Errors)
	}

	missing := NewEngine().Extract(context.Background(), filepath.Join(dir, "absent"), nil)
	if len(missing.Records) != 0 || len(missing.Errors) != 1 || !faults.IsCategory(missing.Errors[0], faults.NotFoundError) {
		t.Fatalf("expected not found error, got %+v", missing)
	}
}

func TestExtractWithKindsAndInvalidSpecs(t *testing.T) {
	t.Parallel()

	items := []resource.Resource{
		newResource(t, map[string]any{"kind": "Service", "metadata": map[string]any{"name": "a"}}),
		newResource(t, map[string]any{"kind": "ConfigMap", "metadata": map[string]any{"name": "b"}}),
	}

	report := NewEngine(WithKinds("Service")).ExtractResources(context.Background(), items, nil)
	if len(report.Records) != 1 || report.Records[0].Resource.Kind != "Service" {
		t.Fatalf("unexpected records %+v", report.Records)
	}

	invalid := NewEngine().ExtractResources(context.Background(), items, []queryspec.Spec{
		{Embedded: true, ContentType: embedded.Structured},
	})
	if len(invalid.Records) != 0 || len(invalid.Errors) != 1 || !faults.IsCategory(invalid.Errors[0], faults.ValidationError) {
		t.Fatalf("expected validation error, got %+v", invalid)
	}
}

func deployment(name string, image string) string {
	return "kind: Deployment\nmetadata:\n  name: " + name + "\n  namespace: ns1\nspec:\n  image: " + image + "\n"
}

func newResource(t *testing.T, content map[string]any) resource.Resource {
	t.Helper()

	item, err := resource.New(value.MustFromAny(content), resource.Origin{Group: "prod", SourcePath: "prod.yaml"})
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
