package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crmarques/snapdiff/faults"
)

func TestLoadExplicitFile(t *testing.T) {
	t.Setenv(ConfigFileEnvVar, "")
	t.Setenv("SNAPDIFF_OUTPUT", "")

	path := filepath.Join(t.TempDir(), "snapdiff.yaml")
	writeFile(t, path, `specs_file: keys.yaml
output: YAML
no_color: true
telemetry:
  metrics_textfile: /tmp/snapdiff.prom
  otlp_endpoint: localhost:4317
  otlp_insecure: true
`)

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.SpecsFile != "keys.yaml" || settings.Output != "yaml" || !settings.NoColor {
		t.Fatalf("unexpected settings %+v", settings)
	}
	if settings.Telemetry.MetricsTextfile != "/tmp/snapdiff.prom" || settings.Telemetry.OTLPEndpoint != "localhost:4317" || !settings.Telemetry.OTLPInsecure {
		t.Fatalf("unexpected telemetry settings %+v", settings.Telemetry)
	}
	if settings.File != path {
		t.Fatalf("expected file %q, got %q", path, settings.File)
	}
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapdiff.yaml")
	writeFile(t, path, "output: text\n")

	t.Setenv(ConfigFileEnvVar, "")
	t.Setenv("SNAPDIFF_OUTPUT", "json")
	t.Setenv("SNAPDIFF_TELEMETRY_OTLP_ENDPOINT", "collector:4317")

	settings, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.Output != "json" {
		t.Fatalf("expected env output json, got %q", settings.Output)
	}
	if settings.Telemetry.OTLPEndpoint != "collector:4317" {
		t.Fatalf("expected env endpoint, got %q", settings.Telemetry.OTLPEndpoint)
	}
}

func TestLoadConfigFileFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "specs_file: from-env.yaml\n")
	t.Setenv(ConfigFileEnvVar, path)
	t.Setenv("SNAPDIFF_OUTPUT", "")

	settings, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if settings.SpecsFile != "from-env.yaml" {
		t.Fatalf("unexpected specs file %q", settings.SpecsFile)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(ConfigFileEnvVar, "")
	t.Setenv("SNAPDIFF_OUTPUT", "")

	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !faults.IsCategory(err, faults.NotFoundError) {
		t.Fatalf("expected not found error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	writeFile(t, invalid, "output: html\n")
	if _, err := Load(invalid); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error, got %v", err)
	}

	malformed := filepath.Join(dir, "malformed.yaml")
	writeFile(t, malformed, "output: [unclosed\n")
	if _, err := Load(malformed); !faults.IsCategory(err, faults.ValidationError) {
		t.Fatalf("expected validation error for malformed file, got %v", err)
	}
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
}
