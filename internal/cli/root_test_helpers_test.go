package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/crmarques/snapdiff/faults"
	clitestkit "github.com/crmarques/snapdiff/internal/cli/testkit"
	specstore "github.com/crmarques/snapdiff/internal/providers/specstore/file"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/repository"
)

func executeForTest(deps Dependencies, stdin string, args ...string) (string, error) {
	return clitestkit.ExecuteCommandForTest(NewRootCommand(deps), stdin, args...)
}

func executeForTestWithStreams(deps Dependencies, stdin string, args ...string) (string, string, error) {
	return clitestkit.ExecuteCommandForTestWithStreams(NewRootCommand(deps), stdin, args...)
}

func registeredPaths(command *cobra.Command, prefix []string) [][]string {
	return clitestkit.RegisteredPaths(command, prefix)
}

func joinPath(path []string) string {
	return clitestkit.JoinPath(path)
}

func testDeps() Dependencies {
	return Dependencies{
		Metrics: telemetry.NewMetrics(),
		OpenSpecStore: func(path string) repository.SpecStore {
			return specstore.NewStore(path)
		},
	}
}

func assertTypedCategory(t *testing.T, err error, category faults.ErrorCategory) {
	t.Helper()

	if !faults.IsCategory(err, category) {
		t.Fatalf("expected %s error, got %v", category, err)
	}
}

// writeTree writes files below a fresh temporary directory and returns it.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()
	for relativePath, content := range files {
		target := filepath.Join(root, filepath.FromSlash(relativePath))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(target, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
	}
	return root
}

func service(name string, replicas string) string {
	return "kind: Service\nmetadata:\n  name: " + name + "\n  namespace: ns1\nspec:\n  replicas: " + replicas + "\n"
}
