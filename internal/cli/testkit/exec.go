// Package testkit runs cobra command trees against in-memory streams.
package testkit

import (
	"bytes"
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"
)

// Commands share package-level state (cobra annotations, fatih/color's
// NoColor switch), so test executions are serialized.
var executeMu sync.Mutex

func ExecuteCommandForTest(command *cobra.Command, stdin string, args ...string) (string, error) {
	output, _, err := ExecuteCommandForTestWithStreams(command, stdin, args...)
	return output, err
}

func ExecuteCommandForTestWithStreams(command *cobra.Command, stdin string, args ...string) (string, string, error) {
	executeMu.Lock()
	defer executeMu.Unlock()

	var stdout, stderr bytes.Buffer
	command.SetOut(&stdout)
	command.SetErr(&stderr)
	command.SetIn(strings.NewReader(stdin))
	command.SetArgs(args)

	err := command.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// RegisteredPaths lists every user-facing command path below command, depth
// first. Help and cobra's hidden completion commands are left out.
func RegisteredPaths(command *cobra.Command, prefix []string) [][]string {
	var paths [][]string
	for _, child := range command.Commands() {
		name := child.Name()
		if name == "help" || strings.HasPrefix(name, "__") {
			continue
		}
		current := append(append([]string{}, prefix...), name)
		paths = append(paths, current)
		paths = append(paths, RegisteredPaths(child, current)...)
	}
	return paths
}

func JoinPath(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, " ")
}
