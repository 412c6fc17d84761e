package main

import (
	"context"
	"fmt"
	"os"

	"github.com/crmarques/snapdiff/config"
	"github.com/crmarques/snapdiff/core"
	"github.com/crmarques/snapdiff/internal/cli"
	"github.com/crmarques/snapdiff/internal/cli/version"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

func run(ctx context.Context, args []string) int {
	bootstrap := core.BootstrapConfig{
		ConfigPath:     cli.ConfigPathFromArgs(args),
		ServiceVersion: version.Version,
	}

	runtime, err := core.NewRuntime(ctx, bootstrap)
	if err != nil {
		if !isShellCompletionInvocation(args) {
			_, _ = fmt.Fprintln(os.Stderr, err)
			return exitCodeForError(err)
		}
		// Completion must keep working with a broken settings file.
		runtime, err = core.NewRuntimeFromSettings(ctx, config.Defaults(), bootstrap)
		if err != nil {
			return exitCodeForError(err)
		}
	}

	execErr := cli.Execute(ctx, cli.Dependencies{
		Settings:      runtime.Settings,
		Metrics:       runtime.Metrics,
		OpenSpecStore: runtime.OpenSpecStore,
	}, args)
	if closeErr := runtime.Close(ctx); closeErr != nil {
		_, _ = fmt.Fprintln(os.Stderr, closeErr)
	}
	return exitCodeForError(execErr)
}

func exitCodeForError(err error) int {
	return cli.ExitCodeForError(err)
}

func isShellCompletionInvocation(args []string) bool {
	if len(args) == 0 {
		return false
	}
	return args[0] == "__complete" || args[0] == "__completeNoDesc"
}
