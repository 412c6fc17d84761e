package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/crmarques/snapdiff/config"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/internal/cli/commandmeta"
	"github.com/crmarques/snapdiff/internal/cli/common"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/repository"
)

type Dependencies struct {
	Settings      config.Settings
	Metrics       *telemetry.Metrics
	OpenSpecStore repository.SpecStoreOpener
}

func (d Dependencies) commandDependencies() common.CommandDependencies {
	return common.CommandDependencies{
		Settings:      d.Settings,
		Metrics:       d.Metrics,
		OpenSpecStore: d.OpenSpecStore,
	}
}

// Execute runs the command line args, without the program name.
func Execute(ctx context.Context, deps Dependencies, args []string) error {
	root := NewRootCommand(deps)
	root.SetArgs(args)
	command, err := root.ExecuteContextC(ctx)
	emitStatus := shouldEmitExecutionStatus(args, command)

	if err != nil {
		switch {
		case errors.Is(err, common.ErrDifferencesFound):
		case emitStatus:
			writeExecutionErrorStatus(root.ErrOrStderr(), err)
		default:
			_, _ = fmt.Fprintln(root.ErrOrStderr(), strings.TrimSpace(err.Error()))
		}
		return err
	}
	if emitStatus {
		writeExecutionOKStatus(root.ErrOrStderr())
	}
	return nil
}

// ExitCodeForError maps command errors to process exit codes: 1 for found
// differences and untyped failures, 2 for validation, 3 for missing paths and
// 4 for output produced with accumulated errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return 0
	}

	var partial *common.PartialResultError
	if errors.As(err, &partial) {
		return 4
	}
	if errors.Is(err, common.ErrDifferencesFound) {
		return 1
	}

	var typedErr *faults.TypedError
	if !errors.As(err, &typedErr) {
		return 1
	}

	switch typedErr.Category {
	case faults.ValidationError:
		return 2
	case faults.NotFoundError:
		return 3
	default:
		return 1
	}
}

func writeExecutionOKStatus(w io.Writer) {
	_, _ = fmt.Fprintf(w, "%s command executed successfully.\n", formatStatusLabel(w, "OK"))
}

func writeExecutionErrorStatus(w io.Writer, err error) {
	description := "command execution failed"
	if err != nil {
		description = fmt.Sprintf("%s: %s", description, strings.TrimSpace(err.Error()))
	}
	_, _ = fmt.Fprintf(w, "%s %s.\n", formatStatusLabel(w, "ERROR"), description)
}

func formatStatusLabel(w io.Writer, status string) string {
	label := fmt.Sprintf("[%s]", strings.TrimSpace(status))
	if !supportsANSIStatus(w) {
		return label
	}

	switch strings.TrimSpace(status) {
	case "OK":
		return color.New(color.FgGreen, color.Bold).Sprint(label)
	case "ERROR":
		return color.New(color.FgRed, color.Bold).Sprint(label)
	default:
		return label
	}
}

func supportsANSIStatus(w io.Writer) bool {
	if shouldSuppressColor(os.Args[1:]) {
		return false
	}

	file, ok := w.(*os.File)
	if !ok {
		return false
	}

	info, err := file.Stat()
	if err != nil || info == nil {
		return false
	}
	if (info.Mode() & os.ModeCharDevice) == 0 {
		return false
	}

	term := strings.TrimSpace(strings.ToLower(os.Getenv("TERM")))
	return term != "" && term != "dumb"
}

func shouldSuppressColor(args []string) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return true
	}
	return hasNoColorArgToken(args)
}

func shouldEmitExecutionStatus(args []string, command *cobra.Command) bool {
	if shouldSuppressStatusMessage(args) {
		return false
	}
	if isHelpOrCompletionInvocation(args) {
		return false
	}
	return commandPathSupportsExecutionStatus(commandPath(command))
}

func commandPath(command *cobra.Command) string {
	if command == nil {
		return ""
	}
	return strings.TrimSpace(command.CommandPath())
}

func commandPathSupportsExecutionStatus(path string) bool {
	return commandmeta.EmitsExecutionStatusPath(path)
}

func shouldSuppressStatusMessage(args []string) bool {
	flags := pflag.NewFlagSet("status", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.SetOutput(io.Discard)

	var noStatus bool
	flags.BoolVarP(&noStatus, "no-status", "n", false, "hide status output")
	if err := flags.Parse(args); err != nil {
		return hasNoStatusArgToken(args)
	}
	return noStatus
}

func isHelpOrCompletionInvocation(args []string) bool {
	if len(args) == 0 {
		return true
	}
	switch args[0] {
	case "help", "completion", "__complete", "__completeNoDesc":
		return true
	}

	for _, current := range args {
		if current == "--" {
			break
		}
		if current == "--help" || current == "-h" {
			return true
		}
	}
	return false
}

func hasNoStatusArgToken(args []string) bool {
	for _, current := range args {
		if current == "--no-status" || current == "-n" {
			return true
		}
		if strings.HasPrefix(current, "--no-status=") {
			return strings.TrimSpace(strings.TrimPrefix(current, "--no-status=")) != "false"
		}
	}
	return false
}

func hasNoColorArgToken(args []string) bool {
	for _, current := range args {
		if current == "--no-color" {
			return true
		}
		if strings.HasPrefix(current, "--no-color=") {
			return strings.TrimSpace(strings.TrimPrefix(current, "--no-color=")) != "false"
		}
	}
	return false
}

// ConfigPathFromArgs finds --config before cobra parses the command line, so
// settings can be loaded ahead of building the command tree.
func ConfigPathFromArgs(args []string) string {
	for idx := 0; idx < len(args); idx++ {
		current := args[idx]
		if current == "--" {
			break
		}
		if current == "--config" {
			if idx+1 < len(args) {
				return args[idx+1]
			}
			return ""
		}
		if strings.HasPrefix(current, "--config=") {
			return strings.TrimPrefix(current, "--config=")
		}
	}
	return ""
}
