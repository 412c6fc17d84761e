package common

import (
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func IsInteractiveTerminal(command *cobra.Command) bool {
	return isTerminalReader(command.InOrStdin()) && isTerminalWriter(command.OutOrStdout())
}

// ConfigureColor enables colored text only when writing to a terminal and
// neither --no-color, the no_color setting nor NO_COLOR disable it.
func ConfigureColor(command *cobra.Command, flags *GlobalFlags, deps CommandDependencies) {
	disabled := deps.Settings.NoColor ||
		(flags != nil && flags.NoColor) ||
		strings.TrimSpace(os.Getenv("NO_COLOR")) != "" ||
		!isTerminalWriter(command.OutOrStdout())
	color.NoColor = disabled
}

func isTerminalReader(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func isTerminalWriter(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
