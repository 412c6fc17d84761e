package common

import (
	"github.com/spf13/cobra"

	"github.com/crmarques/snapdiff/embedded"
)

type GlobalFlags struct {
	Config   string
	Debug    bool
	Verbose  bool
	NoStatus bool
	NoColor  bool
	Output   string
	JQ       string
}

// SpecFlags collects the query specs of one command invocation. Specs given
// inline come first, followed by the store file's records.
type SpecFlags struct {
	Keys      []string
	Embedded  []string
	SpecsFile string
}

func BindGlobalFlags(command *cobra.Command, flags *GlobalFlags) {
	command.PersistentFlags().StringVar(&flags.Config, "config", "", "settings file (default ./snapdiff.yaml)")
	command.PersistentFlags().BoolVarP(&flags.Debug, "debug", "d", false, "enable debug output")
	command.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "show complementary command output")
	command.PersistentFlags().BoolVarP(&flags.NoStatus, "no-status", "n", false, "hide status output")
	command.PersistentFlags().BoolVar(&flags.NoColor, "no-color", false, "disable color output")
	command.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputAuto, "output format: auto|text|json|yaml")
	command.PersistentFlags().StringVar(&flags.JQ, "jq", "", "jq expression applied to structured output")
	RegisterOutputFlagCompletion(command)
}

func IsVerbose(flags *GlobalFlags) bool {
	return flags != nil && flags.Verbose
}

func BindSpecFlags(command *cobra.Command, flags *SpecFlags) {
	command.Flags().StringArrayVarP(&flags.Keys, "key", "k", nil, "direct field path, as PATH or PATH=ALIAS (repeatable)")
	command.Flags().StringArrayVarP(&flags.Embedded, "embedded", "e", nil, "embedded field, as KEY:TYPE[:INNER_PATH][=ALIAS] (repeatable)")
	command.Flags().StringVar(&flags.SpecsFile, "specs", "", "key-config store file")
}

func BindKindFlag(command *cobra.Command, kinds *[]string) {
	command.Flags().StringSliceVar(kinds, "kind", nil, "only include resources of these kinds (repeatable)")
}

func RegisterOutputFlagCompletion(command *cobra.Command) {
	_ = command.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(
		[]string{OutputAuto, OutputText, OutputJSON, OutputYAML},
		cobra.ShellCompDirectiveNoFileComp,
	))
}

func RegisterContentTypeCompletion(command *cobra.Command, flagName string) {
	_ = command.RegisterFlagCompletionFunc(flagName, cobra.FixedCompletions(
		[]string{embedded.Text.String(), embedded.Structured.String(), embedded.LineKV.String()},
		cobra.ShellCompDirectiveNoFileComp,
	))
}
