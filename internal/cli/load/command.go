package load

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/crmarques/snapdiff/internal/cli/common"
	"github.com/crmarques/snapdiff/loader"
	"github.com/crmarques/snapdiff/resource"
)

type output struct {
	Kinds     []string            `json:"kinds" yaml:"kinds"`
	Resources []resource.Resource `json:"resources" yaml:"resources"`
}

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var kinds []string

	command := &cobra.Command{
		Use:   "load <path>",
		Short: "Load a tree, file or git revision and list its resources",
		Example: `  snapdiff load ./snapshots/prod
  snapdiff load ./snapshots/prod/ns1/services/web.yaml
  snapdiff load git:./snapshots@main:prod --kind ConfigMap`,
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			result := common.NewLoader(deps).LoadPath(command.Context(), args[0])
			items := loader.FilterKinds(result.Resources, kinds...)

			value := output{Kinds: loader.Kinds(items), Resources: items}
			if value.Resources == nil {
				value.Resources = []resource.Resource{}
			}

			options := common.ResolveOutputOptions(command, globalFlags, deps)
			if err := common.WriteOutput(command, options, value, func(w io.Writer, item output) error {
				return renderText(w, item, common.IsVerbose(globalFlags))
			}); err != nil {
				return err
			}
			return common.ReportErrors(command, result.Errors)
		},
	}
	common.BindKindFlag(command, &kinds)

	return command
}

func renderText(w io.Writer, value output, verbose bool) error {
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(table, "GROUP\tNAMESPACE\tKIND\tNAME\tFILE")
	for _, item := range value.Resources {
		file := item.RelativePath
		if verbose {
			file = fmt.Sprintf("%s#%d %s", item.RelativePath, item.DocumentIndex, item.Digest)
		}
		_, _ = fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\n", item.Group, item.Namespace, item.Kind, item.Name, file)
	}
	if err := table.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d resources\n", len(value.Resources))
	return err
}
