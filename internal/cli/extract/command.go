package extract

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	extractengine "github.com/crmarques/snapdiff/extract"
	"github.com/crmarques/snapdiff/internal/cli/common"
	"github.com/crmarques/snapdiff/value"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var (
		specFlags common.SpecFlags
		kinds     []string
	)

	command := &cobra.Command{
		Use:   "extract <path>",
		Short: "Extract the selected fields from every resource of a tree or file",
		Example: `  snapdiff extract ./snapshots/prod --key spec.image
  snapdiff extract ./snapshots/prod/ns1 --embedded app.properties:properties
  snapdiff extract prod --specs keys.yaml --output json --jq '.records[].values'`,
		Args: cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			specs, err := common.ResolveSpecs(command.Context(), deps, specFlags, common.SpecsForExtract)
			if err != nil {
				return err
			}

			engine := extractengine.NewEngine(
				extractengine.WithLoader(common.NewLoader(deps)),
				extractengine.WithMetrics(deps.Metrics),
				extractengine.WithKinds(kinds...),
			)
			report := engine.Extract(command.Context(), args[0], specs)

			options := common.ResolveOutputOptions(command, globalFlags, deps)
			if err := common.WriteOutput(command, options, report, renderText); err != nil {
				return err
			}
			return common.ReportErrors(command, report.Errors)
		},
	}
	common.BindSpecFlags(command, &specFlags)
	common.BindKindFlag(command, &kinds)

	return command
}

func renderText(w io.Writer, report extractengine.Report) error {
	header := color.New(color.Bold)
	absent := color.New(color.Faint)

	for _, record := range report.Records {
		item := record.Resource
		_, _ = header.Fprintf(w, "%s %s/%s (%s)\n", item.Kind, item.Namespace, item.Name, item.Group)
		for _, extracted := range record.Values {
			if extracted.Absent {
				_, _ = fmt.Fprintf(w, "  %s: ", extracted.DisplayKey)
				_, _ = absent.Fprintln(w, "<absent>")
				continue
			}
			_, _ = fmt.Fprintf(w, "  %s: %s\n", extracted.DisplayKey, value.Text(extracted.Value))
		}
	}

	_, err := fmt.Fprintf(w, "%d records\n", len(report.Records))
	return err
}
