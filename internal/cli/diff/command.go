package diff

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/crmarques/snapdiff/compare"
	"github.com/crmarques/snapdiff/internal/cli/common"
	"github.com/crmarques/snapdiff/loader"
	"github.com/crmarques/snapdiff/value"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var (
		specFlags common.SpecFlags
		kinds     []string
		files     bool
		exitCode  bool
	)

	command := &cobra.Command{
		Use:   "diff <left> <right>",
		Short: "Compare the selected fields of two trees or two files",
		Example: `  snapdiff diff ./snapshots/prod ./snapshots/staging --key spec.replicas
  snapdiff diff left.yaml right.yaml --key spec.image=image
  snapdiff diff prod staging --embedded application.yaml:yaml:server.port=port
  snapdiff diff git:.@HEAD~1:prod prod --specs keys.yaml --exit-code`,
		Args: cobra.ExactArgs(2),
		RunE: func(command *cobra.Command, args []string) error {
			specs, err := common.ResolveSpecs(command.Context(), deps, specFlags, common.SpecsForCompare)
			if err != nil {
				return err
			}

			engine := compare.NewEngine(
				compare.WithLoader(common.NewLoader(deps)),
				compare.WithMetrics(deps.Metrics),
				compare.WithKinds(kinds...),
			)

			var report compare.Report
			if files || bothFiles(args[0], args[1]) {
				report = engine.DiffFiles(command.Context(), args[0], args[1], specs)
			} else {
				report = engine.DiffGroups(command.Context(), args[0], args[1], specs)
			}

			options := common.ResolveOutputOptions(command, globalFlags, deps)
			if err := common.WriteOutput(command, options, report, func(w io.Writer, item compare.Report) error {
				return renderText(w, item)
			}); err != nil {
				return err
			}
			if err := common.ReportErrors(command, report.Errors); err != nil {
				return err
			}
			if exitCode && report.HasDifferences() {
				return common.ErrDifferencesFound
			}
			return nil
		},
	}
	common.BindSpecFlags(command, &specFlags)
	common.BindKindFlag(command, &kinds)
	command.Flags().BoolVar(&files, "files", false, "compare two single files, pairing documents by kind and name")
	command.Flags().BoolVar(&exitCode, "exit-code", false, "exit with status 1 when differences are found")

	return command
}

func bothFiles(left string, right string) bool {
	return loader.IsFile(left) && loader.IsFile(right)
}

func renderText(w io.Writer, report compare.Report) error {
	header := color.New(color.Bold)
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	missing := color.New(color.FgYellow)

	if len(report.Results) == 0 {
		_, err := fmt.Fprintln(w, "no differences")
		return err
	}

	for _, result := range report.Results {
		identity := result.Identity
		title := fmt.Sprintf("%s %s/%s (%s)", identity.Kind, identity.Namespace, identity.Name, identity.Group)
		if result.MissingOnRight {
			_, _ = header.Fprint(w, title)
			_, _ = missing.Fprintln(w, " missing on right")
			continue
		}

		_, _ = header.Fprintln(w, title)
		for _, entry := range result.Differences {
			label := entry.FieldPath
			if entry.Alias != "" {
				label += " (" + entry.Alias + ")"
			}
			_, _ = fmt.Fprintf(w, "  %s: ", label)
			_, _ = removed.Fprint(w, display(entry.Left))
			_, _ = fmt.Fprint(w, " -> ")
			_, _ = added.Fprintln(w, display(entry.Right))
		}
	}

	_, err := fmt.Fprintf(w, "%d differences in %d resources\n", report.DifferenceCount(), len(report.Results))
	return err
}

func display(item value.Value) string {
	switch {
	case item.IsAbsent():
		return "<absent>"
	case item.IsNull():
		return "null"
	}
	if text, ok := item.AsString(); ok {
		return fmt.Sprintf("%q", text)
	}
	return value.Text(item)
}
