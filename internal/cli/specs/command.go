package specs

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crmarques/snapdiff/document"
	"github.com/crmarques/snapdiff/internal/cli/common"
	"github.com/crmarques/snapdiff/queryspec"
)

func NewCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags) *cobra.Command {
	var storePath string

	command := &cobra.Command{
		Use:   "specs",
		Short: "Manage the key-config store",
		Args:  cobra.NoArgs,
	}
	command.PersistentFlags().StringVarP(&storePath, "file", "f", "", "key-config store file (default: specs_file setting)")

	command.AddCommand(
		newShowCommand(deps, globalFlags, &storePath),
		newAddCommand(deps, &storePath),
		newValidateCommand(deps, globalFlags, &storePath),
	)

	return command
}

func newShowCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, storePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored key configs",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			store, err := common.SpecStore(deps, *storePath)
			if err != nil {
				return err
			}
			records, err := store.Load(command.Context())
			if err != nil {
				return err
			}
			if records == nil {
				records = []queryspec.Record{}
			}

			options := common.ResolveOutputOptions(command, globalFlags, deps)
			return common.WriteOutput(command, options, records, renderRecords)
		},
	}
}

func newAddCommand(deps common.CommandDependencies, storePath *string) *cobra.Command {
	var (
		specFlags   common.SpecFlags
		interactive bool
	)

	command := &cobra.Command{
		Use:   "add",
		Short: "Append one key config to the store",
		Example: `  snapdiff specs add --key spec.replicas=replicas
  snapdiff specs add --embedded application.yaml:yaml:server.port=port
  snapdiff specs add --interactive`,
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			store, err := common.SpecStore(deps, *storePath)
			if err != nil {
				return err
			}

			var record queryspec.Record
			switch {
			case interactive:
				record, err = promptRecord(command)
			default:
				record, err = recordFromFlags(specFlags)
			}
			if err != nil {
				return err
			}

			if _, err := record.CompareSpec(); err != nil {
				return err
			}
			if _, err := record.ExtractSpec(); err != nil {
				return err
			}
			return store.Append(command.Context(), record)
		},
	}
	command.Flags().StringArrayVarP(&specFlags.Keys, "key", "k", nil, "direct field path, as PATH or PATH=ALIAS")
	command.Flags().StringArrayVarP(&specFlags.Embedded, "embedded", "e", nil, "embedded field, as KEY:TYPE[:INNER_PATH][=ALIAS]")
	command.Flags().BoolVar(&interactive, "interactive", false, "prompt for the key config")

	return command
}

func newValidateCommand(deps common.CommandDependencies, globalFlags *common.GlobalFlags, storePath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check that every stored key config converts to a valid spec",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			store, err := common.SpecStore(deps, *storePath)
			if err != nil {
				return err
			}
			records, err := store.Load(command.Context())
			if err != nil {
				return err
			}

			for idx, record := range records {
				if _, err := record.CompareSpec(); err != nil {
					return common.ValidationError("key config "+strconv.Itoa(idx+1)+" has an invalid compare spec", err)
				}
				if _, err := record.ExtractSpec(); err != nil {
					return common.ValidationError("key config "+strconv.Itoa(idx+1)+" has an invalid extract spec", err)
				}
			}

			options := common.ResolveOutputOptions(command, globalFlags, deps)
			return common.WriteText(command, options, fmt.Sprintf("%d key configs are valid", len(records)))
		},
	}
}

// recordFromFlags accepts exactly one --key or --embedded value.
func recordFromFlags(flags common.SpecFlags) (queryspec.Record, error) {
	if len(flags.Keys)+len(flags.Embedded) != 1 {
		return queryspec.Record{}, common.ValidationError("exactly one --key or --embedded value is required", nil)
	}

	var (
		spec queryspec.Spec
		err  error
	)
	if len(flags.Keys) == 1 {
		spec, err = common.ParseKeyFlag(flags.Keys[0])
	} else {
		spec, err = common.ParseEmbeddedFlag(flags.Embedded[0])
	}
	if err != nil {
		return queryspec.Record{}, err
	}
	return queryspec.RecordFromSpec(spec), nil
}

func renderRecords(w io.Writer, records []queryspec.Record) error {
	encoded, err := document.MarshalWithIndent(records, 2)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, string(encoded))
	return err
}
