package common

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/crmarques/snapdiff/internal/cli/commandmeta"
)

const (
	OutputAuto = "auto"
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// OutputOptions is the resolved output format plus an optional jq filter.
type OutputOptions struct {
	Format string
	JQ     string
}

func ValidateOutputFormat(format string) error {
	switch format {
	case OutputAuto, OutputText, OutputJSON, OutputYAML:
		return nil
	default:
		return ValidationError("invalid output format: use auto, text, json, or yaml", nil)
	}
}

func ValidateOutputFormatForCommandPath(commandPath string, format string) error {
	switch strings.TrimSpace(format) {
	case "", OutputAuto, OutputText:
		return nil
	}

	switch commandmeta.OutputPolicyForPath(commandPath) {
	case commandmeta.OutputPolicyTextOnly:
		return ValidationError("command supports only text output; use --output text or --output auto", nil)
	case commandmeta.OutputPolicyYAMLDefaultTextOrYAML:
		if strings.TrimSpace(format) == OutputYAML {
			return nil
		}
		return ValidationError("command supports only yaml or text output; use --output yaml, text, or auto", nil)
	default:
		return nil
	}
}

// ResolveOutputOptions prefers an explicit --output over the output setting.
func ResolveOutputOptions(command *cobra.Command, globalFlags *GlobalFlags, deps CommandDependencies) OutputOptions {
	options := OutputOptions{Format: OutputAuto}
	if globalFlags == nil {
		return options
	}

	options.JQ = strings.TrimSpace(globalFlags.JQ)
	options.Format = globalFlags.Output
	outputFlag := command.Flag("output")
	explicit := outputFlag != nil && outputFlag.Changed
	if !explicit && deps.Settings.Output != "" {
		options.Format = deps.Settings.Output
	}
	if options.Format == "" {
		options.Format = OutputAuto
	}
	return options
}

func WriteOutput[T any](command *cobra.Command, options OutputOptions, value T, renderText func(io.Writer, T) error) error {
	if isNilOutputValue(value) {
		return nil
	}
	if options.JQ != "" {
		return writeJQOutput(command, options, value)
	}

	switch options.Format {
	case OutputAuto, OutputText:
		if renderText != nil {
			return renderText(command.OutOrStdout(), value)
		}
		_, err := fmt.Fprintln(command.OutOrStdout(), value)
		return err
	case OutputJSON:
		return writeJSON(command.OutOrStdout(), value, true)
	case OutputYAML:
		encoded, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(command.OutOrStdout(), string(encoded))
		return err
	default:
		return ValidationError("invalid output format: use auto, text, json, or yaml", nil)
	}
}

func WriteText(command *cobra.Command, options OutputOptions, text string) error {
	return WriteOutput(command, options, text, func(w io.Writer, value string) error {
		_, err := fmt.Fprintln(w, value)
		return err
	})
}

func writeJSON(w io.Writer, value any, indent bool) error {
	var (
		encoded []byte
		err     error
	)
	if indent {
		encoded, err = gojson.MarshalIndent(value, "", "  ")
	} else {
		encoded, err = gojson.Marshal(value)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(encoded))
	return err
}

func isNilOutputValue[T any](value T) bool {
	anyValue := any(value)
	if anyValue == nil {
		return true
	}

	reflected := reflect.ValueOf(anyValue)
	switch reflected.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Pointer, reflect.Slice:
		return reflected.IsNil()
	default:
		return false
	}
}
