package common

import (
	"fmt"

	gojson "github.com/goccy/go-json"
	"github.com/itchyny/gojq"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"
)

// ApplyJQ runs expression against the JSON form of value and returns every
// result it emits.
func ApplyJQ(command *cobra.Command, expression string, value any) ([]any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, ValidationError("invalid jq expression", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, ValidationError("invalid jq expression", err)
	}

	encoded, err := gojson.Marshal(value)
	if err != nil {
		return nil, err
	}
	var input any
	if err := gojson.Unmarshal(encoded, &input); err != nil {
		return nil, err
	}

	var results []any
	iter := code.RunWithContext(command.Context(), input)
	for {
		result, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := result.(error); isErr {
			if haltErr, isHalt := err.(*gojq.HaltError); isHalt && haltErr.Value() == nil {
				break
			}
			return nil, ValidationError("jq evaluation failed", err)
		}
		results = append(results, result)
	}
	return results, nil
}

// writeJQOutput prints one line per result: strings raw in text mode, JSON
// otherwise, or a YAML stream for --output yaml.
func writeJQOutput(command *cobra.Command, options OutputOptions, value any) error {
	results, err := ApplyJQ(command, options.JQ, value)
	if err != nil {
		return err
	}

	out := command.OutOrStdout()
	for idx, result := range results {
		switch options.Format {
		case OutputYAML:
			encoded, err := yaml.Marshal(result)
			if err != nil {
				return err
			}
			if idx > 0 {
				_, _ = fmt.Fprintln(out, "---")
			}
			if _, err := fmt.Fprint(out, string(encoded)); err != nil {
				return err
			}
		case OutputJSON:
			if err := writeJSON(out, result, true); err != nil {
				return err
			}
		default:
			if text, ok := result.(string); ok {
				if _, err := fmt.Fprintln(out, text); err != nil {
					return err
				}
				continue
			}
			if err := writeJSON(out, result, false); err != nil {
				return err
			}
		}
	}
	return nil
}
