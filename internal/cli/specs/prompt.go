package specs

import (
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/crmarques/snapdiff/embedded"
	"github.com/crmarques/snapdiff/internal/cli/common"
	"github.com/crmarques/snapdiff/query"
	"github.com/crmarques/snapdiff/queryspec"
)

const directField = "direct"

func promptRecord(command *cobra.Command) (queryspec.Record, error) {
	source := directField
	if err := common.RunForm(command, huh.NewGroup(
		huh.NewSelect[string]().
			Title("Field source").
			Options(
				huh.NewOption("direct field", directField),
				huh.NewOption("embedded text", embedded.Text.String()),
				huh.NewOption("embedded yaml", embedded.Structured.String()),
				huh.NewOption("embedded properties", embedded.LineKV.String()),
			).
			Value(&source),
	)); err != nil {
		return queryspec.Record{}, err
	}

	var record queryspec.Record
	if source == directField {
		if err := common.RunForm(command, huh.NewGroup(
			huh.NewInput().Title("Field path").Value(&record.KeyPath).Validate(validatePath),
			huh.NewInput().Title("Alias").Value(&record.Alias),
		)); err != nil {
			return queryspec.Record{}, err
		}
		return record.Normalize(), nil
	}

	record.IsConfigMapFile = true
	record.FileType = source
	fields := []huh.Field{
		huh.NewInput().Title("Data key").Value(&record.FileKey).Validate(huh.ValidateNotEmpty()),
	}
	if source != embedded.Text.String() {
		fields = append(fields,
			huh.NewInput().Title("Compare path").Value(&record.CompareKey).Validate(validateOptionalPath),
			huh.NewInput().Title("Extract path").Value(&record.ExtractKey).Validate(validateOptionalPath),
		)
	}
	fields = append(fields, huh.NewInput().Title("Alias").Value(&record.Alias))

	if err := common.RunForm(command, huh.NewGroup(fields...)); err != nil {
		return queryspec.Record{}, err
	}
	return record.Normalize(), nil
}

func validatePath(input string) error {
	return query.Validate(strings.TrimSpace(input))
}

func validateOptionalPath(input string) error {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	return validatePath(input)
}
