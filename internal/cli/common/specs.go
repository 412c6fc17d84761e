package common

import (
	"context"
	"strings"

	"github.com/crmarques/snapdiff/embedded"
	"github.com/crmarques/snapdiff/query"
	"github.com/crmarques/snapdiff/queryspec"
)

// SpecPurpose picks which inner path of a stored record applies.
type SpecPurpose int

const (
	SpecsForCompare SpecPurpose = iota
	SpecsForExtract
)

// ParseKeyFlag parses PATH or PATH=ALIAS.
func ParseKeyFlag(raw string) (queryspec.Spec, error) {
	path, alias := splitAlias(raw)
	spec := queryspec.NewDirect(path, alias)
	if err := query.Validate(path); err != nil {
		return queryspec.Spec{}, ValidationError("invalid --key "+raw, err)
	}
	return spec, nil
}

// ParseEmbeddedFlag parses KEY:TYPE[:INNER_PATH][=ALIAS]. TYPE accepts every
// content type name and alias.
func ParseEmbeddedFlag(raw string) (queryspec.Spec, error) {
	body, alias := splitAlias(raw)
	parts := strings.SplitN(body, ":", 3)
	if len(parts) < 2 {
		return queryspec.Spec{}, ValidationError("invalid --embedded "+raw+": expected KEY:TYPE[:INNER_PATH][=ALIAS]", nil)
	}

	contentType, err := embedded.ParseContentType(parts[1])
	if err != nil {
		return queryspec.Spec{}, ValidationError("invalid --embedded "+raw, err)
	}
	innerPath := ""
	if len(parts) == 3 {
		innerPath = strings.TrimSpace(parts[2])
	}

	spec := queryspec.NewEmbedded(strings.TrimSpace(parts[0]), contentType, innerPath, alias)
	if err := spec.Validate(); err != nil {
		return queryspec.Spec{}, ValidationError("invalid --embedded "+raw, err)
	}
	return spec, nil
}

// ResolveSpecs builds the spec list from inline flags and the store file. The
// store file comes from --specs, or from the specs_file setting when no inline
// spec was given.
func ResolveSpecs(ctx context.Context, deps CommandDependencies, flags SpecFlags, purpose SpecPurpose) ([]queryspec.Spec, error) {
	specs := make([]queryspec.Spec, 0, len(flags.Keys)+len(flags.Embedded))
	for _, raw := range flags.Keys {
		spec, err := ParseKeyFlag(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	for _, raw := range flags.Embedded {
		spec, err := ParseEmbeddedFlag(raw)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	storePath := strings.TrimSpace(flags.SpecsFile)
	if storePath == "" && len(specs) == 0 {
		storePath = deps.Settings.SpecsFile
	}
	if storePath != "" {
		stored, err := LoadStoredSpecs(ctx, deps, storePath, purpose)
		if err != nil {
			return nil, err
		}
		specs = append(specs, stored...)
	}

	if len(specs) == 0 {
		return nil, ValidationError("at least one --key, --embedded or --specs value is required", nil)
	}
	return specs, nil
}

func LoadStoredSpecs(ctx context.Context, deps CommandDependencies, path string, purpose SpecPurpose) ([]queryspec.Spec, error) {
	store, err := SpecStore(deps, path)
	if err != nil {
		return nil, err
	}
	records, err := store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if purpose == SpecsForExtract {
		return queryspec.ExtractSpecs(records)
	}
	return queryspec.CompareSpecs(records)
}

func splitAlias(raw string) (string, string) {
	idx := strings.LastIndex(raw, "=")
	if idx < 0 {
		return strings.TrimSpace(raw), ""
	}
	return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+1:])
}
