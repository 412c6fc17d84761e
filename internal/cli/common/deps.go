package common

import (
	"strings"

	"github.com/crmarques/snapdiff/config"
	"github.com/crmarques/snapdiff/faults"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/loader"
	"github.com/crmarques/snapdiff/repository"
)

type CommandDependencies struct {
	Settings      config.Settings
	Metrics       *telemetry.Metrics
	OpenSpecStore repository.SpecStoreOpener
}

func NewLoader(deps CommandDependencies) *loader.Loader {
	return loader.New(loader.WithMetrics(deps.Metrics))
}

// SpecStore opens the store at path, falling back to the specs_file setting.
func SpecStore(deps CommandDependencies, path string) (repository.SpecStore, error) {
	resolved := strings.TrimSpace(path)
	if resolved == "" {
		resolved = deps.Settings.SpecsFile
	}
	if resolved == "" {
		return nil, ValidationError("a key-config store path is required when no specs_file setting is configured", nil)
	}
	if deps.OpenSpecStore == nil {
		return nil, faults.NewTypedError(faults.InternalError, "key-config store is not configured", nil)
	}
	return deps.OpenSpecStore(resolved), nil
}
