package core

import (
	"context"

	"github.com/crmarques/snapdiff/config"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/repository"
)

// Runtime is the process-wide wiring shared by every command.
type Runtime struct {
	Settings      config.Settings
	Metrics       *telemetry.Metrics
	OpenSpecStore repository.SpecStoreOpener

	shutdownTracing func(context.Context) error
}

type BootstrapConfig struct {
	// ConfigPath is the settings file given with --config. Empty searches the
	// default locations.
	ConfigPath     string
	ServiceVersion string
}
