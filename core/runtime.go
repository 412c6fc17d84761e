package core

import (
	"context"
	"errors"

	"github.com/crmarques/snapdiff/config"
	"github.com/crmarques/snapdiff/debugctx"
	specstore "github.com/crmarques/snapdiff/internal/providers/specstore/file"
	"github.com/crmarques/snapdiff/internal/telemetry"
	"github.com/crmarques/snapdiff/repository"
)

// NewSpecStore opens the file-backed key-config store at path.
func NewSpecStore(path string) repository.SpecStore {
	return specstore.NewStore(path)
}

// NewRuntime loads settings and starts tracing when an OTLP endpoint is
// configured.
func NewRuntime(ctx context.Context, opts BootstrapConfig) (Runtime, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return Runtime{}, err
	}
	return NewRuntimeFromSettings(ctx, settings, opts)
}

func NewRuntimeFromSettings(ctx context.Context, settings config.Settings, opts BootstrapConfig) (Runtime, error) {
	shutdown, err := telemetry.SetupTracing(ctx, telemetry.TracingOptions{
		Endpoint: settings.Telemetry.OTLPEndpoint,
		Insecure: settings.Telemetry.OTLPInsecure,
		TLS: telemetry.TLSOptions{
			CACertFile:     settings.Telemetry.OTLPCACertFile,
			ClientCertFile: settings.Telemetry.OTLPClientCertFile,
			ClientKeyFile:  settings.Telemetry.OTLPClientKeyFile,
		},
		ServiceVersion: opts.ServiceVersion,
	})
	if err != nil {
		return Runtime{}, err
	}

	return Runtime{
		Settings:        settings,
		Metrics:         telemetry.NewMetrics(),
		OpenSpecStore:   NewSpecStore,
		shutdownTracing: shutdown,
	}, nil
}

// Close flushes pending spans and writes the metrics textfile when one is
// configured.
func (r Runtime) Close(ctx context.Context) error {
	var errs []error
	if r.shutdownTracing != nil {
		if err := r.shutdownTracing(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := r.Metrics.WriteTextfile(r.Settings.Telemetry.MetricsTextfile); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		debugctx.Printf(ctx, "runtime close failed errors=%d", len(errs))
	}
	return errors.Join(errs...)
}
