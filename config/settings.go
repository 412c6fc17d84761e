// Package config loads CLI settings from snapdiff.yaml and SNAPDIFF_*
// environment variables.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/crmarques/snapdiff/faults"
)

const (
	ConfigName       = "snapdiff"
	EnvPrefix        = "SNAPDIFF"
	ConfigFileEnvVar = "SNAPDIFF_CONFIG"
)

const (
	KeySpecsFile       = "specs_file"
	KeyOutput          = "output"
	KeyNoColor         = "no_color"
	KeyMetricsTextfile = "telemetry.metrics_textfile"
	KeyOTLPEndpoint    = "telemetry.otlp_endpoint"
	KeyOTLPInsecure    = "telemetry.otlp_insecure"
	KeyOTLPCACert      = "telemetry.otlp_ca_cert_file"
	KeyOTLPClientCert  = "telemetry.otlp_client_cert_file"
	KeyOTLPClientKey   = "telemetry.otlp_client_key_file"
)

type Settings struct {
	// SpecsFile is the key-config store used when a command gets no
	// explicit spec flags.
	SpecsFile string    `mapstructure:"specs_file" yaml:"specs_file,omitempty"`
	Output    string    `mapstructure:"output" yaml:"output,omitempty"`
	NoColor   bool      `mapstructure:"no_color" yaml:"no_color,omitempty"`
	Telemetry Telemetry `mapstructure:"telemetry" yaml:"telemetry,omitempty"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-" yaml:"-"`
}

type Telemetry struct {
	MetricsTextfile string `mapstructure:"metrics_textfile" yaml:"metrics_textfile,omitempty"`
	OTLPEndpoint    string `mapstructure:"otlp_endpoint" yaml:"otlp_endpoint,omitempty"`
	OTLPInsecure    bool   `mapstructure:"otlp_insecure" yaml:"otlp_insecure,omitempty"`
	// The TLS files apply to the OTLP connection unless OTLPInsecure is set.
	OTLPCACertFile     string `mapstructure:"otlp_ca_cert_file" yaml:"otlp_ca_cert_file,omitempty"`
	OTLPClientCertFile string `mapstructure:"otlp_client_cert_file" yaml:"otlp_client_cert_file,omitempty"`
	OTLPClientKeyFile  string `mapstructure:"otlp_client_key_file" yaml:"otlp_client_key_file,omitempty"`
}

func Defaults() Settings {
	return Settings{Output: "auto"}
}

// Load reads explicitPath when given, otherwise the first snapdiff.yaml found
// in the working directory or the user config directory. A missing file is
// only an error when it was named explicitly.
func Load(explicitPath string) (Settings, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault(KeySpecsFile, defaults.SpecsFile)
	v.SetDefault(KeyOutput, defaults.Output)
	v.SetDefault(KeyNoColor, defaults.NoColor)
	v.SetDefault(KeyMetricsTextfile, "")
	v.SetDefault(KeyOTLPEndpoint, "")
	v.SetDefault(KeyOTLPInsecure, false)
	v.SetDefault(KeyOTLPCACert, "")
	v.SetDefault(KeyOTLPClientCert, "")
	v.SetDefault(KeyOTLPClientKey, "")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if explicitPath == "" {
		explicitPath = strings.TrimSpace(os.Getenv(ConfigFileEnvVar))
	}
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Settings{}, faults.NewPathError(faults.NotFoundError, explicitPath, "config file does not exist", nil)
			}
			return Settings{}, faults.NewPathError(faults.InternalError, explicitPath, "failed to inspect config file", err)
		}
		v.SetConfigFile(explicitPath)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, ConfigName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, faults.NewPathError(faults.ValidationError, v.ConfigFileUsed(), "failed to read config file", err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return Settings{}, faults.NewTypedError(faults.ValidationError, "failed to decode settings", err)
	}
	settings.File = v.ConfigFileUsed()
	settings.Output = strings.ToLower(strings.TrimSpace(settings.Output))
	settings.SpecsFile = strings.TrimSpace(settings.SpecsFile)

	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s Settings) Validate() error {
	switch s.Output {
	case "", "auto", "text", "json", "yaml":
	default:
		return faults.NewTypedError(faults.ValidationError, "invalid output setting "+s.Output+": use auto, text, json, or yaml", nil)
	}
	if s.Telemetry.OTLPEndpoint != "" && strings.Contains(s.Telemetry.OTLPEndpoint, " ") {
		return faults.NewTypedError(faults.ValidationError, "telemetry.otlp_endpoint must not contain spaces", nil)
	}
	if (s.Telemetry.OTLPClientCertFile == "") != (s.Telemetry.OTLPClientKeyFile == "") {
		return faults.NewTypedError(faults.ValidationError, "telemetry requires both otlp_client_cert_file and otlp_client_key_file", nil)
	}
	return nil
}
