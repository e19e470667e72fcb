// Package config loads and validates the operator configuration. The file is
// strict YAML: unrecognized keys are rejected at load time rather than being
// silently passed through to the control plane.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the full operator configuration.
type Config struct {
	// Region is the AWS region. Required.
	Region string `yaml:"region" validate:"required"`

	// DomainID is the Studio domain all profile operations are scoped to.
	// Required for workspace commands.
	DomainID string `yaml:"domain_id" validate:"required"`

	// Poll bounds the convergence poller.
	Poll PollConfig `yaml:"poll"`

	// Audit configures the SQLite audit log.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry configures logging, metrics and tracing.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// Duration decodes from Go duration strings ("5s", "2m") or integer
// nanoseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration: %s", value.Value)
	}
	*d = Duration(n)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// PollConfig bounds the convergence poller.
type PollConfig struct {
	// Interval is the wait between status re-queries.
	Interval Duration `yaml:"interval" validate:"min=0"`

	// MaxTicks is the maximum number of status rounds before a teardown is
	// reported blocked.
	MaxTicks int `yaml:"max_ticks" validate:"min=0"`

	// PageSize bounds one list request against the control plane.
	PageSize int32 `yaml:"page_size" validate:"min=0,max=100"`
}

// AuditConfig configures the SQLite audit log.
type AuditConfig struct {
	// Enabled turns run/event recording on.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database path. Required when enabled.
	Path string `yaml:"path" validate:"required_with=Enabled"`
}

// TelemetryConfig configures logging, metrics and tracing.
type TelemetryConfig struct {
	// LogLevel sets the minimum log level.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=trace debug info warn error"`

	// LogFormat selects console or json output.
	LogFormat string `yaml:"log_format" validate:"omitempty,oneof=console json"`

	// MetricsEnabled exposes a Prometheus endpoint.
	MetricsEnabled bool `yaml:"metrics_enabled"`

	// MetricsAddr is the metrics listen address.
	MetricsAddr string `yaml:"metrics_addr"`

	// TracingEnabled turns OpenTelemetry tracing on.
	TracingEnabled bool `yaml:"tracing_enabled"`

	// TracingExporter selects the span exporter (otlp, stdout, none).
	TracingExporter string `yaml:"tracing_exporter" validate:"omitempty,oneof=otlp stdout none"`

	// TracingEndpoint is the OTLP collector endpoint.
	TracingEndpoint string `yaml:"tracing_endpoint"`
}

// Default returns a configuration with every optional field at its default.
func Default() Config {
	return Config{
		Poll: PollConfig{
			Interval: Duration(5 * time.Second),
			MaxTicks: 60,
			PageSize: 100,
		},
		Audit: AuditConfig{
			Path: "baram.db",
		},
		Telemetry: TelemetryConfig{
			LogLevel:        "info",
			LogFormat:       "console",
			MetricsAddr:     ":9090",
			TracingExporter: "none",
		},
	}
}

// Load reads, decodes and validates a configuration file. Defaults are
// applied before validation, so a file only needs the required identifiers.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := Default()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration against its declared constraints.
// Configuration errors are the only errors fatal to a whole invocation, and
// they are detected here, before any remote call.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
