package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/roadsplit/internal/render"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
	"github.com/Sumatoshi-tech/roadsplit/pkg/persist"
)

// Color modes for output.color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Log formats for logging.format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

const (
	minSections = 2
	maxPort     = 65535
)

// Config is the top-level configuration struct for roadsplit.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Ledger    LedgerConfig    `mapstructure:"ledger"`
	Server    ServerConfig    `mapstructure:"server"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// LedgerConfig holds ledger sizing and persistence settings.
type LedgerConfig struct {
	MaxSections   int    `mapstructure:"max_sections"`
	Journal       string `mapstructure:"journal"`
	SnapshotDir   string `mapstructure:"snapshot_dir"`
	SnapshotCodec string `mapstructure:"snapshot_codec"`
	QueryCache    int64  `mapstructure:"query_cache"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OutputConfig holds query result rendering settings.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  string `mapstructure:"color"`
}

// UseColor resolves output.color against whether the output is a terminal.
func (o OutputConfig) UseColor(isTerminal bool) bool {
	switch strings.ToLower(o.Color) {
	case ColorAlways, "true", "1":
		return true
	case ColorNever, "false", "0":
		return false
	default:
		return isTerminal
	}
}

// LoggingConfig holds slog settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Environment  string  `mapstructure:"environment"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidMaxSections indicates ledger.max_sections below two.
	ErrInvalidMaxSections = errors.New("ledger.max_sections must be at least 2")
	// ErrInvalidSnapshotCodec indicates an unknown ledger.snapshot_codec.
	ErrInvalidSnapshotCodec = errors.New("ledger.snapshot_codec is not a known codec")
	// ErrInvalidQueryCache indicates a negative ledger.query_cache.
	ErrInvalidQueryCache = errors.New("ledger.query_cache must be non-negative")
	// ErrInvalidPort indicates server.port outside [0, 65535].
	ErrInvalidPort = errors.New("server.port must be between 0 and 65535")
	// ErrInvalidTimeout indicates a negative server timeout.
	ErrInvalidTimeout = errors.New("server timeouts must be non-negative")
	// ErrInvalidOutputFormat indicates an unknown output.format.
	ErrInvalidOutputFormat = errors.New("output.format is not a known format")
	// ErrInvalidColor indicates an unknown output.color.
	ErrInvalidColor = errors.New("output.color must be auto, always or never")
	// ErrInvalidLogFormat indicates an unknown logging.format.
	ErrInvalidLogFormat = errors.New("logging.format must be text or json")
	// ErrInvalidSampleRatio indicates telemetry.sample_ratio outside [0, 1].
	ErrInvalidSampleRatio = errors.New("telemetry.sample_ratio must be between 0 and 1")
)

// Validate checks Config invariants and returns the first error found.
// Zero values are accepted where the loader would supply a default.
func (c *Config) Validate() error {
	if c.Ledger.MaxSections != 0 && c.Ledger.MaxSections < minSections {
		return ErrInvalidMaxSections
	}

	if c.Ledger.SnapshotCodec != "" && !slices.Contains(persist.CodecNames(), c.Ledger.SnapshotCodec) {
		return fmt.Errorf("%w: %q", ErrInvalidSnapshotCodec, c.Ledger.SnapshotCodec)
	}

	if c.Ledger.QueryCache < 0 {
		return ErrInvalidQueryCache
	}

	if c.Server.Port < 0 || c.Server.Port > maxPort {
		return ErrInvalidPort
	}

	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.IdleTimeout < 0 {
		return ErrInvalidTimeout
	}

	if c.Output.Format != "" && !slices.Contains(render.Formats(), c.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.Format)
	}

	switch strings.ToLower(c.Output.Color) {
	case "", ColorAuto, ColorAlways, ColorNever, "true", "false", "1", "0":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidColor, c.Output.Color)
	}

	switch c.Logging.Format {
	case "", LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Logging.Format)
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return ErrInvalidSampleRatio
	}

	return nil
}

// Observability maps the logging and telemetry sections onto an
// observability config for the given mode.
func (c *Config) Observability(mode observability.AppMode, version string) observability.Config {
	obs := observability.DefaultConfig()

	obs.Mode = mode
	obs.ServiceVersion = version
	obs.Environment = c.Telemetry.Environment
	obs.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	obs.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	obs.OTLPInsecure = c.Telemetry.OTLPInsecure
	obs.SampleRatio = c.Telemetry.SampleRatio
	obs.LogLevel = observability.ParseLevel(c.Logging.Level)
	obs.LogJSON = c.Logging.Format == LogFormatJSON
	obs.Prometheus = mode == observability.ModeServe

	return obs
}
