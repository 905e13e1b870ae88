package config_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/roadsplit/internal/config"
	"github.com/Sumatoshi-tech/roadsplit/pkg/observability"
)

func TestValidate_DefaultConfig_NoError(t *testing.T) {
	t.Parallel()

	require.NoError(t, config.Default().Validate())
}

func TestValidate_ZeroConfig_NoError(t *testing.T) {
	t.Parallel()

	cfg := config.Config{}
	require.NoError(t, cfg.Validate())
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"max sections", func(c *config.Config) { c.Ledger.MaxSections = 1 }, config.ErrInvalidMaxSections},
		{"query cache", func(c *config.Config) { c.Ledger.QueryCache = -1 }, config.ErrInvalidQueryCache},
		{"codec", func(c *config.Config) { c.Ledger.SnapshotCodec = "zip" }, config.ErrInvalidSnapshotCodec},
		{"port", func(c *config.Config) { c.Server.Port = 70000 }, config.ErrInvalidPort},
		{"timeout", func(c *config.Config) { c.Server.IdleTimeout = -1 }, config.ErrInvalidTimeout},
		{"format", func(c *config.Config) { c.Output.Format = "pdf" }, config.ErrInvalidOutputFormat},
		{"color", func(c *config.Config) { c.Output.Color = "sometimes" }, config.ErrInvalidColor},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, config.ErrInvalidLogFormat},
		{"sample ratio", func(c *config.Config) { c.Telemetry.SampleRatio = 1.5 }, config.ErrInvalidSampleRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			tt.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestOutputConfig_UseColor(t *testing.T) {
	t.Parallel()

	assert.True(t, config.OutputConfig{Color: config.ColorAuto}.UseColor(true))
	assert.False(t, config.OutputConfig{Color: config.ColorAuto}.UseColor(false))
	assert.True(t, config.OutputConfig{Color: "always"}.UseColor(false))
	assert.True(t, config.OutputConfig{Color: "true"}.UseColor(false))
	assert.False(t, config.OutputConfig{Color: "never"}.UseColor(true))
	assert.False(t, config.OutputConfig{Color: "0"}.UseColor(true))
}

func TestServerConfig_Addr(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "127.0.0.1:8080", config.Default().Server.Addr())
}

func TestConfig_Observability(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Logging = config.LoggingConfig{Level: "debug", Format: config.LogFormatJSON}
	cfg.Telemetry.OTLPEndpoint = "collector:4317"
	cfg.Telemetry.OTLPHeaders = "x-team=roads"
	cfg.Telemetry.Environment = "staging"

	obs := cfg.Observability(observability.ModeServe, "1.2.3")

	assert.Equal(t, observability.ModeServe, obs.Mode)
	assert.Equal(t, "1.2.3", obs.ServiceVersion)
	assert.Equal(t, "collector:4317", obs.OTLPEndpoint)
	assert.Equal(t, map[string]string{"x-team": "roads"}, obs.OTLPHeaders)
	assert.Equal(t, "staging", obs.Environment)
	assert.Equal(t, slog.LevelDebug, obs.LogLevel)
	assert.True(t, obs.LogJSON)
	assert.True(t, obs.Prometheus)

	assert.False(t, cfg.Observability(observability.ModeCLI, "").Prometheus)
}
