package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/roadsplit/internal/config"
)

const (
	testMaxSections = 500
	testPort        = 9090
	testReadTimeout = 5 * time.Second
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "roadsplit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadConfig_EmptyFile_UsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, `
ledger:
  max_sections: 500
  journal: /var/lib/roadsplit/journal.db
  snapshot_codec: lz4
  query_cache: 0
server:
  port: 9090
  read_timeout: 5s
output:
  format: table
  color: never
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.Equal(t, testMaxSections, cfg.Ledger.MaxSections)
	assert.Equal(t, "/var/lib/roadsplit/journal.db", cfg.Ledger.Journal)
	assert.Equal(t, "lz4", cfg.Ledger.SnapshotCodec)
	assert.Zero(t, cfg.Ledger.QueryCache)
	assert.Equal(t, testPort, cfg.Server.Port)
	assert.Equal(t, testReadTimeout, cfg.Server.ReadTimeout)
	assert.Equal(t, config.DefaultWriteTimeout, cfg.Server.WriteTimeout)
	assert.Equal(t, "table", cfg.Output.Format)
	assert.Equal(t, config.ColorNever, cfg.Output.Color)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, config.LogFormatJSON, cfg.Logging.Format)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "output:\n  format: pdf\n"))
	require.ErrorIs(t, err, config.ErrInvalidOutputFormat)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(writeConfig(t, "ledger: [unterminated\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("ROADSPLIT_SERVER_PORT", "9191")
	t.Setenv("ROADSPLIT_LEDGER_SNAPSHOT_CODEC", "gob")

	cfg, err := config.LoadConfig(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "gob", cfg.Ledger.SnapshotCodec)
}
