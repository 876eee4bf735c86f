package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8501", cfg.Server.Listen)
	assert.Equal(t, "yahoo", cfg.DataSource.HistoryProvider)
	assert.Equal(t, ".SR", cfg.DataSource.MarketSuffix)
	assert.Equal(t, "10y", cfg.DataSource.Lookback)
	assert.Equal(t, 15*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 15*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "0 */15 * * * *", cfg.Schedule.SnapshotRefreshCron)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  listen: ":9000"
data_source:
  history_provider: mock
  timeout: 5s
cache:
  ttl: 1m
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("LISTEN_ADDR", ":9100")
	t.Setenv("CACHE_TTL", "2m")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":9100", cfg.Server.Listen)
	assert.Equal(t, "mock", cfg.DataSource.HistoryProvider)
	assert.Equal(t, 5*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 2*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)

	t.Setenv("CACHE_TTL", "soon")
	_, err = Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		require.NoError(t, err)
		return cfg
	}

	cfg := base()
	cfg.DataSource.HistoryProvider = "bloomberg"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Schedule.SnapshotRefreshCron = "every now and then"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Log.Level = "loud"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.DataSource.Timeout = -time.Second
	assert.Error(t, cfg.Validate())
}
