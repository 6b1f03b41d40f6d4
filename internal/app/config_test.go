package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file::memory:")
	t.Setenv("ADMIN_EMAILS", "owner@kiwiz.app,help@kiwiz.app")
	t.Setenv("CORS_ORIGINS", "https://kiwiz.app")
	t.Setenv("FREE_DAILY_GENERATIONS", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, []string{"owner@kiwiz.app", "help@kiwiz.app"}, cfg.Auth.AdminEmails)
	assert.Equal(t, []string{"https://kiwiz.app"}, cfg.CORS.Origins)
	assert.Equal(t, 3, cfg.Usage.FreeDailyLimit)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 15*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "dall-e-3", cfg.Images.Model)
	assert.Equal(t, "kiwiz:", cfg.Redis.Prefix)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9090"
database:
  driver: sqlite
  dsn: kiwiz-test.db
usage:
  free_daily_limit: 7
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "kiwiz-test.db", cfg.Database.DSN)
	assert.Equal(t, 7, cfg.Usage.FreeDailyLimit)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Database.Driver = "mysql"
	cfg.Usage.FreeDailyLimit = 0
	cfg.Storage.Bucket = "pages"
	cfg.Storage.Mode = "gcs_emulator"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database driver")
	assert.Contains(t, err.Error(), "free daily limit")
	assert.Contains(t, err.Error(), "emulator host")
}
