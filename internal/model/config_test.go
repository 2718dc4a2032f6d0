package model

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultAppConfig(), cfg)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  addr: ":8080"
  read_timeout: 5s
session:
  redis_host: localhost
auth:
  bcrypt_cost: 0
checklist:
  data_file: /tmp/lists.json
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	t.Setenv("CALLSHEET_DATABASE_PATH", "/var/lib/callsheet.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "localhost", cfg.Session.RedisHost)
	assert.Equal(t, 6379, cfg.Session.RedisPort)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.Equal(t, "/tmp/lists.json", cfg.Checklist.DataFile)
	assert.Equal(t, "/var/lib/callsheet.db", cfg.Database.Path)
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unclosed"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultAppConfig()
	cfg.Server.Addr = ":9000"
	cfg.Log.Format = "json"
	require.NoError(t, SaveConfig(path, cfg))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", got.Server.Addr)
	assert.Equal(t, "json", got.Log.Format)
}
