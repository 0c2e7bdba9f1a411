package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_addr: 127.0.0.1
  http_port: 8081
  static_dir: ./public
storage:
  backend: redis
  redis:
    url: redis://cache:6379
    pool_size: 20
sessions:
  ttl: 48h
  sweep_interval: 30m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.ListenAddr)
	assert.Equal(t, 8081, cfg.Server.HTTPPort)
	assert.Equal(t, "./public", cfg.Server.StaticDir)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "redis://cache:6379", cfg.Storage.Redis.URL)
	assert.Equal(t, 20, cfg.Storage.Redis.PoolSize)
	assert.Equal(t, 48*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.SweepInterval)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `server: {}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.ListenAddr)
	assert.Equal(t, 3000, cfg.Server.HTTPPort)
	assert.Empty(t, cfg.Server.StaticDir)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "user_data", cfg.Storage.File.Dir)
	assert.Equal(t, 24*time.Hour, cfg.Sessions.TTL)
	assert.Equal(t, time.Hour, cfg.Sessions.SweepInterval)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: cassandra
`)

	_, err := Load(path)
	assert.ErrorContains(t, err, "cassandra")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, 3000, cfg.Server.HTTPPort)
}
