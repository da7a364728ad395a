package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendJSON, cfg.Database.Backend)
	assert.Equal(t, SessionBackendMemory, cfg.Chat.SessionBackend)
	assert.Equal(t, 24*time.Hour, cfg.Chat.SessionTTL())
	assert.Equal(t, 10*time.Second, cfg.Chat.FetchTimeout())
	assert.Equal(t, "@hourly", cfg.Chat.SweepSchedule)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
database:
  backend: sqlite
  sqlite:
    path: /tmp/campus.db
chat:
  fetch_timeout_seconds: 3
`)
	t.Setenv("CAMPUS_SERVER_PORT", "7070")
	t.Setenv("CAMPUS_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, BackendSQLite, cfg.Database.Backend)
	assert.Equal(t, "/tmp/campus.db", cfg.Database.SQLite.Path)
	assert.Equal(t, 3*time.Second, cfg.Chat.FetchTimeout())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_RejectsInvalidChoices(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, "database:\n  backend: mongo\n"))
		assert.Error(t, err)
	})

	t.Run("mysql without dsn", func(t *testing.T) {
		_, err := Load(writeConfig(t, "database:\n  backend: mysql\n"))
		assert.Error(t, err)
	})

	t.Run("unknown session backend", func(t *testing.T) {
		_, err := Load(writeConfig(t, "chat:\n  session_backend: etcd\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
