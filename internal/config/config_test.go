package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "database.db", cfg.Database.Path)
	assert.True(t, cfg.Export.Enabled)
	assert.True(t, cfg.Seed.CreateDefaultAdmin)
	assert.Equal(t, "admin", cfg.Seed.DefaultAdminUsername)
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: "9090"
database:
  path: /tmp/grades.db
export:
  enabled: false
seed:
  create_default_admin: false
logging:
  level: debug
  format: text
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "/tmp/grades.db", cfg.Database.Path)
	assert.False(t, cfg.Export.Enabled)
	assert.False(t, cfg.Seed.CreateDefaultAdmin)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched keys keep their defaults
	assert.Equal(t, "gradebook_session", cfg.Session.CookieName)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  port: \"9090\"\n")
	t.Setenv("SERVER_PORT", "7000")
	t.Setenv("GRADEBOOK_DB_PATH", "/data/prefixed.db")
	t.Setenv("DB_PATH", "/data/plain.db")
	t.Setenv("DB_MAX_OPEN_CONNS", "2")
	t.Setenv("EXPORT_ENABLED", "false")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "/data/prefixed.db", cfg.Database.Path)
	assert.Equal(t, 2, cfg.Database.MaxOpenConns)
	assert.False(t, cfg.Export.Enabled)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "empty secret", body: "session:\n  secret: \"\"\n"},
		{name: "bad ttl", body: "session:\n  ttl: forever\n"},
		{name: "zero pool", body: "database:\n  max_open_conns: 0\n"},
		{name: "seed without password", body: "seed:\n  default_admin_password: \"\"\n"},
		{name: "bad env int", body: "", env: map[string]string{"DB_MAX_OPEN_CONNS": "many"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadConfigEmptyEnvValueKeepsFileValue(t *testing.T) {
	path := writeConfig(t, "session:\n  secret: from-file\n")
	t.Setenv("GRADEBOOK_SESSION_SECRET", "")
	t.Setenv("DB_PATH", "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Session.Secret)
	assert.Equal(t, "database.db", cfg.Database.Path)
}

func TestLoadConfigDefaultSessionSecret(t *testing.T) {
	t.Run("rejected in production", func(t *testing.T) {
		_, err := LoadConfig(writeConfig(t, "server:\n  mode: production\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "session secret must be changed")
	})

	t.Run("rejected in production via env mode", func(t *testing.T) {
		t.Setenv("SERVER_MODE", "Production")
		_, err := LoadConfig(writeConfig(t, ""))
		assert.Error(t, err)
	})

	t.Run("allowed in production with a custom secret", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, "server:\n  mode: production\nsession:\n  secret: 6f1c0a9e4b7d\n"))
		require.NoError(t, err)
		assert.True(t, cfg.IsProduction())
		assert.False(t, cfg.UsesDefaultSessionSecret())
	})

	t.Run("flagged but allowed in development", func(t *testing.T) {
		cfg, err := LoadConfig(writeConfig(t, ""))
		require.NoError(t, err)
		assert.False(t, cfg.IsProduction())
		assert.True(t, cfg.UsesDefaultSessionSecret())
	})
}
