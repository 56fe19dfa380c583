package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "", cfg.Database.URL)
	assert.Equal(t, 8*time.Second, cfg.Geo.Timeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Chat.ReplyDelay)
	assert.Equal(t, time.Second, cfg.Chat.WidgetDelay)
	assert.Equal(t, 200*time.Millisecond, cfg.Offline.TickInterval)
	assert.Equal(t, 10, cfg.Offline.Step)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("GLOBEGURU_SERVER_PORT", "9090")
	t.Setenv("GLOBEGURU_CHAT_REPLY_DELAY", "250ms")
	t.Setenv("GLOBEGURU_OFFLINE_STEP", "25")
	t.Setenv("DATABASE_URL", "postgres://localhost/globeguru?sslmode=disable")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 250*time.Millisecond, cfg.Chat.ReplyDelay)
	assert.Equal(t, 25, cfg.Offline.Step)
	assert.Equal(t, "postgres://localhost/globeguru?sslmode=disable", cfg.Database.URL)
}

func TestPlainPortVariable(t *testing.T) {
	t.Setenv("PORT", "8081")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "globeguru.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 4000
log:
  level: debug
  format: console
geo:
  timeout: 2s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 2*time.Second, cfg.Geo.Timeout)
	assert.Equal(t, DefaultSessionTTL, cfg.Session.TTL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := Load("")
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"step", func(c *Config) { c.Offline.Step = 101 }, "offline.step"},
		{"sessions", func(c *Config) { c.Session.Max = 0 }, "session.max"},
		{"geo timeout", func(c *Config) { c.Geo.Timeout = 0 }, "geo.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
