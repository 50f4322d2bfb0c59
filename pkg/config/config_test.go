package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-flow/pkg/flowgraph"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flow.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"DATABASE_URL", "FLOW_ADDR", "FLOW_LOG_LEVEL", "FLOW_STORE"} {
		if v, ok := os.LookupEnv(k); ok {
			require.NoError(t, os.Unsetenv(k))
			t.Cleanup(func() { os.Setenv(k, v) })
		}
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3003"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout())
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Error(t, cfg.Validate(), "postgres store needs a url")
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
store = "postgres"

[server]
addr = ":9090"
allowed_origins = ["https://app.example.com"]

[database]
url = "postgres://file"
max_conns = 4

[log]
level = "info"
format = "text"

[editor]
default_sender = "team@clinic.example"

[[editor.team]]
id = "u1"
display_name = "Dana"

[[editor.team]]
id = "u2"
display_name = "Sam"
`)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("FLOW_LOG_LEVEL", "warn")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://env", cfg.Database.URL, "env wins over file")
	assert.Equal(t, 4, cfg.Database.MaxConns)
	assert.True(t, cfg.Database.Seed, "unset keys keep defaults")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "team@clinic.example", cfg.Editor.DefaultSender)
	assert.Equal(t, []flowgraph.TeamMember{{ID: "u1", DisplayName: "Dana"}, {ID: "u2", DisplayName: "Sam"}}, cfg.Editor.Team)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoad_MemoryStoreWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLOW_STORE", "memory")
	t.Setenv("FLOW_ADDR", ":7000")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	t.Setenv("FLOW_STORE", "memory")

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "read config")

	_, err = Load(writeConfig(t, `store = [`))
	assert.ErrorContains(t, err, "parse config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown store", func(c *Config) { c.Store = "sqlite" }, `unknown store "sqlite"`},
		{"no max conns", func(c *Config) { c.Database.MaxConns = 0 }, "max_conns"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, `unknown log format "xml"`},
		{"duplicate member", func(c *Config) {
			c.Editor.Team = []flowgraph.TeamMember{{ID: "u1"}, {ID: "u1"}}
		}, "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Database.URL = "postgres://localhost/flows"
			tt.mutate(cfg)

			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	cfg := Default()
	cfg.Database.URL = "postgres://localhost/flows"
	assert.NoError(t, cfg.Validate())
}
