package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"campaign-flow/pkg/flowgraph"
)

// Config holds the flow service configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    string         `toml:"store"` // "postgres" or "memory"
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
	Editor   EditorConfig   `toml:"editor"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string   `toml:"addr"`
	AllowedOrigins  []string `toml:"allowed_origins"`
	ShutdownSeconds int      `toml:"shutdown_seconds"`
}

// ShutdownTimeout is how long in-flight requests get on shutdown.
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownSeconds) * time.Second
}

// DatabaseConfig controls the PostgreSQL pool.
type DatabaseConfig struct {
	URL             string `toml:"url"`
	MaxConns        int    `toml:"max_conns"`
	MinConns        int    `toml:"min_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime_minutes"`
	Seed            bool   `toml:"seed"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // json or text
}

// EditorConfig holds workspace settings the editor needs.
type EditorConfig struct {
	DefaultSender string                 `toml:"default_sender"`
	Team          []flowgraph.TeamMember `toml:"team"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"http://localhost:3003"},
			ShutdownSeconds: 5,
		},
		Store:    "postgres",
		Database: DatabaseConfig{MaxConns: 10, ConnMaxLifetime: 30, Seed: true},
		Log:      LogConfig{Level: "debug", Format: "json"},
		Editor:   EditorConfig{DefaultSender: "hello@example.com"},
	}
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides and validates the result. An empty path skips the
// file.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read decodes the TOML file at path over the defaults without environment
// overrides or validation.
func Read(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("DATABASE_URL"); ok {
		c.Database.URL = v
	}
	if v, ok := lookup("FLOW_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := lookup("FLOW_LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("FLOW_STORE"); ok {
		c.Store = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Store {
	case "memory":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("config: database.url (or DATABASE_URL) is required for the postgres store")
		}
		if c.Database.MaxConns < 1 {
			return fmt.Errorf("config: database.max_conns must be at least 1, got %d", c.Database.MaxConns)
		}
	default:
		return fmt.Errorf("config: unknown store %q", c.Store)
	}
	if c.Server.Addr == "" {
		return errors.New("config: server.addr is required")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	seen := make(map[string]bool, len(c.Editor.Team))
	for _, m := range c.Editor.Team {
		if m.ID == "" || seen[m.ID] {
			return fmt.Errorf("config: editor.team has a missing or duplicate id %q", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}
