// Package config loads the warband configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talgya/warband/internal/ident"
)

// Config is the full runtime configuration.
type Config struct {
	Database      string         `yaml:"database"`
	Catalog       string         `yaml:"catalog"`
	LogLevel      string         `yaml:"log_level"`
	Clan          FactionConfig  `yaml:"clan"`
	Kingdom       FactionConfig  `yaml:"kingdom"`
	EnabledScopes []string       `yaml:"enabled_scopes"`
	Simulation    SimulateConfig `yaml:"simulation"`
}

// FactionConfig selects the culture a player faction's trees derive from.
type FactionConfig struct {
	Culture string `yaml:"culture"`
}

// SimulateConfig drives the simulate command.
type SimulateConfig struct {
	Days        int      `yaml:"days"`
	Seed        uint64   `yaml:"seed"`
	NPCCultures []string `yaml:"npc_cultures"`
}

// Default returns a working configuration for the embedded content.
func Default() *Config {
	return &Config{
		Database:      "data/warband.db",
		LogLevel:      "info",
		Clan:          FactionConfig{Culture: "highland"},
		Kingdom:       FactionConfig{Culture: "steppe"},
		EnabledScopes: []string{"clan", "kingdom"},
		Simulation: SimulateConfig{
			Days:        14,
			Seed:        42,
			NPCCultures: []string{"highland", "steppe"},
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path loads the defaults only.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	cfg.Database = envOrDefault("WARBAND_DB", cfg.Database)
	cfg.Catalog = envOrDefault("WARBAND_CATALOG", cfg.Catalog)
	cfg.LogLevel = envOrDefault("WARBAND_LOG_LEVEL", cfg.LogLevel)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Database) == "" {
		return fmt.Errorf("database path is required")
	}
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	if len(cfg.EnabledScopes) == 0 {
		return fmt.Errorf("at least one enabled scope is required")
	}
	seen := make(map[string]struct{})
	for _, s := range cfg.EnabledScopes {
		if _, ok := ident.ParseScope(s); !ok {
			return fmt.Errorf("unknown scope: %s", s)
		}
		if _, dup := seen[s]; dup {
			return fmt.Errorf("duplicate scope: %s", s)
		}
		seen[s] = struct{}{}
	}
	if strings.TrimSpace(cfg.Clan.Culture) == "" {
		return fmt.Errorf("clan culture is required")
	}
	if strings.TrimSpace(cfg.Kingdom.Culture) == "" {
		return fmt.Errorf("kingdom culture is required")
	}
	if cfg.Simulation.Days < 0 {
		return fmt.Errorf("simulation days must not be negative: %d", cfg.Simulation.Days)
	}
	return nil
}

// Scopes returns the enabled scopes in configuration order.
func (c *Config) Scopes() []ident.Scope {
	out := make([]ident.Scope, 0, len(c.EnabledScopes))
	for _, s := range c.EnabledScopes {
		if scope, ok := ident.ParseScope(s); ok {
			out = append(out, scope)
		}
	}
	return out
}

// Level returns the configured log level.
func (c *Config) Level() slog.Level {
	lvl, _ := ParseLevel(c.LogLevel)
	return lvl
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level: %s", s)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
