package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/warband/internal/ident"
)

func TestLoad(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "data/warband.db", cfg.Database)
		assert.Equal(t, []ident.Scope{ident.ScopeClan, ident.ScopeKingdom}, cfg.Scopes())
		assert.Equal(t, slog.LevelInfo, cfg.Level())
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeTempConfig(t, "database: /tmp/x.db\nlog_level: debug\nclan:\n  culture: steppe\nenabled_scopes: [clan]\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/tmp/x.db", cfg.Database)
		assert.Equal(t, "steppe", cfg.Clan.Culture)
		assert.Equal(t, "steppe", cfg.Kingdom.Culture)
		assert.Equal(t, []ident.Scope{ident.ScopeClan}, cfg.Scopes())
		assert.Equal(t, slog.LevelDebug, cfg.Level())
		assert.Equal(t, 14, cfg.Simulation.Days)
	})

	t.Run("environment wins", func(t *testing.T) {
		t.Setenv("WARBAND_DB", "/env/save.db")
		t.Setenv("WARBAND_LOG_LEVEL", "warn")
		path := writeTempConfig(t, "database: /tmp/x.db\n")
		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "/env/save.db", cfg.Database)
		assert.Equal(t, slog.LevelWarn, cfg.Level())
	})

	invalid := []struct {
		name string
		yaml string
	}{
		{"empty database", "database: \"\"\n"},
		{"bad log level", "log_level: loud\n"},
		{"unknown scope", "enabled_scopes: [empire]\n"},
		{"duplicate scope", "enabled_scopes: [clan, clan]\n"},
		{"no scopes", "enabled_scopes: []\n"},
		{"missing clan culture", "clan:\n  culture: \"\"\n"},
		{"negative days", "simulation:\n  days: -1\n"},
		{"invalid yaml", "database: [\n"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTempConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}

	t.Run("file not found", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}
