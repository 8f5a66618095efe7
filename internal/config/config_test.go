package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, 3000, cfg.Port)
	require.Equal(t, "data/driftworld.db", cfg.JournalPath)
	require.Equal(t, "saves", cfg.SavesDir)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.DeepSeekAPIKey)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "driftworld.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: 8080\nsaves_dir: /tmp/saves\nlog_level: debug\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "/tmp/saves", cfg.SavesDir)
	require.Equal(t, "debug", cfg.LogLevel)
	// Unset keys keep their defaults.
	require.Equal(t, "data/driftworld.db", cfg.JournalPath)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("DEEPSEEK_API_KEY", "sk-test")
	t.Setenv("DRIFTWORLD_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, 9999, cfg.Port)
	require.Equal(t, "sk-test", cfg.DeepSeekAPIKey)
	require.Equal(t, "warn", cfg.LogLevel)

	// A malformed port is ignored.
	t.Setenv("PORT", "not-a-port")
	cfg, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, 3000, cfg.Port)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not an int"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}
