package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.History)
	assert.Equal(t, 20, cfg.StallThreshold)
	assert.Empty(t, cfg.JSONReport)
	assert.Empty(t, cfg.MetricsAddr)
	assert.False(t, cfg.NoColor)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highsmon.yaml")
	content := "history: 100\nstallThreshold: 30\njsonReport: run.jsonl\nnoColor: true\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.History)
	assert.Equal(t, 30, cfg.StallThreshold)
	assert.Equal(t, "run.jsonl", cfg.JSONReport)
	assert.True(t, cfg.NoColor)
	// Unset keys keep their defaults.
	assert.Empty(t, cfg.MetricsAddr)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HIGHSMON_HISTORY", "75")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 75, cfg.History)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highsmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history: 0\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history must be positive")
}

func TestLoadRejectsInvalidStallThreshold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "highsmon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stallThreshold: -5\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stallThreshold must be positive")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
