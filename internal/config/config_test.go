package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/novasql/core/internal/config"
)

func TestDefaultIsUsedWhenPathEmpty(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "novasql.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool_size: 128\nreplacer_k: 4\n"), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, 128, cfg.PoolSize)
	require.Equal(t, 4, cfg.ReplacerK)
	require.Equal(t, config.Default().DataDir, cfg.DataDir)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestEnvOverridesDefault(t *testing.T) {
	t.Setenv("NOVASQL_POOL_SIZE", "256")
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, 256, cfg.PoolSize)
}
