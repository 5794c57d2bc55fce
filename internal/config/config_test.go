package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Adapter)
	assert.Equal(t, "loom.db", cfg.Database.Path)
	assert.Equal(t, "seeds", cfg.SeedsDir)
	assert.Equal(t, "loom_state.db", cfg.StatePath)
	assert.False(t, cfg.Verbose)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loom.yaml")
	content := `
adapter: duckdb
database:
  path: warehouse.db
seeds_dir: data/seeds
verbose: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "duckdb", cfg.Adapter)
	assert.Equal(t, "warehouse.db", cfg.Database.Path)
	assert.Equal(t, "data/seeds", cfg.SeedsDir)
	assert.True(t, cfg.Verbose)
	// Untouched keys keep their defaults.
	assert.Equal(t, "loom_state.db", cfg.StatePath)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "loom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adapter: duckdb\n"), 0o644))

	t.Setenv("LOOM_ADAPTER", "postgres")
	t.Setenv("LOOM_DATABASE__HOST", "db.internal")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Adapter)
	assert.Equal(t, "db.internal", cfg.Database.Host)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	t.Setenv("LOOM_ADAPTER", "postgres")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("adapter", "", "")
	flags.String("seeds_dir", "", "")
	require.NoError(t, flags.Parse([]string{"--adapter=duckdb"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "duckdb", cfg.Adapter, "set flag wins")
	assert.Equal(t, "seeds", cfg.SeedsDir, "unset flag falls back to default")
}

func TestAdapterConfig(t *testing.T) {
	cfg := &Config{
		Adapter: "postgres",
		Database: Database{
			Host:     "db.internal",
			Port:     5433,
			Name:     "analytics",
			Username: "loom",
			Password: "secret",
		},
	}
	ac := cfg.AdapterConfig()
	assert.Equal(t, "postgres", ac.Type)
	assert.Equal(t, "db.internal", ac.Host)
	assert.Equal(t, 5433, ac.Port)
	assert.Equal(t, "analytics", ac.Database)
	assert.Equal(t, "loom", ac.Username)
	assert.Equal(t, "secret", ac.Password)
}
