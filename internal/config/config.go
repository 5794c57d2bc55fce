// Package config loads pipeline runtime configuration, merging defaults, an
// optional loom.yaml file, LOOM_-prefixed environment variables, and CLI
// flags, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/loomworks/loom/internal/adapter"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Adapter names the database adapter (sqlite, duckdb, postgres).
	Adapter string `koanf:"adapter"`

	// Database holds the connection settings for the adapter.
	Database Database `koanf:"database"`

	// SeedsDir is the directory of CSV seed files for source tables.
	SeedsDir string `koanf:"seeds_dir"`

	// StatePath is the run-history database path; empty disables history.
	StatePath string `koanf:"state_path"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}

// Database mirrors adapter.Config for the settings a user provides.
type Database struct {
	Path     string `koanf:"path"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Name     string `koanf:"name"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
}

// AdapterConfig converts the configuration into an adapter.Config.
func (c *Config) AdapterConfig() adapter.Config {
	return adapter.Config{
		Type:     c.Adapter,
		Path:     c.Database.Path,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Database: c.Database.Name,
		Username: c.Database.Username,
		Password: c.Database.Password,
	}
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"adapter":       "sqlite",
		"database.path": "loom.db",
		"seeds_dir":     "seeds",
		"state_path":    "loom_state.db",
		"verbose":       false,
	}
}

// findConfigFile picks the config file: explicit path first, then loom.yaml
// or loom.yml in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{"loom.yaml", "loom.yml"} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load resolves the configuration. flags may be nil; when given, set flags
// override file and environment values.
func Load(explicitFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(explicitFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	} else if explicitFile != "" {
		return nil, fmt.Errorf("config file %s not found", explicitFile)
	}

	// Double underscore nests: LOOM_DATABASE__PATH -> database.path,
	// LOOM_SEEDS_DIR -> seeds_dir.
	err := k.Load(env.Provider("LOOM_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "LOOM_")), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
