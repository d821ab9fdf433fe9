// Package config loads engine configuration from a yaml file with
// environment overrides. An optional .env file is applied first via
// godotenv, so local development and deployment share one mechanism.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the full engine configuration.
type Config struct {
	// DBPath is the SQLite database file location.
	DBPath string `yaml:"db_path"`

	Graph GraphConfig `yaml:"graph"`
}

// GraphConfig bounds the graph algorithms. The depth bounds are hard caps,
// not hints: cycles with longer back-paths go undetected and deeper
// provenance is truncated.
type GraphConfig struct {
	CycleCheckDepth   int `yaml:"cycle_check_depth"`
	TraversalDepth    int `yaml:"traversal_depth"`
	MaxTraversalDepth int `yaml:"max_traversal_depth"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		DBPath: "lineage.db",
		Graph: GraphConfig{
			CycleCheckDepth:   20,
			TraversalDepth:    3,
			MaxTraversalDepth: 20,
		},
	}
}

// Load reads a yaml config file, layers it over the defaults, and applies
// LINEAGE_* environment overrides. A missing file is not an error - the
// defaults plus environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv loads an optional .env file, then builds the configuration from
// defaults plus environment only.
func LoadEnv() (Config, error) {
	// godotenv never overwrites variables already set in the environment.
	_ = godotenv.Load()

	cfg := Default()
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("LINEAGE_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if err := envInt("LINEAGE_CYCLE_CHECK_DEPTH", &cfg.Graph.CycleCheckDepth); err != nil {
		return err
	}
	if err := envInt("LINEAGE_TRAVERSAL_DEPTH", &cfg.Graph.TraversalDepth); err != nil {
		return err
	}
	if err := envInt("LINEAGE_MAX_TRAVERSAL_DEPTH", &cfg.Graph.MaxTraversalDepth); err != nil {
		return err
	}
	return nil
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	*dst = n
	return nil
}
