// Package config handles configuration loading for the pipeline CLI.
// It supports XDG config paths, project-level overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all pipeline settings.
type Config struct {
	// BaseDir is the root of the pipeline directory layout
	// (queue/, completed/, failed/, artifacts/).
	BaseDir string `mapstructure:"base_dir"`
	// Store selects and configures the result store backend.
	Store StoreConfig `mapstructure:"store"`
	// Tracker configures the work-item coordination side.
	Tracker TrackerConfig `mapstructure:"tracker"`
	// Debug enables the file-based debug log under <base_dir>/logs.
	Debug bool `mapstructure:"debug"`
}

// StoreConfig selects the result store backend.
type StoreConfig struct {
	// Backend is "file" (JSON files per result set) or "sqlite".
	Backend string `mapstructure:"backend"`
	// Path is the SQLite database path. Defaults to results.db under
	// the base directory.
	Path string `mapstructure:"path"`
}

// TrackerConfig holds work-item coordination settings. Credentials come
// from the environment, never from config files.
type TrackerConfig struct {
	// Claimant is the identity used when claiming work items.
	Claimant string `mapstructure:"claimant"`
	// ExperimentLabel marks tracker items that are runnable
	// experiments.
	ExperimentLabel string `mapstructure:"experiment_label"`
}

// Load loads configuration with the following precedence (highest to
// lowest): environment variables (ORP_*), project config (.orp.yaml in
// the current directory or a parent), user config
// (~/.config/orp/config.yaml), built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	if projectConfig := findProjectConfig(); projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("ORP")
	v.AutomaticEnv()
	v.BindEnv("base_dir", "ORP_BASE_DIR")
	v.BindEnv("tracker.claimant", "ORP_CLAIMANT", "GITHUB_ACTOR")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	applyDerived(cfg)
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	applyDerived(cfg)
	return cfg, nil
}

// Default returns a Config with built-in defaults.
func Default() *Config {
	cfg := &Config{
		BaseDir: "experiments",
		Store:   StoreConfig{Backend: "file"},
		Tracker: TrackerConfig{ExperimentLabel: "experiment"},
	}
	applyDerived(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_dir", "experiments")
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.path", "")
	v.SetDefault("tracker.claimant", "")
	v.SetDefault("tracker.experiment_label", "experiment")
	v.SetDefault("debug", false)
}

// applyDerived fills settings whose defaults depend on other settings.
func applyDerived(cfg *Config) {
	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(cfg.BaseDir, "results.db")
	}
}

// userConfigDir returns the XDG config directory for orp.
func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "orp")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "orp")
	}
	return filepath.Join(home, ".config", "orp")
}

// findProjectConfig searches for .orp.yaml in the current directory and
// its parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".orp.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}
	return ""
}
