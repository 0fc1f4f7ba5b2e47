// Package config loads the shelfcheck CLI configuration
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config represents the shelfcheck configuration
type Config struct {
	Validation ValidationConfig `mapstructure:"validation"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Output     OutputConfig     `mapstructure:"output"`
}

// ValidationConfig tunes the validation engine
type ValidationConfig struct {
	BlockSize int  `mapstructure:"block_size"`
	Parallel  bool `mapstructure:"parallel"`
}

// WatchConfig tunes the re-validation watcher
type WatchConfig struct {
	DebounceMillis int `mapstructure:"debounce_millis"`
}

// OutputConfig controls terminal rendering
type OutputConfig struct {
	NoColor bool   `mapstructure:"no_color"`
	Format  string `mapstructure:"format"`
}

// Load loads the configuration from shelfcheck.yml or shelfcheck.yaml
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("validation.block_size", 0)
	v.SetDefault("validation.parallel", false)
	v.SetDefault("watch.debounce_millis", 200)
	v.SetDefault("output.no_color", false)
	v.SetDefault("output.format", "text")

	// Set config name and paths
	v.SetConfigName("shelfcheck")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Enable environment variable support
	v.SetEnvPrefix("SHELFCHECK")
	v.AutomaticEnv()

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.Validation.BlockSize < 0 {
		return fmt.Errorf("validation.block_size must be non-negative, got: %d", cfg.Validation.BlockSize)
	}
	if cfg.Watch.DebounceMillis <= 0 {
		return fmt.Errorf("watch.debounce_millis must be positive, got: %d", cfg.Watch.DebounceMillis)
	}
	if cfg.Output.Format != "text" && cfg.Output.Format != "json" {
		return fmt.Errorf("output.format must be 'text' or 'json', got: %s", cfg.Output.Format)
	}
	return nil
}
