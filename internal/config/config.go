// Package config loads the engine's startup configuration: the data
// directory, page-cache sizing and the LRU-K replacer's K. Layering is
// a YAML file under NOVASQL_-prefixed environment overrides via Viper,
// with built-in defaults underneath.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the knobs spec.md leaves as "implementation choice":
// buffer pool size, LRU-K's K, the disk scheduler's queue depth, and
// where the database's file and catalog live on disk.
type Config struct {
	DataDir           string `mapstructure:"data_dir"`
	PoolSize          int    `mapstructure:"pool_size"`
	ReplacerK         int    `mapstructure:"replacer_k"`
	SchedulerQueueLen int    `mapstructure:"scheduler_queue_len"`
}

// Default returns the engine's out-of-the-box configuration.
func Default() Config {
	return Config{
		DataDir:           "./novasql-data",
		PoolSize:          64,
		ReplacerK:         2,
		SchedulerQueueLen: 64,
	}
}

// Load reads configuration from path (if it exists), environment
// variables prefixed NOVASQL_, and falls back to Default for anything
// unset. path may be empty, in which case only env vars and defaults
// apply.
func Load(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("novasql")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("pool_size", cfg.PoolSize)
	v.SetDefault("replacer_k", cfg.ReplacerK)
	v.SetDefault("scheduler_queue_len", cfg.SchedulerQueueLen)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}
