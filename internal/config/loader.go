// Package config provides configuration management for the veloform
// rating and prediction service.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment
// variables. Placeholders of the form ${VAR_NAME} in the YAML file are
// expanded from the environment before parsing.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("VELOFORM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyDefaults(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// applyDefaults sets values for fields most deployments never override.
func applyDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "veloform")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 2)

	v.SetDefault("feed.timeout_seconds", 30)
	v.SetDefault("feed.max_retries", 5)
	v.SetDefault("feed.rate_limit", 5.0)

	v.SetDefault("rating.dynamics_sweep_batch_size", 500)
	v.SetDefault("rating.dynamics_inactivity_days_min", 30)

	v.SetDefault("prediction.monte_carlo_trials", 1000)
	v.SetDefault("prediction.form_cache_ttl_seconds", 900)
	v.SetDefault("prediction.form_cache_max_entries", 10000)
	v.SetDefault("prediction.snapshot_version_limit", 0)

	v.SetDefault("scheduler.feed_poll_cron", "0 * * * *")
	v.SetDefault("scheduler.dynamics_sweep_cron", "30 3 * * *")
	v.SetDefault("scheduler.graceful_timeout_seconds", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.address", ":9090")
}
