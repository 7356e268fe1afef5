// Package config provides configuration management for the veloform
// rating and prediction service.
package config

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Feed       FeedConfig       `mapstructure:"feed" validate:"required"`
	Rating     RatingConfig     `mapstructure:"rating" validate:"required"`
	Prediction PredictionConfig `mapstructure:"prediction" validate:"required"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// FeedConfig represents the race-results feed client configuration
type FeedConfig struct {
	BaseURL        string  `mapstructure:"base_url" validate:"required,url"`
	APIKey         string  `mapstructure:"api_key"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
}

// RatingConfig represents rating engine configuration
type RatingConfig struct {
	// SamplerSeed seeds the large-field sub-group sampler. Zero means
	// time-seeded, the normal production setting.
	SamplerSeed               int64 `mapstructure:"sampler_seed"`
	DynamicsSweepBatchSize    int   `mapstructure:"dynamics_sweep_batch_size" validate:"required,gt=0"`
	DynamicsInactivityDaysMin int   `mapstructure:"dynamics_inactivity_days_min" validate:"required,gt=0"`
}

// PredictionConfig represents prediction engine configuration
type PredictionConfig struct {
	MonteCarloTrials     int `mapstructure:"monte_carlo_trials" validate:"required,gt=0"`
	FormCacheTTLSeconds  int `mapstructure:"form_cache_ttl_seconds" validate:"required,gt=0"`
	FormCacheMaxEntries  int `mapstructure:"form_cache_max_entries" validate:"required,gt=0"`
	SnapshotVersionLimit int `mapstructure:"snapshot_version_limit" validate:"gte=0"`
}

// SchedulerConfig represents cron job configuration
type SchedulerConfig struct {
	FeedPollCron      string `mapstructure:"feed_poll_cron" validate:"required"`
	DynamicsSweepCron string `mapstructure:"dynamics_sweep_cron" validate:"required"`
	GracefulTimeoutS  int    `mapstructure:"graceful_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address" validate:"required"`
}
