package config

import (
	"fmt"
	"slices"
	"time"

	"github.com/kbukum/recoverykit/database"
	"github.com/kbukum/recoverykit/logger"
	"github.com/kbukum/recoverykit/observability"
	"github.com/kbukum/recoverykit/recovery"
	"github.com/kbukum/recoverykit/redis"
	"github.com/kbukum/recoverykit/server"
	"github.com/kbukum/recoverykit/version"
)

var environments = []string{"development", "staging", "production"}

// Config is the complete workout service configuration.
type Config struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Environment string `yaml:"environment" mapstructure:"environment"`
	Version     string `yaml:"version" mapstructure:"version"`
	Debug       bool   `yaml:"debug" mapstructure:"debug"`

	Logging   logger.Config   `yaml:"logging" mapstructure:"logging"`
	Recovery  RecoveryConfig  `yaml:"recovery" mapstructure:"recovery"`
	Telemetry TelemetryConfig `yaml:"telemetry" mapstructure:"telemetry"`
	Database  database.Config `yaml:"database" mapstructure:"database"`
	Redis     redis.Config    `yaml:"redis" mapstructure:"redis"`
	Server    server.Config   `yaml:"server" mapstructure:"server"`
}

// RecoveryConfig tunes the recovery manager.
type RecoveryConfig struct {
	// MaxConcurrent caps simultaneous recoveries. Zero means the default.
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
	// Profiles overrides retry profiles by name (default, network, cache,
	// database). Unset fields keep their defaults.
	Profiles map[string]recovery.ProfileOverride `yaml:"profiles" mapstructure:"profiles"`
}

// TelemetryConfig configures OTLP export of recovery traces and metrics.
type TelemetryConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint       string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate     float64       `yaml:"sample_rate" mapstructure:"sample_rate"`
	MetricInterval time.Duration `yaml:"metric_interval" mapstructure:"metric_interval"`
}

// ApplyDefaults fills unset fields, including those of every section.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Version == "" {
		c.Version = version.Short()
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()

	if c.Recovery.MaxConcurrent <= 0 {
		c.Recovery.MaxConcurrent = recovery.DefaultMaxConcurrent
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Telemetry.SampleRate == 0 {
		c.Telemetry.SampleRate = 1.0
	}
	if c.Telemetry.MetricInterval <= 0 {
		c.Telemetry.MetricInterval = 30 * time.Second
	}

	c.Database.ApplyDefaults()
	c.Redis.ApplyDefaults()
	c.Server.ApplyDefaults()
}

// Validate checks the whole configuration and names the failing section.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if c.Recovery.MaxConcurrent < 1 {
		return fmt.Errorf("config.recovery.max_concurrent must be >= 1 (got: %d)", c.Recovery.MaxConcurrent)
	}
	for name, p := range c.Recovery.Profiles {
		if _, ok := recovery.DefaultProfiles()[name]; !ok {
			return fmt.Errorf("config.recovery.profiles: unknown profile %q", name)
		}
		if p.MaxRetries < 0 || p.BaseDelay < 0 || p.MaxDelay < 0 || p.BackoffMultiplier < 0 {
			return fmt.Errorf("config.recovery.profiles.%s: values must be non-negative", name)
		}
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return fmt.Errorf("config.telemetry.sample_rate must be within [0, 1] (got: %v)", c.Telemetry.SampleRate)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("config.database: %w", err)
	}
	if err := c.Redis.Validate(); err != nil {
		return fmt.Errorf("config.redis: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	return nil
}

// RecoveryOptions returns the manager options the recovery section implies.
func (c *Config) RecoveryOptions() []recovery.Option {
	opts := []recovery.Option{recovery.WithMaxConcurrent(c.Recovery.MaxConcurrent)}
	if len(c.Recovery.Profiles) > 0 {
		opts = append(opts, recovery.WithProfileOverrides(c.Recovery.Profiles))
	}
	return opts
}

// TracerConfig derives the tracer settings.
func (c *Config) TracerConfig() observability.TracerConfig {
	return observability.TracerConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		SampleRate:     c.Telemetry.SampleRate,
	}
}

// MeterConfig derives the meter settings.
func (c *Config) MeterConfig() *observability.MeterConfig {
	return &observability.MeterConfig{
		ServiceName:    c.Name,
		ServiceVersion: c.Version,
		Environment:    c.Environment,
		Endpoint:       c.Telemetry.Endpoint,
		Insecure:       c.Telemetry.Insecure,
		Interval:       c.Telemetry.MetricInterval,
	}
}

// Load reads the configuration of serviceName, applies defaults and
// validates the result.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	cfg := &Config{Name: serviceName}
	if err := LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = serviceName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
