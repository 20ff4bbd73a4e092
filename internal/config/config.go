// File: internal/config/config.go
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Format      string `mapstructure:"format" yaml:"format"`
	AddSource   bool   `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int    `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int    `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool   `mapstructure:"compress" yaml:"compress"`
}

// BrowserConfig holds settings for the headless browser instances.
type BrowserConfig struct {
	Headless     bool     `mapstructure:"headless" yaml:"headless"`
	WindowWidth  int      `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int      `mapstructure:"window_height" yaml:"window_height"`
	Args         []string `mapstructure:"args" yaml:"args"`
	// NavigationsPerSecond rate-limits GoToURL calls per session. Zero disables
	// the limiter.
	NavigationsPerSecond float64 `mapstructure:"navigations_per_second" yaml:"navigations_per_second"`
}

// SyncConfig tunes the page-ready synchronizer and action waits.
type SyncConfig struct {
	// ReadinessTimeout bounds the document.readyState poll. On expiry the
	// synchronizer proceeds anyway; readiness is a hint, not a gate.
	ReadinessTimeout time.Duration `mapstructure:"readiness_timeout" yaml:"readiness_timeout"`
	// SettleDelay is the minimum pause after any navigation or action,
	// measured from the start of the wait.
	SettleDelay time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	// PollInterval is the spacing between readiness probes.
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	// ActionTimeout bounds the wait for an element to become clickable.
	ActionTimeout time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "aviator")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.window_width", 1024)
	v.SetDefault("browser.window_height", 1024)
	v.SetDefault("browser.navigations_per_second", 0.0)

	// -- Sync --
	v.SetDefault("sync.readiness_timeout", 5*time.Second)
	v.SetDefault("sync.settle_delay", 500*time.Millisecond)
	v.SetDefault("sync.poll_interval", 100*time.Millisecond)
	v.SetDefault("sync.action_timeout", 10*time.Second)
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Browser.WindowWidth <= 0 || c.Browser.WindowHeight <= 0 {
		return fmt.Errorf("browser.window_width and browser.window_height must be positive")
	}
	if c.Browser.NavigationsPerSecond < 0 {
		return fmt.Errorf("browser.navigations_per_second must not be negative")
	}
	if c.Sync.ReadinessTimeout <= 0 {
		return fmt.Errorf("sync.readiness_timeout must be a positive duration")
	}
	if c.Sync.SettleDelay < 0 {
		return fmt.Errorf("sync.settle_delay must not be negative")
	}
	if c.Sync.PollInterval <= 0 {
		return fmt.Errorf("sync.poll_interval must be a positive duration")
	}
	if c.Sync.ActionTimeout <= 0 {
		return fmt.Errorf("sync.action_timeout must be a positive duration")
	}
	return nil
}
