package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "docsite.yaml"

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Content ContentConfig `yaml:"content"`
	Search  SearchConfig  `yaml:"search"`
	Events  EventsConfig  `yaml:"events"`
	Metrics MetricsConfig `yaml:"metrics"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener. Durations use Go syntax ("15s").
type ServerConfig struct {
	Address         string `yaml:"address"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	IdleTimeout     string `yaml:"idle_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// ContentConfig configures the documentation source.
type ContentConfig struct {
	DocsDir            string `yaml:"docs_dir"`
	ResolveTimeout     string `yaml:"resolve_timeout"`
	ResolveConcurrency int    `yaml:"resolve_concurrency"`
	// GitLastMod derives last-modified times from git history when the docs
	// directory is inside a repository.
	GitLastMod bool `yaml:"git_lastmod"`
	// Watch invalidates cached metadata when files change.
	Watch bool `yaml:"watch"`
	// RefreshInterval periodically re-reads the tree. Empty or "0" disables.
	RefreshInterval string `yaml:"refresh_interval"`
}

// SearchConfig configures server-side search.
type SearchConfig struct {
	Enabled bool `yaml:"enabled"`
	// Database is a sqlite path or ":memory:".
	Database        string `yaml:"database"`
	MaxContentRunes int    `yaml:"max_content_runes"`
}

// EventsConfig configures content change notifications. An empty URL disables them.
type EventsConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
	// Failed publishes are retried up to MaxRetries times. An explicit 0
	// disables retries; leaving it unset uses the default.
	RetryBackoff RetryBackoffMode `yaml:"retry_backoff"`
	RetryInitial string           `yaml:"retry_initial"`
	RetryMax     string           `yaml:"retry_max"`
	MaxRetries   *int             `yaml:"max_retries"`
}

// Retries returns MaxRetries, or 0 when unset.
func (e EventsConfig) Retries() int {
	if e.MaxRetries == nil {
		return 0
	}
	return *e.MaxRetries
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration YAML, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	_ = applyDefaults(&cfg)
	return &cfg
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Content.Watch = true
	example.Search.Enabled = true
	example.Search.Database = "./docsite-search.db"
	example.Metrics.Enabled = true

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Durations below were checked by ValidateConfig; parse failures yield zero.

func (s ServerConfig) ReadTimeoutDuration() time.Duration     { return mustDuration(s.ReadTimeout) }
func (s ServerConfig) WriteTimeoutDuration() time.Duration    { return mustDuration(s.WriteTimeout) }
func (s ServerConfig) IdleTimeoutDuration() time.Duration     { return mustDuration(s.IdleTimeout) }
func (s ServerConfig) ShutdownTimeoutDuration() time.Duration { return mustDuration(s.ShutdownTimeout) }

func (c ContentConfig) ResolveTimeoutDuration() time.Duration { return mustDuration(c.ResolveTimeout) }
func (c ContentConfig) RefreshIntervalDuration() time.Duration {
	return mustDuration(c.RefreshInterval)
}

func mustDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
