package config

import "fmt"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

type serverDefaults struct{}

func (serverDefaults) Domain() string { return "server" }

func (serverDefaults) ApplyDefaults(cfg *Config) error {
	s := &cfg.Server
	setDefault(&s.Address, ":8080")
	setDefault(&s.ReadTimeout, "15s")
	setDefault(&s.WriteTimeout, "30s")
	setDefault(&s.IdleTimeout, "60s")
	setDefault(&s.ShutdownTimeout, "10s")
	return nil
}

type contentDefaults struct{}

func (contentDefaults) Domain() string { return "content" }

func (contentDefaults) ApplyDefaults(cfg *Config) error {
	c := &cfg.Content
	setDefault(&c.DocsDir, "./docs")
	setDefault(&c.ResolveTimeout, "5s")
	if c.ResolveConcurrency == 0 {
		c.ResolveConcurrency = 16
	}
	setDefault(&c.RefreshInterval, "0")
	return nil
}

type searchDefaults struct{}

func (searchDefaults) Domain() string { return "search" }

func (searchDefaults) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Search.Database, ":memory:")
	if cfg.Search.MaxContentRunes == 0 {
		cfg.Search.MaxContentRunes = 20000
	}
	return nil
}

type eventsDefaults struct{}

func (eventsDefaults) Domain() string { return "events" }

func (eventsDefaults) ApplyDefaults(cfg *Config) error {
	e := &cfg.Events
	setDefault(&e.Subject, "docsite.content.changed")
	e.RetryBackoff = NormalizeRetryBackoff(string(e.RetryBackoff))
	setDefault(&e.RetryInitial, "200ms")
	setDefault(&e.RetryMax, "5s")
	if e.MaxRetries == nil {
		n := 2
		e.MaxRetries = &n
	}
	return nil
}

type observabilityDefaults struct{}

func (observabilityDefaults) Domain() string { return "observability" }

func (observabilityDefaults) ApplyDefaults(cfg *Config) error {
	setDefault(&cfg.Metrics.Path, "/metrics")
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

var defaultAppliers = []DefaultApplier{
	serverDefaults{},
	contentDefaults{},
	searchDefaults{},
	eventsDefaults{},
	observabilityDefaults{},
}

// applyDefaults applies defaults for all configuration domains.
func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("applying defaults for %s: %w", applier.Domain(), err)
		}
	}
	return nil
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
