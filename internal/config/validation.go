package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ValidateConfig checks a defaulted configuration and reports every problem found.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	v.validateServer()
	v.validateContent()
	v.validateSearch()
	v.validateEvents()
	v.validateMetrics()
	return errors.Join(v.errs...)
}

// configurationValidator collects validation errors across domains.
type configurationValidator struct {
	config *Config
	errs   []error
}

func (cv *configurationValidator) addf(format string, args ...any) {
	cv.errs = append(cv.errs, fmt.Errorf(format, args...))
}

func (cv *configurationValidator) duration(field, value string, allowZero bool) {
	d, err := time.ParseDuration(value)
	switch {
	case err != nil:
		cv.addf("%s: invalid duration %q: %w", field, value, err)
	case d < 0:
		cv.addf("%s: must not be negative, got %s", field, value)
	case d == 0 && !allowZero:
		cv.addf("%s: must be greater than zero", field)
	}
}

func (cv *configurationValidator) validateServer() {
	s := cv.config.Server
	if strings.TrimSpace(s.Address) == "" {
		cv.addf("server.address: required")
	}
	cv.duration("server.read_timeout", s.ReadTimeout, true)
	cv.duration("server.write_timeout", s.WriteTimeout, true)
	cv.duration("server.idle_timeout", s.IdleTimeout, true)
	cv.duration("server.shutdown_timeout", s.ShutdownTimeout, false)
}

func (cv *configurationValidator) validateContent() {
	c := cv.config.Content
	if strings.TrimSpace(c.DocsDir) == "" {
		cv.addf("content.docs_dir: required")
	}
	cv.duration("content.resolve_timeout", c.ResolveTimeout, false)
	cv.duration("content.refresh_interval", c.RefreshInterval, true)
	if c.ResolveConcurrency < 1 {
		cv.addf("content.resolve_concurrency: must be at least 1, got %d", c.ResolveConcurrency)
	}
}

func (cv *configurationValidator) validateSearch() {
	if cv.config.Search.MaxContentRunes < 0 {
		cv.addf("search.max_content_runes: must not be negative")
	}
}

func (cv *configurationValidator) validateEvents() {
	e := cv.config.Events
	if e.NATSURL != "" && strings.TrimSpace(e.Subject) == "" {
		cv.addf("events.subject: required when events.nats_url is set")
	}
	cv.duration("events.retry_initial", e.RetryInitial, false)
	cv.duration("events.retry_max", e.RetryMax, false)
	if e.Retries() < 0 {
		cv.addf("events.max_retries: must not be negative, got %d", e.Retries())
	}
}

func (cv *configurationValidator) validateMetrics() {
	m := cv.config.Metrics
	if m.Enabled && !strings.HasPrefix(m.Path, "/") {
		cv.addf("metrics.path: must start with /, got %q", m.Path)
	}
	if m.Enabled && strings.HasPrefix(m.Path, "/api/") {
		cv.addf("metrics.path: %q collides with the API routes", m.Path)
	}
}
