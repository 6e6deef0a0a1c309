// Package retry provides backoff policies for transient failures such as
// event publishes during a broker reconnect.
package retry

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
)

// Policy describes how often and how patiently to retry. It is immutable
// after construction.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int // attempts after the first failure
}

// DefaultPolicy is exponential from 200ms, capped at 5s, two retries.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffExponential, Initial: 200 * time.Millisecond, Max: 5 * time.Second, MaxRetries: 2}
}

// NewPolicy builds a policy; zero or unknown values keep the defaults and
// Initial is clamped to Max.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	switch mode {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = mode
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// FromEvents builds the publish retry policy from configuration.
func FromEvents(cfg config.EventsConfig) Policy {
	return NewPolicy(cfg.RetryBackoff, cfg.RetryInitialDuration(), cfg.RetryMaxDuration(), cfg.Retries())
}

// Delay returns the wait before retry n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		d = p.Initial
	case config.RetryBackoffLinear:
		d = time.Duration(n) * p.Initial
	default:
		if n > 30 {
			return p.Max
		}
		d = p.Initial << (n - 1)
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Validate reports a policy that cannot be applied.
func (p Policy) Validate() error {
	switch {
	case p.Initial <= 0:
		return errors.New("retry: initial delay must be positive")
	case p.Max <= 0:
		return errors.New("retry: max delay must be positive")
	case p.MaxRetries < 0:
		return errors.New("retry: max retries cannot be negative")
	}
	return nil
}

// Do runs op until it succeeds, the retries are used up, or ctx ends. It
// returns the number of attempts made and the last error.
func (p Policy) Do(ctx context.Context, op func() error) (int, error) {
	attempts := 0
	for {
		attempts++
		err := op()
		if err == nil || attempts > p.MaxRetries {
			return attempts, err
		}

		timer := time.NewTimer(p.Delay(attempts))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}
