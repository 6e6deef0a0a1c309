package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/docsite/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != config.RetryBackoffExponential {
		t.Fatalf("expected exponential default mode got %s", p.Mode)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

func TestNewPolicy_ClampsInitial(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second {
		t.Fatalf("expected clamped initial 2s got %v", p.Initial)
	}
	if p.Mode != config.RetryBackoffFixed || p.MaxRetries != 5 {
		t.Fatalf("unexpected policy %+v", p)
	}
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	cases := []struct {
		mode    config.RetryBackoffMode
		attempt int
		want    time.Duration
	}{
		{config.RetryBackoffFixed, 1, 100 * ms},
		{config.RetryBackoffFixed, 4, 100 * ms},
		{config.RetryBackoffLinear, 2, 200 * ms},
		{config.RetryBackoffLinear, 3, 250 * ms},
		{config.RetryBackoffExponential, 1, 100 * ms},
		{config.RetryBackoffExponential, 2, 200 * ms},
		{config.RetryBackoffExponential, 3, 250 * ms},
		{config.RetryBackoffExponential, 63, 250 * ms},
		{config.RetryBackoffExponential, 0, 0},
	}
	for _, c := range cases {
		p := NewPolicy(c.mode, 100*ms, 250*ms, 3)
		if got := p.Delay(c.attempt); got != c.want {
			t.Fatalf("%s attempt %d: expected %v got %v", c.mode, c.attempt, c.want, got)
		}
	}
}

func TestFromEvents(t *testing.T) {
	cfg := config.Default().Events
	retries := 4
	cfg.MaxRetries = &retries
	p := FromEvents(cfg)
	if p.MaxRetries != 4 || p.Initial != 200*time.Millisecond || p.Max != 5*time.Second {
		t.Fatalf("unexpected policy %+v", p)
	}
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	calls := 0
	attempts, err := p.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("expected success after 3 attempts, got %d %v", attempts, err)
	}
}

func TestDo_GivesUp(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	boom := errors.New("down")
	attempts, err := p.Do(context.Background(), func() error { return boom })
	if !errors.Is(err, boom) || attempts != 3 {
		t.Fatalf("expected 3 attempts ending in boom, got %d %v", attempts, err)
	}
}

func TestDo_StopsOnCancel(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts, err := p.Do(ctx, func() error { return errors.New("down") })
	if attempts != 1 || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected a single canceled attempt, got %d %v", attempts, err)
	}
}
