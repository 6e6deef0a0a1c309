package config

import (
	"time"

	"git.home.luguber.info/inful/docsite/internal/foundation/normalization"
)

// RetryBackoffMode selects how delays grow between retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"constant":    RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, RetryBackoffExponential)

func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffNormalizer.Normalize(raw)
}

func (e EventsConfig) RetryInitialDuration() time.Duration { return mustDuration(e.RetryInitial) }
func (e EventsConfig) RetryMaxDuration() time.Duration     { return mustDuration(e.RetryMax) }
