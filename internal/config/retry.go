package config

import (
	"time"

	"github.com/NicolasDP/git/internal/foundation/normalization"
)

// RetryConfig configures retries of remote operations (fetch and push).
type RetryConfig struct {
	Backoff      RetryBackoffMode `yaml:"backoff"`       // fixed|linear|exponential
	InitialDelay string           `yaml:"initial_delay"` // e.g. "1s"
	MaxDelay     string           `yaml:"max_delay"`     // cap for growing delays
	MaxRetries   *int             `yaml:"max_retries"`   // retries after the first failure
}

// Initial returns the parsed initial delay, zero when unset or invalid.
func (r RetryConfig) Initial() time.Duration { return parseDuration(r.InitialDelay) }

// Max returns the parsed delay cap, zero when unset or invalid.
func (r RetryConfig) Max() time.Duration { return parseDuration(r.MaxDelay) }

// Retries returns the configured retry count, 0 when unset.
func (r RetryConfig) Retries() int {
	if r.MaxRetries == nil {
		return 0
	}
	return *r.MaxRetries
}

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffs = normalization.New("retry backoff", map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"constant":    RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, "")

// NormalizeRetryBackoff converts user input into a typed mode, returning
// the empty string for unknown input.
func NormalizeRetryBackoff(raw string) RetryBackoffMode {
	return retryBackoffs.Normalize(raw)
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d
}
