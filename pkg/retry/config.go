// Package retry implements the attempt-delay bookkeeping for the engine's
// retry loop: the RetryConfig data shape, its defaulting and validation
// rules, and an adapter onto cenkalti/backoff/v4's BackOff contract so the
// same delay sequencing can be reused by any caller that already composes
// backoff.BackOff values (reconnect logic for brokers like Kafka/AMQP does).
package retry

import (
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/fortified-go/fortifiedhttp/pkg/ferrors"
)

// Config mirrors spec RetryConfig: timeout per attempt, max attempts,
// initial delay, an optional cap, a multiplicative backoff factor and an
// additive jitter.
type Config struct {
	// Timeout bounds a single attempt, not the whole call.
	Timeout time.Duration

	// Tries is the maximum number of attempts. -1 requests unbounded
	// retries and is rejected by Validate unless WallClockBudget is set.
	Tries int

	// Delay is the initial inter-attempt wait.
	Delay time.Duration

	// MaxDelay caps the effective delay. Zero means no cap.
	MaxDelay time.Duration

	// Backoff is the multiplicative factor applied to Delay each attempt.
	// Zero (the default) disables multiplicative backoff.
	Backoff float64

	// Jitter is an additive delay applied per attempt.
	Jitter time.Duration

	// WallClockBudget is the orthogonal ceiling required to accompany
	// Tries == -1 (§9's Open Question: reject unbounded retries unless
	// paired with a wall-clock budget).
	WallClockBudget time.Duration
}

// Default values: 60s timeout, 3 tries, 10s delay, no cap, no backoff,
// no jitter.
const (
	DefaultTimeout = 60 * time.Second
	DefaultTries   = 3
	DefaultDelay   = 10 * time.Second
)

// DefaultConfig returns the documented defaults: 60s timeout, 3 tries,
// 10s delay.
func DefaultConfig() Config {
	return Config{
		Timeout: DefaultTimeout,
		Tries:   DefaultTries,
		Delay:   DefaultDelay,
	}
}

// WithUnboundedTries is the only supported way to request Tries == -1; it
// must be paired with a wall-clock budget, per §9.
func WithUnboundedTries(budget time.Duration) func(*Config) {
	return func(c *Config) {
		c.Tries = -1
		c.WallClockBudget = budget
	}
}

// WithDefaults fills unset fields (zero Timeout/Tries/Delay) from
// DefaultConfig, matching §4.6 step 1's "ensure retry_cfg has
// timeout/tries/delay (fill from defaults)".
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Tries == 0 {
		c.Tries = DefaultTries
	}
	if c.Delay <= 0 {
		c.Delay = DefaultDelay
	}
	return c
}

// Validate rejects configurations the engine cannot execute safely:
// Tries < -1, or Tries == -1 without an accompanying wall-clock budget.
func (c Config) Validate() error {
	if c.Tries < -1 {
		return ferrors.Module(ferrors.CodeArgument, "retry.Config: Tries must be >= -1")
	}
	if c.Tries == -1 && c.WallClockBudget <= 0 {
		return ferrors.Module(ferrors.CodeArgument,
			"retry.Config: Tries == -1 (unbounded) requires WithUnboundedTries(budget)")
	}
	return nil
}

// NextDelay computes the effective delay before attempt n+1 (n is
// 1-indexed, the attempt that just completed), per §3's formula:
// min(max_delay, delay*backoff^(n-1) + (n-1)*jitter) when backoff>0, else
// delay + (n-1)*jitter.
func (c Config) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	n := attempt - 1

	var d time.Duration
	if c.Backoff > 0 {
		mult := 1.0
		for i := 0; i < n; i++ {
			mult *= c.Backoff
		}
		d = time.Duration(float64(c.Delay) * mult)
	} else {
		d = c.Delay
	}
	d += time.Duration(n) * c.Jitter

	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// BackOff adapts Config onto cenkalti/backoff/v4's BackOff interface so
// the same delay sequencing is reusable by callers that already compose
// backoff.BackOff chains.
type BackOff struct {
	cfg     Config
	attempt int
}

var _ backoff.BackOff = (*BackOff)(nil)

// NewBackOff wraps cfg as a backoff.BackOff.
func NewBackOff(cfg Config) *BackOff {
	return &BackOff{cfg: cfg}
}

// NextBackOff returns the delay before the next attempt and advances the
// internal attempt counter. Returns backoff.Stop once Tries is exhausted
// (never, for unbounded Tries == -1).
func (b *BackOff) NextBackOff() time.Duration {
	if b.cfg.Tries > 0 && b.attempt >= b.cfg.Tries {
		return backoff.Stop
	}
	b.attempt++
	return b.cfg.NextDelay(b.attempt)
}

// Reset restarts the attempt counter.
func (b *BackOff) Reset() {
	b.attempt = 0
}
