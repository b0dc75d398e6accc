// Package retry decides how often and how long to wait before re-sending a
// failed content API request.
package retry

import (
	"context"
	"time"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
)

// RetryAfterKey is the error context key holding a server-requested wait as a
// time.Duration. Rate-limited errors carrying it wait that long instead of
// the computed backoff.
const RetryAfterKey = "retry_after"

// Policy is a backoff schedule plus a retry budget.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int // retries after the first attempt
}

// DefaultPolicy: exponential from 500ms, capped at 10s, two retries.
func DefaultPolicy() Policy {
	return Policy{
		Mode:       config.RetryBackoffExponential,
		Initial:    500 * time.Millisecond,
		Max:        10 * time.Second,
		MaxRetries: 2,
	}
}

// NewPolicy overlays the given values on DefaultPolicy. Non-positive delays, a
// negative budget and an unknown mode keep the default. Initial never exceeds
// Max.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if m := config.NormalizeRetryBackoff(string(mode)); m != "" {
		p.Mode = m
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
	p.Initial = min(p.Initial, p.Max)
	return p
}

// FromConfig builds the content API client's policy from the http settings.
func FromConfig(h config.HTTPConfig) Policy {
	initial, maxDelay := h.RetryDelays()
	return NewPolicy(h.RetryBackoff, initial, maxDelay, h.MaxRetries)
}

// Delay is the wait before retry n, counting from 1.
func (p Policy) Delay(n int) time.Duration {
	if n < 1 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		d = p.Initial
	case config.RetryBackoffLinear:
		d = p.Initial * time.Duration(n)
	default:
		if n > 30 {
			return p.Max
		}
		d = p.Initial << (n - 1)
	}
	return min(d, p.Max)
}

// wait picks the pause before retry n after err. A rate-limit error with a
// server-provided reset overrides the schedule.
func (p Policy) wait(n int, err error) time.Duration {
	if classified, ok := errors.AsClassified(err); ok && classified.RetryStrategy() == errors.RetryRateLimit {
		if v, ok := classified.Context().Get(RetryAfterKey); ok {
			if d, ok := v.(time.Duration); ok && d > 0 {
				return d
			}
		}
	}
	return p.Delay(n)
}

// Do calls fn until it succeeds or the failure is final: a non-retryable
// error, an exhausted budget or a done ctx. The last error from fn is
// returned. onRetry, when set, runs before every wait.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error, onRetry func(attempt int, err error, wait time.Duration)) error {
	for attempt := 0; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || !retryable(err) {
			return err
		}

		n := attempt + 1
		d := p.wait(n, err)
		if onRetry != nil {
			onRetry(n, err, d)
		}

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return err
		case <-t.C:
		}
	}
}

func retryable(err error) bool {
	classified, ok := errors.AsClassified(err)
	return ok && classified.CanRetry()
}
