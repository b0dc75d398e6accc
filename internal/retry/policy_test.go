package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/contentbinder/internal/config"
	"git.home.luguber.info/inful/contentbinder/internal/foundation/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
	assert.Equal(t, 500*time.Millisecond, p.Initial)
	assert.Equal(t, 10*time.Second, p.Max)
	assert.Equal(t, 2, p.MaxRetries)
}

// TestNewPolicyOverrides checks override precedence and clamping when initial > max.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	assert.Equal(t, 2*time.Second, p.Initial)
	assert.Equal(t, 2*time.Second, p.Max)
	assert.Equal(t, config.RetryBackoffFixed, p.Mode)
	assert.Equal(t, 5, p.MaxRetries)

	unknown := NewPolicy("random", 0, 0, -1)
	assert.Equal(t, DefaultPolicy(), unknown)
}

func TestDelayModes(t *testing.T) {
	fixed := NewPolicy(config.RetryBackoffFixed, 100*time.Millisecond, 500*time.Millisecond, 3)
	for i := 1; i <= 3; i++ {
		assert.Equal(t, 100*time.Millisecond, fixed.Delay(i))
	}

	linear := NewPolicy(config.RetryBackoffLinear, 100*time.Millisecond, 250*time.Millisecond, 5)
	assert.Equal(t, 100*time.Millisecond, linear.Delay(1))
	assert.Equal(t, 200*time.Millisecond, linear.Delay(2))
	assert.Equal(t, 250*time.Millisecond, linear.Delay(3))

	exp := NewPolicy(config.RetryBackoffExponential, 100*time.Millisecond, 500*time.Millisecond, 5)
	assert.Equal(t, 100*time.Millisecond, exp.Delay(1))
	assert.Equal(t, 200*time.Millisecond, exp.Delay(2))
	assert.Equal(t, 400*time.Millisecond, exp.Delay(3))
	assert.Equal(t, 500*time.Millisecond, exp.Delay(4))
	assert.Equal(t, 500*time.Millisecond, exp.Delay(64))
	assert.Equal(t, time.Duration(0), exp.Delay(0))
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	p := FromConfig(cfg.HTTP)
	assert.Equal(t, config.RetryBackoffExponential, p.Mode)
	assert.Equal(t, cfg.HTTP.MaxRetries, p.MaxRetries)
}

func TestDo_RetriesTransientErrors(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)

	calls := 0
	var retried []int
	err := p.Do(context.Background(), func(int) error {
		calls++
		if calls < 3 {
			return errors.NetworkError("temporary").Build()
		}
		return nil
	}, func(attempt int, _ error, _ time.Duration) {
		retried = append(retried, attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestDo_StopsOnPermanentError(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)

	calls := 0
	permanent := errors.AuthError("bad token").Build()
	err := p.Do(context.Background(), func(int) error {
		calls++
		return permanent
	}, nil)

	assert.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)

	calls := 0
	err := p.Do(context.Background(), func(int) error {
		calls++
		return errors.NetworkError("down").Build()
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_HonoursContext(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := p.Do(ctx, func(int) error {
		calls++
		return errors.NetworkError("down").Build()
	}, nil)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.False(t, stderrors.Is(err, context.Canceled))
}

func TestDo_RateLimitWaitsForReset(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 1)

	limited := errors.NewError(errors.CategoryRateLimit, "slow down").
		RateLimit().
		WithContext(RetryAfterKey, time.Millisecond).
		Build()
	var waited time.Duration
	calls := 0
	err := p.Do(context.Background(), func(int) error {
		calls++
		if calls == 1 {
			return limited
		}
		return nil
	}, func(_ int, _ error, wait time.Duration) {
		waited = wait
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, time.Millisecond, waited)
}

func TestWait_IgnoresResetOnOtherErrors(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 50*time.Millisecond, time.Second, 1)
	network := errors.NetworkError("down").WithContext(RetryAfterKey, time.Hour).Build()
	assert.Equal(t, 50*time.Millisecond, p.wait(1, network))
	assert.Equal(t, 50*time.Millisecond, p.wait(1, errors.NewError(errors.CategoryRateLimit, "x").RateLimit().Build()))
}
