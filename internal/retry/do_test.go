package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasDP/git/internal/config"
	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/metrics"
)

type retryCounter struct {
	metrics.NoopRecorder
	retries, exhausted int
}

func (r *retryCounter) IncRemoteRetry(string)          { r.retries++ }
func (r *retryCounter) IncRemoteRetryExhausted(string) { r.exhausted++ }

func newTestRunner(maxRetries int) (*Runner, *retryCounter, *[]time.Duration) {
	rec := &retryCounter{}
	var slept []time.Duration
	r := NewRunner(NewPolicy(config.RetryBackoffLinear, 10*time.Millisecond, time.Second, maxRetries), rec)
	r.Sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return r, rec, &slept
}

func TestDoRetriesTransientErrors(t *testing.T) {
	r, rec, slept := newTestRunner(3)
	calls := 0
	err := r.Do(context.Background(), "fetch", func(context.Context) error {
		calls++
		if calls < 3 {
			return ferrors.NetworkError("connection reset").Build()
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, rec.retries)
	assert.Zero(t, rec.exhausted)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, *slept)
}

func TestDoStopsOnPermanentErrors(t *testing.T) {
	r, rec, _ := newTestRunner(3)
	calls := 0
	authErr := ferrors.AuthError("bad credentials").Build()
	err := r.Do(context.Background(), "push", func(context.Context) error {
		calls++
		return authErr
	})
	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls)
	assert.Zero(t, rec.retries)

	calls = 0
	err = r.Do(context.Background(), "push", func(context.Context) error {
		calls++
		return errors.New("plain")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoExhausts(t *testing.T) {
	r, rec, slept := newTestRunner(2)
	transient := ferrors.NetworkError("timeout").Build()
	err := r.Do(context.Background(), "push", func(context.Context) error { return transient })
	require.Error(t, err)
	assert.ErrorIs(t, err, transient)
	assert.Contains(t, err.Error(), "push failed after 2 retries")
	assert.Equal(t, 2, rec.retries)
	assert.Equal(t, 1, rec.exhausted)
	assert.Len(t, *slept, 2)
}

func TestDoStretchesRateLimitDelays(t *testing.T) {
	r, _, slept := newTestRunner(1)
	limited := ferrors.NetworkError("too many requests").RateLimit().Build()
	_ = r.Do(context.Background(), "fetch", func(context.Context) error { return limited })
	assert.Equal(t, []time.Duration{30 * time.Millisecond}, *slept)
}

func TestDoHonoursCancellation(t *testing.T) {
	r := NewRunner(NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5), nil)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- r.Do(ctx, "fetch", func(context.Context) error {
			calls++
			return ferrors.NetworkError("timeout").Build()
		})
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	assert.Equal(t, 1, calls)
	assert.False(t, IsRetryable(context.Canceled))
}
