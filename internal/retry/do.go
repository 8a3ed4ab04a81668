package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ferrors "github.com/NicolasDP/git/internal/foundation/errors"
	"github.com/NicolasDP/git/internal/logfields"
	"github.com/NicolasDP/git/internal/metrics"
)

// rateLimitFactor stretches delays after rate-limit errors.
const rateLimitFactor = 3

// Runner executes operations under a Policy.
type Runner struct {
	Policy   Policy
	Recorder metrics.Recorder
	// Sleep waits between attempts; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner returns a Runner sleeping on the wall clock.
func NewRunner(p Policy, rec metrics.Recorder) *Runner {
	return &Runner{Policy: p, Recorder: metrics.OrNoop(rec), Sleep: sleepContext}
}

// Do calls fn until it succeeds, fails permanently or the policy is
// exhausted. Errors are permanent unless IsRetryable says otherwise.
func (r *Runner) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	rec := metrics.OrNoop(r.Recorder)
	sleep := r.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 0; attempt <= r.Policy.MaxRetries; attempt++ {
		if attempt > 0 {
			rec.IncRemoteRetry(op)
			slog.WarnContext(ctx, "Retrying operation", logfields.Op(op), logfields.Attempt(attempt))
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
		if attempt == r.Policy.MaxRetries {
			break
		}
		delay := r.Policy.Delay(attempt + 1)
		if ce, ok := ferrors.AsClassified(err); ok && ce.RetryStrategy() == ferrors.RetryRateLimit {
			delay *= rateLimitFactor
		}
		if serr := sleep(ctx, delay); serr != nil {
			return serr
		}
	}
	if r.Policy.MaxRetries > 0 {
		rec.IncRemoteRetryExhausted(op)
	}
	return fmt.Errorf("%s failed after %d retries: %w", op, r.Policy.MaxRetries, lastErr)
}

// IsRetryable reports whether err is a classified error whose retry
// strategy allows another attempt. Context cancellation never is.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	ce, ok := ferrors.AsClassified(err)
	return ok && ce.IsTransient()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
