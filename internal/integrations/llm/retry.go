package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const defaultRetryBackoff = 2 * time.Second

// Retrying bounds each attempt with Timeout and retries rate-limit and
// transient failures with linear backoff. Rate limits wait twice as long.
type Retrying struct {
	Next     Client
	Attempts int
	Backoff  time.Duration
	Timeout  time.Duration
	Logger   *zap.Logger

	// Sleep waits between attempts; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (r *Retrying) Complete(ctx context.Context, req Request) (Completion, error) {
	attempts := max(r.Attempts, 1)
	backoff := r.Backoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		comp, err := r.once(ctx, req)
		if err == nil {
			return comp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return Completion{}, ctx.Err()
		}
		kind := ClassifyError(err)
		if attempt == attempts || !Retryable(err) {
			break
		}
		wait := time.Duration(attempt) * backoff
		if kind == ErrorRate {
			wait *= 2
		}
		log.Warn("llm retry",
			zap.Int("attempt", attempt),
			zap.String("error_type", string(kind)),
			zap.Duration("wait", wait),
			zap.Error(err))
		if err := sleep(ctx, wait); err != nil {
			return Completion{}, err
		}
	}
	return Completion{}, lastErr
}

func (r *Retrying) once(ctx context.Context, req Request) (Completion, error) {
	if r.Timeout <= 0 {
		return r.Next.Complete(ctx, req)
	}
	callCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()
	return r.Next.Complete(callCtx, req)
}

// SleepContext waits for d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
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
