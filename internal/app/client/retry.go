package client

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/exp/slog"

	"possync/internal/domain/sync"
)

// Retrier wraps a single network operation with bounded exponential-backoff
// retries. After exhausting the attempts it returns the last failure so the
// caller can leave affected records queued for the next cycle; it never
// panics. Auth and validation failures are permanent and short-circuit.
type Retrier struct {
	MaxAttempts  int
	InitialDelay time.Duration
	Multiplier   float64

	log *slog.Logger
}

func NewRetrier(maxAttempts int, initialDelay time.Duration, multiplier float64, log *slog.Logger) *Retrier {
	return &Retrier{
		MaxAttempts:  maxAttempts,
		InitialDelay: initialDelay,
		Multiplier:   multiplier,
		log:          log,
	}
}

// Do runs fn until it succeeds, a permanent error occurs, the attempts are
// exhausted or the context is cancelled during a backoff sleep.
func (r *Retrier) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.InitialDelay
	b.Multiplier = r.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = 5 * time.Minute

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := fn(ctx); err != nil {
			if !sync.IsRetryable(err) {
				return struct{}{}, backoff.Permanent(err)
			}
			r.log.Debug("operation failed, will retry",
				"op", op,
				"attempt", attempt,
				"error", err,
			)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.MaxAttempts)),
	)

	return err
}
