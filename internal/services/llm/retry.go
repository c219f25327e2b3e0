package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"venue-tagger/internal/services/extract"
)

const (
	DefaultMaxRetries = 2
	DefaultBackoff    = 500 * time.Millisecond
)

// Retrier runs a completion-and-parse operation with a capped retry budget.
// The operation is attempted at most MaxRetries+1 times.
type Retrier struct {
	MaxRetries int
	Backoff    time.Duration
}

func NewRetrier(maxRetries int, backoff time.Duration) *Retrier {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Retrier{MaxRetries: maxRetries, Backoff: backoff}
}

// Do calls op until it succeeds, returns a non-retryable error, the budget is
// exhausted, or ctx is done. The last error is returned unchanged.
func (r *Retrier) Do(ctx context.Context, name string, op func(ctx context.Context) error) error {
	maxRetries := 0
	backoff := time.Duration(0)
	if r != nil {
		maxRetries = r.MaxRetries
		backoff = r.Backoff
	}

	var err error
	for attempt := 0; ; attempt++ {
		err = op(ctx)
		if err == nil || attempt >= maxRetries || !IsRetryable(err) {
			return err
		}

		wait := backoff << attempt
		log.Warn().
			Err(err).
			Str("operation", name).
			Int("attempt", attempt+1).
			Dur("backoff", wait).
			Msg("Retrying completion")

		if wait <= 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return err
			}
			continue
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// IsRetryable reports whether err is a probabilistic failure worth another attempt:
// transient provider failures, empty or unparsable completions, and schema mismatches.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable()
	}
	return errors.Is(err, ErrNoContent) ||
		errors.Is(err, extract.ErrUnparsableCompletion) ||
		errors.Is(err, extract.ErrSchemaMismatch)
}
