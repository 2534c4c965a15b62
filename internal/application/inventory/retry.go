package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/storefront/backend/internal/domain/shared"
)

// AttemptOutcome classifies the result of one transactional attempt
type AttemptOutcome int

const (
	// AttemptSucceeded means the attempt committed
	AttemptSucceeded AttemptOutcome = iota
	// AttemptRetryable means the attempt may succeed if run again
	AttemptRetryable
	// AttemptTerminal means running again cannot change the answer
	AttemptTerminal
)

// String returns the outcome name
func (o AttemptOutcome) String() string {
	switch o {
	case AttemptSucceeded:
		return "succeeded"
	case AttemptRetryable:
		return "retryable"
	default:
		return "terminal"
	}
}

// AttemptResult pairs an attempt error with its classification
type AttemptResult struct {
	Outcome AttemptOutcome
	Err     error
}

// ClassifyAttempt maps the error of one attempt to an outcome.
//
// Domain errors other than a transient conflict are business answers and are
// terminal. Conflicts, attempt deadlines and unrecognised infrastructure
// failures are retryable; the retry budget bounds them.
func ClassifyAttempt(ctx context.Context, err error) AttemptResult {
	switch {
	case err == nil:
		return AttemptResult{Outcome: AttemptSucceeded}
	case ctx.Err() != nil:
		return AttemptResult{Outcome: AttemptTerminal, Err: err}
	case errors.Is(err, shared.ErrTransientConflict):
		return AttemptResult{Outcome: AttemptRetryable, Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return AttemptResult{Outcome: AttemptRetryable, Err: err}
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return AttemptResult{Outcome: AttemptTerminal, Err: err}
	}
	return AttemptResult{Outcome: AttemptRetryable, Err: err}
}

// RetryPolicy bounds how a transactional operation is retried
type RetryPolicy struct {
	MaxAttempts         int
	AttemptTimeout      time.Duration
	InitialInterval     time.Duration
	MaxInterval         time.Duration
	Multiplier          float64
	RandomizationFactor float64
}

// DefaultRetryPolicy returns the policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         3,
		AttemptTimeout:      10 * time.Second,
		InitialInterval:     50 * time.Millisecond,
		MaxInterval:         time.Second,
		Multiplier:          2,
		RandomizationFactor: 0.5,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	def := DefaultRetryPolicy()
	if p.MaxAttempts < 1 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.AttemptTimeout <= 0 {
		p.AttemptTimeout = def.AttemptTimeout
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = def.InitialInterval
	}
	if p.MaxInterval < p.InitialInterval {
		p.MaxInterval = p.InitialInterval
	}
	if p.Multiplier < 1 {
		p.Multiplier = def.Multiplier
	}
	if p.RandomizationFactor < 0 || p.RandomizationFactor > 1 {
		p.RandomizationFactor = def.RandomizationFactor
	}
	return p
}

// NewBackOff builds the delay schedule between attempts: exponential with
// jitter, stopping after MaxAttempts-1 waits.
func (p RetryPolicy) NewBackOff() backoff.BackOff {
	p = p.normalized()
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.InitialInterval),
		backoff.WithMaxInterval(p.MaxInterval),
		backoff.WithMultiplier(p.Multiplier),
		backoff.WithRandomizationFactor(p.RandomizationFactor),
		backoff.WithMaxElapsedTime(0),
	)
	return backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1))
}

// RetryNotify is called before sleeping between attempts
type RetryNotify func(attempt int, wait time.Duration, err error)

// Run executes attempt until it succeeds, fails terminally, or the budget is
// spent. Each attempt gets its own AttemptTimeout. Returns the number of
// attempts made.
//
// An exhausted budget is reported as a terminal TRANSIENT_CONFLICT when the
// last attempt conflicted, otherwise as SYSTEM_ERROR wrapping the last cause.
func (p RetryPolicy) Run(ctx context.Context, attempt func(ctx context.Context) error, notify RetryNotify) (int, error) {
	p = p.normalized()
	schedule := p.NewBackOff()

	for n := 1; ; n++ {
		attemptCtx, cancel := context.WithTimeout(ctx, p.AttemptTimeout)
		err := attempt(attemptCtx)
		cancel()

		result := ClassifyAttempt(ctx, err)
		switch result.Outcome {
		case AttemptSucceeded:
			return n, nil
		case AttemptTerminal:
			return n, result.Err
		}

		wait := schedule.NextBackOff()
		if wait == backoff.Stop {
			return n, exhausted(n, result.Err)
		}
		if notify != nil {
			notify(n, wait, result.Err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return n, fmt.Errorf("retry interrupted after %d attempts: %w", n, ctx.Err())
		case <-timer.C:
		}
	}
}

func exhausted(attempts int, last error) error {
	if errors.Is(last, shared.ErrTransientConflict) {
		return shared.NewDomainError(shared.CodeTransientConflict,
			fmt.Sprintf("Gave up after %d conflicting attempts", attempts))
	}
	return fmt.Errorf("%w: gave up after %d attempts: %w", shared.ErrSystem, attempts, last)
}
