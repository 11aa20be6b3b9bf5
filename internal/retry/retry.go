// Package retry runs a fallible operation a bounded number of times with a fixed pause between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cloudsign/internal/shared"
)

// ErrExhausted is returned (wrapping the last failure) once every attempt has failed.
var ErrExhausted = errors.New("retries exhausted")

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy is a total attempt count with a fixed delay between attempts.
type Policy struct {
	Name     string        // label used in log entries
	Attempts int           // total attempts, including the first
	Delay    time.Duration // pause between attempts; never grows
	Logger   *log.Logger
	Sleep    Sleeper // defaults to a context-aware timer
}

// FromConfig builds a Policy from a [shared.RetryPolicyConfig].
func FromConfig(name string, c shared.RetryPolicyConfig, logger *log.Logger) Policy {
	return Policy{Name: name, Attempts: c.Attempts, Delay: c.Delay(), Logger: logger}
}

// Do calls op until it succeeds or p.Attempts calls have failed.
//
// On success the first successful result is returned. After the last failure the error
// wraps both [ErrExhausted] and the last error returned by op.
// A cancelled context stops the loop during the pause and returns ctx.Err().
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	attempts := max(p.Attempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = wait
	}
	logger := p.Logger
	if logger == nil {
		logger = log.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		logger.Warn("attempt failed, retrying",
			"op", p.Name, "attempt", attempt, "of", attempts, "delay", p.Delay, "error", err)

		if err := sleep(ctx, p.Delay); err != nil {
			return zero, err
		}
	}

	logger.Error("retries exhausted", "op", p.Name, "attempts", attempts, "error", lastErr)
	return zero, fmt.Errorf("%s: %w after %d attempts: %w", p.Name, ErrExhausted, attempts, lastErr)
}

// Run is [Do] for operations without a result.
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

func wait(ctx context.Context, d time.Duration) error {
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
