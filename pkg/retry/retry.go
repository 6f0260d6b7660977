// Package retry runs an operation a bounded number of times with a fixed
// delay between attempts.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds an operation. Delay does not grow between attempts.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultPolicy is three attempts spaced one second apart
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second}

// backOff turns the policy into a constant schedule capped at Attempts calls
func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	return backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(p.attempts()-1)),
		ctx,
	)
}

func (p Policy) attempts() int {
	if p.Attempts < 1 {
		return 1
	}
	return p.Attempts
}

// Permanent marks err as terminal so Do returns it without retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return backoff.Permanent(err)
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *backoff.PermanentError
	return errors.As(err, &p)
}

// Do calls fn until it succeeds, returns a permanent error, or the policy's
// attempts are used up. attempt is 1-based. A permanent error is returned
// unwrapped.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) error) error {
	var (
		attempt   int
		permanent bool
	)
	err := backoff.Retry(func() error {
		attempt++
		err := fn(ctx, attempt)
		permanent = IsPermanent(err)
		return err
	}, p.backOff(ctx))
	switch {
	case err == nil:
		return nil
	case permanent:
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return fmt.Errorf("after %d attempts: %w", attempt, err)
}

// Sleep waits for d or until ctx is done
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
