package scenario

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"
)

// Backoff bounds how often a failed model call is repeated.
type Backoff struct {
	Attempts int           // total calls including the first
	Base     time.Duration // pause after the first failure, doubled after each further one
	Cap      time.Duration
	Jitter   float64 // share of each pause shaved off at random
}

// DefaultBackoff keeps pauses short since the whole call runs under the
// interpreter timeout.
var DefaultBackoff = Backoff{
	Attempts: 3,
	Base:     500 * time.Millisecond,
	Cap:      4 * time.Second,
	Jitter:   0.2,
}

func (b Backoff) pause(failures int) time.Duration {
	d := b.Cap
	if failures < 30 {
		if grown := b.Base << failures; grown > 0 && grown < d {
			d = grown
		}
	}
	if b.Jitter > 0 {
		d -= time.Duration(b.Jitter * rand.Float64() * float64(d))
	}
	return d
}

// retryable reports false only for interpret errors marked permanent.
func retryable(err error) bool {
	var ierr *InterpretError
	return !errors.As(err, &ierr) || ierr.Retryable
}

// withBackoff repeats call until it succeeds, fails permanently, runs out of
// attempts, or ctx ends while pausing.
func withBackoff[T any](ctx context.Context, b Backoff, call func(context.Context) (T, error)) (T, error) {
	var zero T
	for failures := 0; ; failures++ {
		v, err := call(ctx)
		if err == nil {
			return v, nil
		}
		if failures+1 >= b.Attempts || !retryable(err) {
			return zero, err
		}

		timer := time.NewTimer(b.pause(failures))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}
