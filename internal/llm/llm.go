// Package llm wraps hosted text-generation models behind a single Generator
// interface.
package llm

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
)

// ErrPermanent marks provider failures that retrying cannot fix, such as
// rejected credentials or an invalid request.
var ErrPermanent = errors.New("llm: permanent failure")

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// RateLimited throttles calls to an underlying Generator with a token bucket.
type RateLimited struct {
	next    Generator
	limiter *rate.Limiter
}

// NewRateLimited allows perMinute calls per minute with the given burst.
func NewRateLimited(next Generator, perMinute float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perMinute/60), burst),
	}
}

// Generate waits for a token, then delegates. A wait that cannot complete
// before ctx expires fails immediately.
func (r *RateLimited) Generate(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("llm: rate limit wait: %w", err)
	}
	return r.next.Generate(ctx, prompt)
}
