package scenario

import (
	"context"
	"time"

	"github.com/finpersona/backend/internal/domain"
	"github.com/rs/zerolog"
)

// Request is the input to a scenario interpretation.
type Request struct {
	Scenario  string
	Snapshot  domain.FinancialSnapshot
	Timeframe int
}

// Interpreter turns free-text scenarios into a structured analysis.
type Interpreter interface {
	Interpret(ctx context.Context, req Request) (*domain.ScenarioAnalysis, error)
}

// fallbackChain tries primary under a deadline and answers from fallback on any failure.
type fallbackChain struct {
	primary  Interpreter
	fallback Interpreter
	timeout  time.Duration
	log      zerolog.Logger
}

// WithFallback returns an Interpreter that bounds primary by timeout and
// recovers every primary failure with fallback. A nil primary uses fallback only.
func WithFallback(primary, fallback Interpreter, timeout time.Duration, log zerolog.Logger) Interpreter {
	if primary == nil {
		return fallback
	}
	return &fallbackChain{
		primary:  primary,
		fallback: fallback,
		timeout:  timeout,
		log:      log,
	}
}

func (c *fallbackChain) Interpret(ctx context.Context, req Request) (*domain.ScenarioAnalysis, error) {
	pctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	analysis, err := c.primary.Interpret(pctx, req)
	if err == nil && analysis != nil {
		return analysis, nil
	}

	c.log.Warn().Err(err).Dur("timeout", c.timeout).Msg("AI scenario analysis unavailable, using fallback")
	return c.fallback.Interpret(ctx, req)
}
