// Package advisor answers free-form money questions about the user's own
// finances, through a language model when one is configured and from canned
// keyword replies otherwise.
package advisor

import (
	"context"
	"strings"
	"time"

	"github.com/finpersona/backend/internal/domain"
	"github.com/rs/zerolog"
)

// historyTurns is how many earlier turns are passed to the model.
const historyTurns = 3

// Request is a single question with its context.
type Request struct {
	Message  string
	History  []domain.ChatTurn
	Snapshot domain.FinancialSnapshot
}

// Reply is the advisor's answer.
type Reply struct {
	Text       string
	IsScenario bool
	Source     domain.AnalysisSource
}

// Advisor answers questions.
type Advisor interface {
	Reply(ctx context.Context, req Request) (*Reply, error)
}

// IsScenarioQuestion reports whether msg asks a what-if question.
func IsScenarioQuestion(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "what if") ||
		strings.Contains(lower, "if i") ||
		strings.Contains(lower, "suppose")
}

type fallbackChain struct {
	primary  Advisor
	fallback Advisor
	timeout  time.Duration
	log      zerolog.Logger
}

// WithFallback bounds primary by timeout and answers from fallback whenever
// primary fails. A nil primary uses fallback only.
func WithFallback(primary, fallback Advisor, timeout time.Duration, log zerolog.Logger) Advisor {
	if primary == nil {
		return fallback
	}
	return &fallbackChain{primary: primary, fallback: fallback, timeout: timeout, log: log}
}

func (c *fallbackChain) Reply(ctx context.Context, req Request) (*Reply, error) {
	pctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		pctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reply, err := c.primary.Reply(pctx, req)
	if err == nil && reply != nil {
		return reply, nil
	}

	c.log.Warn().Err(err).Dur("timeout", c.timeout).Msg("AI advisor unavailable, using fallback replies")
	return c.fallback.Reply(ctx, req)
}
