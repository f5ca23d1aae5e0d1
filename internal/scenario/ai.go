package scenario

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/llm"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// AIInterpreter asks a text-generation model to interpret scenarios.
type AIInterpreter struct {
	gen            llm.Generator
	backoff        Backoff
	cache          *cache.Cache
	currencySymbol string
	log            zerolog.Logger
}

// AIOption configures an AIInterpreter.
type AIOption func(*AIInterpreter)

// WithBackoff overrides DefaultBackoff.
func WithBackoff(b Backoff) AIOption {
	return func(a *AIInterpreter) { a.backoff = b }
}

// WithCacheTTL caches successful analyses for ttl. Zero disables caching.
func WithCacheTTL(ttl time.Duration) AIOption {
	return func(a *AIInterpreter) {
		if ttl <= 0 {
			a.cache = nil
			return
		}
		a.cache = cache.New(ttl, 2*ttl)
	}
}

// WithCurrencySymbol sets the symbol used in the prompt.
func WithCurrencySymbol(symbol string) AIOption {
	return func(a *AIInterpreter) { a.currencySymbol = symbol }
}

// NewAIInterpreter creates an interpreter backed by gen.
func NewAIInterpreter(gen llm.Generator, log zerolog.Logger, opts ...AIOption) *AIInterpreter {
	a := &AIInterpreter{
		gen:            gen,
		backoff:        DefaultBackoff,
		cache:          cache.New(10*time.Minute, 20*time.Minute),
		currencySymbol: "₹",
		log:            log,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Interpret returns the model's analysis, or an InterpretError when the model
// is unreachable, too slow, or answers with something that is not a valid analysis.
func (a *AIInterpreter) Interpret(ctx context.Context, req Request) (*domain.ScenarioAnalysis, error) {
	key := cacheKey(req)
	if a.cache != nil {
		if v, ok := a.cache.Get(key); ok {
			a.log.Debug().Str("scenario", req.Scenario).Msg("scenario analysis cache hit")
			return cloneAnalysis(v.(*domain.ScenarioAnalysis)), nil
		}
	}

	prompt := BuildPrompt(req, a.currencySymbol)
	start := time.Now()

	analysis, err := withBackoff(ctx, a.backoff, func(ctx context.Context) (*domain.ScenarioAnalysis, error) {
		text, err := a.gen.Generate(ctx, prompt)
		if err != nil {
			return nil, classifyGenerateError(ctx, err)
		}
		return ParseAnalysis(text)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, classifyGenerateError(ctx, err)
		}
		return nil, err
	}
	analysis.Source = domain.SourceAI

	a.log.Info().
		Str("scenario_type", string(analysis.ScenarioType)).
		Str("risk_level", string(analysis.RiskLevel)).
		Dur("duration", time.Since(start)).
		Msg("AI scenario analysis complete")

	if a.cache != nil {
		a.cache.Set(key, cloneAnalysis(analysis), cache.DefaultExpiration)
	}
	return analysis, nil
}

func classifyGenerateError(ctx context.Context, err error) error {
	var ierr *InterpretError
	if errors.As(err, &ierr) {
		return err
	}
	if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
		return &InterpretError{Code: ErrAITimeout, Message: "model call timed out", Cause: err}
	}
	return &InterpretError{
		Code:      ErrAIUnavailable,
		Message:   "model call failed",
		Retryable: !errors.Is(err, llm.ErrPermanent),
		Cause:     err,
	}
}

func cacheKey(req Request) string {
	s := req.Snapshot
	return fmt.Sprintf("%s|%.2f|%.2f|%.2f|%d",
		strings.ToLower(strings.TrimSpace(req.Scenario)),
		s.MonthlyIncome, s.MonthlyExpenses, s.CurrentSavings, req.Timeframe)
}

func cloneAnalysis(a *domain.ScenarioAnalysis) *domain.ScenarioAnalysis {
	cp := *a
	cp.Recommendations = make([]string, len(a.Recommendations))
	copy(cp.Recommendations, a.Recommendations)
	return &cp
}
