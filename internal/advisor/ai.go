package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/llm"
	"github.com/rs/zerolog"
)

// ErrEmptyReply is returned when the model answers with no text.
var ErrEmptyReply = errors.New("advisor: empty model reply")

const profileTemplate = `You are the user's AI financial twin. You know their financial situation and goals.

User's Financial Profile:
- Monthly Income: %[1]s%.0[2]f
- Monthly Expenses: %[1]s%.0[3]f
- Monthly Surplus: %[1]s%.0[4]f
- Current Savings: %[1]s%.0[5]f
`

const scenarioInstructions = `
User's scenario question: %q

Provide a financial analysis of this scenario. Include:
1. Immediate financial impact
2. Long-term implications
3. Specific recommendations
4. Alternative approaches
5. Risk assessment

If the scenario needs a detailed projection, suggest the Scenario Simulator.
Keep the response conversational, personalized and actionable. Format amounts with %s.`

const generalInstructions = `
User's question: %q

Give personalized financial advice using their actual numbers. Be specific and actionable.
Keep the response conversational and under 150 words. Format amounts with %s.`

// AIAdvisor answers with a text-generation model.
type AIAdvisor struct {
	gen            llm.Generator
	currencySymbol string
	log            zerolog.Logger
}

// NewAIAdvisor creates an advisor backed by gen.
func NewAIAdvisor(gen llm.Generator, currencySymbol string, log zerolog.Logger) *AIAdvisor {
	if currencySymbol == "" {
		currencySymbol = "₹"
	}
	return &AIAdvisor{gen: gen, currencySymbol: currencySymbol, log: log}
}

func (a *AIAdvisor) Reply(ctx context.Context, req Request) (*Reply, error) {
	scenario := IsScenarioQuestion(req.Message)
	start := time.Now()

	text, err := a.gen.Generate(ctx, BuildPrompt(req, a.currencySymbol))
	if err != nil {
		return nil, fmt.Errorf("advisor: generate reply: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyReply
	}

	a.log.Info().
		Bool("is_scenario", scenario).
		Dur("duration", time.Since(start)).
		Msg("AI advisor reply complete")

	return &Reply{Text: text, IsScenario: scenario, Source: domain.SourceAI}, nil
}

// BuildPrompt renders the profile, the last few turns and the question.
func BuildPrompt(req Request, currencySymbol string) string {
	s := req.Snapshot

	var b strings.Builder
	fmt.Fprintf(&b, profileTemplate, currencySymbol, s.MonthlyIncome, s.MonthlyExpenses, s.Surplus(), s.CurrentSavings)

	history := req.History
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	if len(history) > 0 {
		b.WriteString("\nRecent conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Message)
		}
	}

	if IsScenarioQuestion(req.Message) {
		fmt.Fprintf(&b, scenarioInstructions, req.Message, currencySymbol)
	} else {
		fmt.Fprintf(&b, generalInstructions, req.Message, currencySymbol)
	}
	return b.String()
}
