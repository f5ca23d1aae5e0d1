package scenario

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/finpersona/backend/internal/domain"
)

const promptTemplate = `You are a financial advisor AI. Analyze this financial scenario and provide structured data for simulation.

User's Current Financial Status:
- Monthly Income: %[1]s%.0[2]f
- Monthly Expenses: %[1]s%.0[3]f
- Current Savings: %[1]s%.0[4]f
- Monthly Surplus: %[1]s%.0[5]f

Scenario: %[6]q
Timeframe: %[7]d months

Please analyze this scenario and respond with a JSON object containing:
{
  "scenarioType": "expense" | "income_change" | "investment" | "goal" | "general",
  "impact": {
    "oneTimeExpense": number (if applicable),
    "monthlyIncomeChange": number (if applicable),
    "monthlyExpenseChange": number (if applicable),
    "duration": number (months the change lasts)
  },
  "description": "Brief description of the scenario",
  "riskLevel": "low" | "medium" | "high",
  "recommendations": ["recommendation1", "recommendation2", "recommendation3"]
}

Examples:
- "Buy a car worth %[1]s10L" -> oneTimeExpense: 1000000
- "Quit job for 6 months" -> monthlyIncomeChange: -%.0[2]f, duration: 6
- "Reduce rent by %[1]s5000" -> monthlyExpenseChange: -5000

Respond only with valid JSON.`

// BuildPrompt renders the advisor prompt for req.
func BuildPrompt(req Request, currencySymbol string) string {
	s := req.Snapshot
	return fmt.Sprintf(promptTemplate,
		currencySymbol,
		s.MonthlyIncome,
		s.MonthlyExpenses,
		s.CurrentSavings,
		s.Surplus(),
		req.Scenario,
		req.Timeframe,
	)
}

// modelImpact mirrors domain.ScenarioImpact with a numeric duration, since
// models write months as 6 or 6.0 alike.
type modelImpact struct {
	OneTimeExpense       float64 `json:"oneTimeExpense"`
	MonthlyIncomeChange  float64 `json:"monthlyIncomeChange"`
	MonthlyExpenseChange float64 `json:"monthlyExpenseChange"`
	Duration             float64 `json:"duration"`
}

// toImpact converts the duration, rejecting negative and fractional values.
func (m modelImpact) toImpact() (domain.ScenarioImpact, error) {
	d := m.Duration
	if d < 0 || d != math.Trunc(d) || d > math.MaxInt32 {
		return domain.ScenarioImpact{}, malformed(fmt.Sprintf("duration %v is not a whole number of months", d), nil)
	}
	return domain.ScenarioImpact{
		OneTimeExpense:       m.OneTimeExpense,
		MonthlyIncomeChange:  m.MonthlyIncomeChange,
		MonthlyExpenseChange: m.MonthlyExpenseChange,
		Duration:             int(d),
	}, nil
}

// modelAnalysis accepts both the nested impact object and flat impact fields.
type modelAnalysis struct {
	ScenarioType    domain.ScenarioType `json:"scenarioType"`
	Impact          *modelImpact        `json:"impact"`
	Description     string              `json:"description"`
	RiskLevel       domain.RiskLevel    `json:"riskLevel"`
	Recommendations []string            `json:"recommendations"`

	modelImpact
}

// ParseAnalysis decodes and validates a model response. Any failure is a
// non-retryable InterpretError with code ErrAIMalformedResponse.
func ParseAnalysis(raw string) (*domain.ScenarioAnalysis, error) {
	clean := cleanModelJSON(raw)

	var m modelAnalysis
	if err := json.Unmarshal([]byte(clean), &m); err != nil {
		return nil, malformed("response is not valid JSON", err)
	}

	if m.ScenarioType == "" {
		m.ScenarioType = domain.ScenarioGeneral
	}
	if !m.ScenarioType.IsValid() {
		return nil, malformed(fmt.Sprintf("unknown scenarioType %q", m.ScenarioType), nil)
	}
	if !m.RiskLevel.IsValid() {
		return nil, malformed(fmt.Sprintf("unknown riskLevel %q", m.RiskLevel), nil)
	}

	mi := m.modelImpact
	if m.Impact != nil {
		mi = *m.Impact
	}
	impact, err := mi.toImpact()
	if err != nil {
		return nil, err
	}

	recs := m.Recommendations
	if recs == nil {
		recs = []string{}
	}

	return &domain.ScenarioAnalysis{
		ScenarioType:    m.ScenarioType,
		Impact:          impact,
		Description:     strings.TrimSpace(m.Description),
		RiskLevel:       m.RiskLevel,
		Recommendations: recs,
	}, nil
}

func malformed(msg string, cause error) error {
	return &InterpretError{
		Code:      ErrAIMalformedResponse,
		Message:   msg,
		Retryable: false,
		Cause:     cause,
	}
}

// cleanModelJSON strips markdown code fences and surrounding chatter so only
// the JSON object remains.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = s[start : end+1]
		}
	}

	return s
}
