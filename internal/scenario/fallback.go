package scenario

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/finpersona/backend/internal/domain"
)

const lakh = 100000

var (
	lakhPattern   = regexp.MustCompile(`(\d+)l`)
	monthsPattern = regexp.MustCompile(`(\d+)\s*month`)
	amountPattern = regexp.MustCompile(`₹?(\d+)`)
)

// FallbackInterpreter is the deterministic keyword interpreter used offline
// and whenever the AI interpreter fails. Its output is fixed for a given input.
type FallbackInterpreter struct {
	currencySymbol string
}

// NewFallbackInterpreter creates a keyword interpreter rendering amounts with currencySymbol.
func NewFallbackInterpreter(currencySymbol string) *FallbackInterpreter {
	if currencySymbol == "" {
		currencySymbol = "₹"
	}
	return &FallbackInterpreter{currencySymbol: currencySymbol}
}

// Interpret never fails.
func (f *FallbackInterpreter) Interpret(_ context.Context, req Request) (*domain.ScenarioAnalysis, error) {
	return f.Analyze(req.Scenario, req.Snapshot), nil
}

// Analyze matches the lowercased scenario against, in order: a car purchase
// in lakhs, leaving a job, a rent change, and finally a general scenario.
func (f *FallbackInterpreter) Analyze(scenario string, snapshot domain.FinancialSnapshot) *domain.ScenarioAnalysis {
	lower := strings.ToLower(scenario)

	if strings.Contains(lower, "car") {
		if m := lakhPattern.FindStringSubmatch(lower); m != nil {
			return f.carPurchase(float64(atoi(m[1], 0))*lakh, snapshot)
		}
	}

	if strings.Contains(lower, "quit") || strings.Contains(lower, "job") {
		months := 6
		if m := monthsPattern.FindStringSubmatch(lower); m != nil {
			months = atoi(m[1], 6)
		}
		return f.careerBreak(months, snapshot)
	}

	if strings.Contains(lower, "rent") {
		if m := amountPattern.FindStringSubmatch(lower); m != nil {
			reduce := strings.Contains(lower, "reduce") || strings.Contains(lower, "save")
			return f.rentChange(float64(atoi(m[1], 0)), reduce)
		}
	}

	return &domain.ScenarioAnalysis{
		ScenarioType: domain.ScenarioGeneral,
		Impact:       domain.ScenarioImpact{Duration: 12},
		Description:  "Custom financial scenario analysis",
		RiskLevel:    domain.RiskMedium,
		Recommendations: []string{
			"Review your current budget and savings rate",
			"Consider the long-term impact on your financial goals",
			"Monitor your progress and adjust as needed",
		},
		Source: domain.SourceFallback,
	}
}

func (f *FallbackInterpreter) carPurchase(amount float64, snapshot domain.FinancialSnapshot) *domain.ScenarioAnalysis {
	risk := domain.RiskMedium
	if amount > snapshot.CurrentSavings {
		risk = domain.RiskHigh
	}
	return &domain.ScenarioAnalysis{
		ScenarioType: domain.ScenarioExpense,
		Impact:       domain.ScenarioImpact{OneTimeExpense: amount, Duration: 1},
		Description:  fmt.Sprintf("Purchasing a car worth %s%.1fL", f.currencySymbol, amount/lakh),
		RiskLevel:    risk,
		Recommendations: []string{
			"Consider the impact on your emergency fund",
			"Explore financing options to preserve cash flow",
			"Factor in ongoing maintenance and insurance costs",
		},
		Source: domain.SourceFallback,
	}
}

func (f *FallbackInterpreter) careerBreak(months int, snapshot domain.FinancialSnapshot) *domain.ScenarioAnalysis {
	return &domain.ScenarioAnalysis{
		ScenarioType: domain.ScenarioIncomeChange,
		Impact: domain.ScenarioImpact{
			MonthlyIncomeChange: -snapshot.MonthlyIncome,
			Duration:            months,
		},
		Description: fmt.Sprintf("Taking a career break for %d months", months),
		RiskLevel:   domain.RiskHigh,
		Recommendations: []string{
			"Build an emergency fund covering 6-12 months of expenses",
			"Consider part-time or freelance income during the break",
			"Plan for health insurance and other benefits",
		},
		Source: domain.SourceFallback,
	}
}

func (f *FallbackInterpreter) rentChange(amount float64, reduce bool) *domain.ScenarioAnalysis {
	change, verb, first := amount, "Increasing", "Ensure the increase fits your budget"
	if reduce {
		change, verb, first = -amount, "Reducing", "Use the savings to boost your emergency fund"
	}
	return &domain.ScenarioAnalysis{
		ScenarioType: domain.ScenarioExpense,
		Impact:       domain.ScenarioImpact{MonthlyExpenseChange: change, Duration: 12},
		Description:  fmt.Sprintf("%s monthly rent by %s%.0f", verb, f.currencySymbol, amount),
		RiskLevel:    domain.RiskLow,
		Recommendations: []string{
			first,
			"Consider the long-term impact on your savings goals",
			"Factor in any moving costs if relocating",
		},
		Source: domain.SourceFallback,
	}
}

// atoi parses a run of digits, returning def when it does not fit an int.
func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
