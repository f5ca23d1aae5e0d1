package advisor

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/finpersona/backend/internal/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FallbackAdvisor replies from fixed templates chosen by keyword.
type FallbackAdvisor struct {
	currencySymbol string
}

// NewFallbackAdvisor creates a keyword advisor rendering amounts with currencySymbol.
func NewFallbackAdvisor(currencySymbol string) *FallbackAdvisor {
	if currencySymbol == "" {
		currencySymbol = "₹"
	}
	return &FallbackAdvisor{currencySymbol: currencySymbol}
}

// Reply never fails.
func (f *FallbackAdvisor) Reply(_ context.Context, req Request) (*Reply, error) {
	return &Reply{
		Text:       f.Answer(req.Message, req.Snapshot),
		IsScenario: IsScenarioQuestion(req.Message),
		Source:     domain.SourceFallback,
	}, nil
}

// Answer picks, in order, the what-if, investing, saving or general reply.
func (f *FallbackAdvisor) Answer(msg string, s domain.FinancialSnapshot) string {
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "what if") || strings.Contains(lower, "if i"):
		return fmt.Sprintf(`I can help analyze that scenario! Based on your current financial situation:

• Monthly Income: %s
• Monthly Expenses: %s
• Monthly Surplus: %s

For detailed scenario analysis with month-by-month projections, try the Scenario Simulator.`,
			f.money(s.MonthlyIncome), f.money(s.MonthlyExpenses), f.money(s.Surplus()))

	case strings.Contains(lower, "invest") || strings.Contains(lower, "portfolio"):
		return fmt.Sprintf(`Here are some investment ideas for a balanced approach:

• SIP in equity mutual funds: start with %s-%s monthly
• Balanced funds: a mix of equity and debt for moderate risk
• ELSS funds: tax-saving investments with a 3-year lock-in

With your current surplus of %s/month, investing %s-%s monthly still leaves room for savings.`,
			f.money(5000), f.money(10000), f.money(s.Surplus()),
			f.money(roundTo(s.Surplus()*0.5, 1000)), f.money(roundTo(s.Surplus()*0.8, 1000)))

	case strings.Contains(lower, "save") || strings.Contains(lower, "savings"):
		return fmt.Sprintf(`Here's your current savings picture:

• Savings rate: %s/month (%s of income)
• Current savings: %s
• Emergency cover: %s months of expenses

Optimization tips:
1. Automate your savings on salary day
2. Review and reduce discretionary expenses
3. Consider high-yield savings accounts or FDs`,
			f.money(s.Surplus()), percent(s.Surplus(), s.MonthlyIncome),
			f.money(s.CurrentSavings), monthsCover(s.CurrentSavings, s.MonthlyExpenses))

	default:
		return fmt.Sprintf(`I'm here to help with your financial questions! Based on your profile:

• Monthly Income: %s
• Monthly Surplus: %s

I can help you with:
• Investment ideas
• Savings optimization
• "What if" scenario analysis
• Budget planning and expense management`,
			f.money(s.MonthlyIncome), f.money(s.Surplus()))
	}
}

func (f *FallbackAdvisor) money(v float64) string {
	return f.currencySymbol + printer.Sprint(number.Decimal(math.Round(v)))
}

func roundTo(v, step float64) float64 {
	if v <= 0 {
		return 0
	}
	return math.Round(v/step) * step
}

func percent(part, whole float64) string {
	if whole <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", part/whole*100)
}

func monthsCover(savings, expenses float64) string {
	if expenses <= 0 {
		return "∞"
	}
	return fmt.Sprintf("%.1f", savings/expenses)
}
