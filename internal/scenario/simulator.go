package scenario

import (
	"math"
	"time"

	"github.com/finpersona/backend/internal/domain"
)

// daysPerMonth approximates a calendar month for projection dates.
const daysPerMonth = 30

// Simulate projects the snapshot's balance month by month under analysis.
//
// The result has timeframe+1 points, month 0 through timeframe. The income
// change applies while month <= duration, where a non-positive duration
// spans the whole timeframe. The expense change applies every month and the
// one-time expense lands only at month 1. Dates are UTC calendar days.
func Simulate(snapshot domain.FinancialSnapshot, analysis *domain.ScenarioAnalysis, timeframe int, today time.Time) (*domain.SimulationResult, error) {
	if timeframe < 1 {
		return nil, ErrInvalidTimeframe
	}

	var impact domain.ScenarioImpact
	var risk domain.RiskLevel
	if analysis != nil {
		impact = analysis.Impact
		risk = analysis.RiskLevel
	}

	duration := impact.Duration
	if duration <= 0 {
		duration = timeframe
	}

	start := today.UTC()
	balance := snapshot.CurrentSavings
	points := make([]domain.MonthlyPoint, 0, timeframe+1)

	for month := 0; month <= timeframe; month++ {
		income := snapshot.MonthlyIncome
		if month <= duration {
			income += impact.MonthlyIncomeChange
		}
		expenses := snapshot.MonthlyExpenses + impact.MonthlyExpenseChange

		var oneTime float64
		if month == 1 {
			oneTime = impact.OneTimeExpense
		}

		net := income - expenses - oneTime
		balance += net

		points = append(points, domain.MonthlyPoint{
			Month:     month,
			Balance:   roundHalfUp(balance),
			Income:    income,
			Expenses:  expenses + oneTime,
			NetChange: net,
			Date:      start.AddDate(0, 0, month*daysPerMonth).Format("2006-01-02"),
		})
	}

	final := points[len(points)-1].Balance
	total := final - snapshot.CurrentSavings

	return &domain.SimulationResult{
		MonthlyData: points,
		Summary: domain.SimulationSummary{
			InitialBalance:       snapshot.CurrentSavings,
			FinalBalance:         final,
			TotalChange:          total,
			AverageMonthlyChange: roundHalfUp(total / float64(timeframe)),
			RiskLevel:            risk,
			Feasible:             final > 0,
		},
	}, nil
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
