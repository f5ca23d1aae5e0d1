package domain

import "time"

// ScenarioType classifies a what-if scenario.
type ScenarioType string

const (
	ScenarioExpense      ScenarioType = "expense"
	ScenarioIncomeChange ScenarioType = "income_change"
	ScenarioInvestment   ScenarioType = "investment"
	ScenarioGoal         ScenarioType = "goal"
	ScenarioGeneral      ScenarioType = "general"
)

// IsValid reports whether t is a known scenario type.
func (t ScenarioType) IsValid() bool {
	switch t {
	case ScenarioExpense, ScenarioIncomeChange, ScenarioInvestment, ScenarioGoal, ScenarioGeneral:
		return true
	}
	return false
}

// RiskLevel is the coarse risk rating attached to a scenario.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// IsValid reports whether r is a known risk level.
func (r RiskLevel) IsValid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// AnalysisSource records which interpreter produced an analysis.
type AnalysisSource string

const (
	SourceAI       AnalysisSource = "ai"
	SourceFallback AnalysisSource = "fallback"
)

// FinancialSnapshot is the user's current monthly position.
type FinancialSnapshot struct {
	MonthlyIncome   float64 `json:"monthlyIncome" firestore:"monthlyIncome"`
	MonthlyExpenses float64 `json:"monthlyExpenses" firestore:"monthlyExpenses"`
	CurrentSavings  float64 `json:"currentSavings" firestore:"currentSavings"`
}

// Surplus is monthly income minus monthly expenses.
func (s FinancialSnapshot) Surplus() float64 {
	return s.MonthlyIncome - s.MonthlyExpenses
}

// IsZero reports whether no field has been set.
func (s FinancialSnapshot) IsZero() bool {
	return s.MonthlyIncome == 0 && s.MonthlyExpenses == 0 && s.CurrentSavings == 0
}

// FinancialProfile is the stored snapshot for a user.
type FinancialProfile struct {
	FinancialSnapshot

	UserID    string    `json:"userId" firestore:"userId"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// ScenarioImpact is the quantified effect of a scenario.
// Duration is in months; zero or less means the whole projection.
type ScenarioImpact struct {
	OneTimeExpense       float64 `json:"oneTimeExpense" firestore:"oneTimeExpense"`
	MonthlyIncomeChange  float64 `json:"monthlyIncomeChange" firestore:"monthlyIncomeChange"`
	MonthlyExpenseChange float64 `json:"monthlyExpenseChange" firestore:"monthlyExpenseChange"`
	Duration             int     `json:"duration" firestore:"duration"`
}

// ScenarioAnalysis is the structured interpretation of a scenario.
type ScenarioAnalysis struct {
	ScenarioType    ScenarioType   `json:"scenarioType" firestore:"scenarioType"`
	Impact          ScenarioImpact `json:"impact" firestore:"impact"`
	Description     string         `json:"description" firestore:"description"`
	RiskLevel       RiskLevel      `json:"riskLevel" firestore:"riskLevel"`
	Recommendations []string       `json:"recommendations" firestore:"recommendations"`
	Source          AnalysisSource `json:"source,omitempty" firestore:"source,omitempty"`
}

// MonthlyPoint is one month of a projection.
type MonthlyPoint struct {
	Month     int     `json:"month" firestore:"month"`
	Balance   float64 `json:"balance" firestore:"balance"`
	Income    float64 `json:"income" firestore:"income"`
	Expenses  float64 `json:"expenses" firestore:"expenses"`
	NetChange float64 `json:"netChange" firestore:"netChange"`
	Date      string  `json:"date" firestore:"date"`
}

// SimulationSummary aggregates a projection.
type SimulationSummary struct {
	InitialBalance       float64   `json:"initialBalance" firestore:"initialBalance"`
	FinalBalance         float64   `json:"finalBalance" firestore:"finalBalance"`
	TotalChange          float64   `json:"totalChange" firestore:"totalChange"`
	AverageMonthlyChange float64   `json:"averageMonthlyChange" firestore:"averageMonthlyChange"`
	RiskLevel            RiskLevel `json:"riskLevel" firestore:"riskLevel"`
	Feasible             bool      `json:"feasible" firestore:"feasible"`
}

// SimulationResult is a month-by-month balance projection.
type SimulationResult struct {
	MonthlyData []MonthlyPoint    `json:"monthlyData" firestore:"monthlyData"`
	Summary     SimulationSummary `json:"summary" firestore:"summary"`
}

// ScenarioRecord is a persisted scenario run.
type ScenarioRecord struct {
	ID         string           `json:"id" firestore:"id"`
	UserID     string           `json:"userId" firestore:"userId"`
	Scenario   string           `json:"scenario" firestore:"scenario"`
	Timeframe  int              `json:"timeframe" firestore:"timeframe"`
	Analysis   ScenarioAnalysis `json:"analysis" firestore:"analysis"`
	Simulation SimulationResult `json:"simulation" firestore:"simulation"`
	CreatedAt  time.Time        `json:"createdAt" firestore:"createdAt"`
}

// ScenarioSummary is the history listing view of a record.
type ScenarioSummary struct {
	ID          string    `json:"id"`
	Scenario    string    `json:"scenario"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	Feasible    bool      `json:"feasible"`
	TotalChange float64   `json:"totalChange"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Summary projects a record into its history view.
func (r *ScenarioRecord) Summary() ScenarioSummary {
	return ScenarioSummary{
		ID:          r.ID,
		Scenario:    r.Scenario,
		RiskLevel:   r.Analysis.RiskLevel,
		Feasible:    r.Simulation.Summary.Feasible,
		TotalChange: r.Simulation.Summary.TotalChange,
		CreatedAt:   r.CreatedAt,
	}
}
