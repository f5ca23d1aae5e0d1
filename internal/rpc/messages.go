package rpc

import (
	"time"

	"github.com/finpersona/backend/internal/domain"
)

// TransactionInput is a submitted transaction. ID is set only when the
// transaction already exists in the store.
type TransactionInput struct {
	ID          string                 `json:"id,omitempty"`
	Amount      float64                `json:"amount"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	OccurredAt  time.Time              `json:"occurredAt"`
	Kind        domain.TransactionKind `json:"kind"`
}

type AddTransactionsRequest struct {
	UserID       string             `json:"userId,omitempty"`
	Transactions []TransactionInput `json:"transactions"`
}

type AddTransactionsResponse struct {
	InsertedCount int                   `json:"insertedCount"`
	Transactions  []*domain.Transaction `json:"transactions"`
	Anomalies     []domain.Anomaly      `json:"anomalies"`
}

type DetectAnomaliesRequest struct {
	UserID       string             `json:"userId,omitempty"`
	Transactions []TransactionInput `json:"transactions"`
}

type DetectAnomaliesResponse struct {
	Patterns  []domain.SpendingPattern `json:"patterns"`
	Anomalies []domain.Anomaly         `json:"anomalies"`
}

type ListTransactionsRequest struct {
	UserID string `json:"userId,omitempty"`
	// Since bounds the listing; zero lists everything.
	Since time.Time `json:"since,omitzero"`
}

// TransactionSummary totals a transaction listing.
type TransactionSummary struct {
	TotalTransactions int                `json:"totalTransactions"`
	TotalExpenses     float64            `json:"totalExpenses"`
	TotalIncome       float64            `json:"totalIncome"`
	NetAmount         float64            `json:"netAmount"`
	CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
}

type ListTransactionsResponse struct {
	Transactions []*domain.Transaction `json:"transactions"`
	Summary      TransactionSummary    `json:"summary"`
}

type DeleteTransactionRequest struct {
	UserID        string `json:"userId,omitempty"`
	TransactionID string `json:"transactionId"`
}

type DeleteTransactionResponse struct {
	TransactionID string `json:"transactionId"`
}

type ListAlertsRequest struct {
	UserID string `json:"userId,omitempty"`
}

type ListAlertsResponse struct {
	Alerts []*domain.Alert `json:"alerts"`
}

type UpdateAlertRequest struct {
	UserID  string             `json:"userId,omitempty"`
	AlertID string             `json:"alertId"`
	Action  domain.AlertAction `json:"action"`
}

type UpdateAlertResponse struct {
	AlertID string             `json:"alertId"`
	Action  domain.AlertAction `json:"action"`
}

type SimulateScenarioRequest struct {
	UserID   string `json:"userId,omitempty"`
	Scenario string `json:"scenario"`
	// Timeframe is in months; zero selects the default.
	Timeframe int `json:"timeframe,omitempty"`
	// Snapshot overrides the stored financial profile.
	Snapshot *domain.FinancialSnapshot `json:"snapshot,omitempty"`
}

type SimulateScenarioResponse struct {
	ScenarioID string                   `json:"scenarioId"`
	Snapshot   domain.FinancialSnapshot `json:"snapshot"`
	Analysis   domain.ScenarioAnalysis  `json:"analysis"`
	Simulation domain.SimulationResult  `json:"simulation"`
}

type ListScenariosRequest struct {
	UserID string `json:"userId,omitempty"`
}

type ListScenariosResponse struct {
	Scenarios []domain.ScenarioSummary `json:"scenarios"`
}

type GetFinancialProfileRequest struct {
	UserID string `json:"userId,omitempty"`
}

type GetFinancialProfileResponse struct {
	Profile *domain.FinancialProfile `json:"profile"`
	// IsDefault is true when no profile is stored and defaults were returned.
	IsDefault bool `json:"isDefault"`
}

type UpdateFinancialProfileRequest struct {
	UserID   string                   `json:"userId,omitempty"`
	Snapshot domain.FinancialSnapshot `json:"snapshot"`
}

type UpdateFinancialProfileResponse struct {
	Profile *domain.FinancialProfile `json:"profile"`
}

type ChatRequest struct {
	UserID  string `json:"userId,omitempty"`
	Message string `json:"message"`
	// History is the client's view of recent turns. When empty the stored
	// conversation is used.
	History []domain.ChatTurn `json:"history,omitempty"`
}

type ChatResponse struct {
	ConversationID string                `json:"conversationId"`
	Response       string                `json:"response"`
	IsScenario     bool                  `json:"isScenario"`
	Source         domain.AnalysisSource `json:"source"`
}
