package domain

import "time"

// Severity ranks how far an anomaly is from normal behaviour.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AnomalyKind identifies which rule produced an anomaly.
type AnomalyKind string

const (
	AnomalySpendingSpike    AnomalyKind = "spending_spike"
	AnomalyLargeTransaction AnomalyKind = "large_transaction"
)

// AlertTypeSpendingAnomaly is the only alert type emitted by the detector.
const AlertTypeSpendingAnomaly = "spending_anomaly"

// AlertAction is a user action on a stored alert.
type AlertAction string

const (
	AlertActionRead    AlertAction = "read"
	AlertActionDismiss AlertAction = "dismiss"
)

// IsValid reports whether a is a known alert action.
func (a AlertAction) IsValid() bool {
	return a == AlertActionRead || a == AlertActionDismiss
}

// SpendingPattern is the per-category baseline derived from history.
// It is computed per request and never persisted.
type SpendingPattern struct {
	Category          string  `json:"category"`
	WeeklyAverage     float64 `json:"weeklyAverage"`
	MonthlyAverage    float64 `json:"monthlyAverage"`
	StandardDeviation float64 `json:"standardDeviation"`
	CurrentWeekSpend  float64 `json:"currentWeekSpend"`
	LastWeekSpend     float64 `json:"lastWeekSpend"`
}

// Anomaly is a single detector finding.
type Anomaly struct {
	Kind        AnomalyKind `json:"kind" firestore:"kind"`
	Category    string      `json:"category" firestore:"category"`
	Amount      float64     `json:"amount" firestore:"amount"`
	NormalRange string      `json:"normalRange" firestore:"normalRange"`
	Severity    Severity    `json:"severity" firestore:"severity"`
	Message     string      `json:"message" firestore:"message"`
	// Multiplier is set for spending spikes only.
	Multiplier float64 `json:"multiplier,omitempty" firestore:"multiplier,omitempty"`
	// Transaction holds the offending description for large transactions.
	Transaction string `json:"transaction,omitempty" firestore:"transaction,omitempty"`
}

// Alert is a persisted anomaly addressed to a user.
type Alert struct {
	Anomaly

	ID        string    `json:"id" firestore:"id"`
	UserID    string    `json:"userId" firestore:"userId"`
	Type      string    `json:"type" firestore:"type"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	// Seq is the alert's position within its detection run; alerts of one run
	// share CreatedAt.
	Seq       int       `json:"seq" firestore:"seq"`
	Read      bool      `json:"read" firestore:"read"`
	Dismissed bool      `json:"dismissed" firestore:"dismissed"`
}

// NewAlert wraps an anomaly into an unread alert for userID.
func NewAlert(id, userID string, a Anomaly, now time.Time) *Alert {
	return &Alert{
		Anomaly:   a,
		ID:        id,
		UserID:    userID,
		Type:      AlertTypeSpendingAnomaly,
		CreatedAt: now,
	}
}

// Apply mutates the alert status for action.
func (a *Alert) Apply(action AlertAction) {
	switch action {
	case AlertActionRead:
		a.Read = true
	case AlertActionDismiss:
		a.Dismissed = true
	}
}
