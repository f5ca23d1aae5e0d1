package domain

import "time"

// TransactionKind distinguishes money leaving from money arriving.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// DefaultCategory is used for transactions recorded without a category.
const DefaultCategory = "Other"

// Transaction is a single user-recorded movement of money.
type Transaction struct {
	ID             string          `json:"id" firestore:"id"`
	UserID         string          `json:"userId" firestore:"userId"`
	Amount         float64         `json:"amount" firestore:"amount"`
	Category       string          `json:"category" firestore:"category"`
	Description    string          `json:"description" firestore:"description"`
	OccurredAt     time.Time       `json:"occurredAt" firestore:"occurredAt"`
	Kind           TransactionKind `json:"kind" firestore:"kind"`
	AnomalyChecked bool            `json:"anomalyChecked" firestore:"anomalyChecked"`
	ProcessedAt    *time.Time      `json:"processedAt,omitempty" firestore:"processedAt,omitempty"`
	CreatedAt      time.Time       `json:"createdAt" firestore:"createdAt"`
}

// CategoryOrDefault returns the transaction category, or DefaultCategory when empty.
func (t *Transaction) CategoryOrDefault() string {
	return CategoryOrDefault(t.Category)
}

// CategoryOrDefault normalizes an empty category name.
func CategoryOrDefault(category string) string {
	if category == "" {
		return DefaultCategory
	}
	return category
}

// IsValid reports whether k is a known transaction kind.
func (k TransactionKind) IsValid() bool {
	return k == KindExpense || k == KindIncome
}

// TransactionIDs returns the IDs of txs in order.
func TransactionIDs(txs []*Transaction) []string {
	ids := make([]string, 0, len(txs))
	for _, t := range txs {
		ids = append(ids, t.ID)
	}
	return ids
}
