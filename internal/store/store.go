package store

import (
	"context"
	"errors"
	"time"

	"github.com/finpersona/backend/internal/domain"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for all database operations used by the service
type Store interface {
	// Transaction operations
	CreateTransactions(ctx context.Context, txs []*domain.Transaction) error
	// FindTransactions returns the user's transactions that occurred at or after
	// since, oldest first. An empty kind matches every kind.
	FindTransactions(ctx context.Context, userID string, since time.Time, kind domain.TransactionKind) ([]*domain.Transaction, error)
	MarkProcessed(ctx context.Context, ids []string, at time.Time) error
	// DeleteTransaction removes one of the user's transactions. Unknown IDs and
	// IDs owned by another user return ErrNotFound.
	DeleteTransaction(ctx context.Context, userID, id string) error

	// Alert operations
	InsertAlerts(ctx context.Context, alerts []*domain.Alert) error
	// ListAlerts returns alerts created at or after since, newest first.
	ListAlerts(ctx context.Context, userID string, since time.Time) ([]*domain.Alert, error)
	UpdateAlertStatus(ctx context.Context, userID, alertID string, action domain.AlertAction) error

	// Scenario operations
	InsertScenarioRecord(ctx context.Context, record *domain.ScenarioRecord) error
	// ListScenarioRecords returns at most limit records, newest first.
	ListScenarioRecords(ctx context.Context, userID string, limit int) ([]*domain.ScenarioRecord, error)

	// Conversation operations
	InsertConversation(ctx context.Context, conv *domain.Conversation) error
	// ListConversations returns at most limit exchanges, newest first.
	ListConversations(ctx context.Context, userID string, limit int) ([]*domain.Conversation, error)

	// Profile operations
	GetProfile(ctx context.Context, userID string) (*domain.FinancialProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.FinancialProfile) error
}
