package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/finpersona/backend/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	transactions map[string]*domain.Transaction
	alerts       map[string]*domain.Alert
	scenarios    map[string]*domain.ScenarioRecord
	profiles     map[string]*domain.FinancialProfile
	chats        map[string]*domain.Conversation
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string]*domain.Transaction),
		alerts:       make(map[string]*domain.Alert),
		scenarios:    make(map[string]*domain.ScenarioRecord),
		profiles:     make(map[string]*domain.FinancialProfile),
		chats:        make(map[string]*domain.Conversation),
	}
}

// CreateTransactions stores copies of txs, assigning IDs where missing.
func (m *MemoryStore) CreateTransactions(ctx context.Context, txs []*domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		cp := *t
		m.transactions[t.ID] = &cp
	}
	return nil
}

func (m *MemoryStore) FindTransactions(ctx context.Context, userID string, since time.Time, kind domain.TransactionKind) ([]*domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Transaction
	for _, t := range m.transactions {
		if t.UserID != userID || t.OccurredAt.Before(since) {
			continue
		}
		if kind != "" && t.Kind != kind {
			continue
		}
		cp := *t
		result = append(result, &cp)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].OccurredAt.Equal(result[j].OccurredAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].OccurredAt.Before(result[j].OccurredAt)
	})
	return result, nil
}

func (m *MemoryStore) MarkProcessed(ctx context.Context, ids []string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range ids {
		t, ok := m.transactions[id]
		if !ok {
			return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
		}
		processed := at
		t.AnomalyChecked = true
		t.ProcessedAt = &processed
	}
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.transactions[id]
	if !ok || t.UserID != userID {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	delete(m.transactions, id)
	return nil
}

func (m *MemoryStore) InsertAlerts(ctx context.Context, alerts []*domain.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
		cp := *a
		m.alerts[a.ID] = &cp
	}
	return nil
}

func (m *MemoryStore) ListAlerts(ctx context.Context, userID string, since time.Time) ([]*domain.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Alert
	for _, a := range m.alerts {
		if a.UserID == userID && !a.CreatedAt.Before(since) {
			cp := *a
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Seq < result[j].Seq
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *MemoryStore) UpdateAlertStatus(ctx context.Context, userID, alertID string, action domain.AlertAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.alerts[alertID]
	if !ok || a.UserID != userID {
		return fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}
	a.Apply(action)
	return nil
}

func (m *MemoryStore) InsertScenarioRecord(ctx context.Context, record *domain.ScenarioRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	cp := *record
	m.scenarios[record.ID] = &cp
	return nil
}

func (m *MemoryStore) ListScenarioRecords(ctx context.Context, userID string, limit int) ([]*domain.ScenarioRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.ScenarioRecord
	for _, r := range m.scenarios {
		if r.UserID == userID {
			cp := *r
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) InsertConversation(ctx context.Context, conv *domain.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	cp := *conv
	m.chats[conv.ID] = &cp
	return nil
}

func (m *MemoryStore) ListConversations(ctx context.Context, userID string, limit int) ([]*domain.Conversation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Conversation
	for _, c := range m.chats {
		if c.UserID == userID {
			cp := *c
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MemoryStore) GetProfile(ctx context.Context, userID string) (*domain.FinancialProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) UpsertProfile(ctx context.Context, profile *domain.FinancialProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}
