package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/finpersona/backend/internal/domain"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	transactionsCollection  = "transactions"
	alertsCollection        = "spending_alerts"
	scenariosCollection     = "scenario_simulations"
	profilesCollection      = "financial_profiles"
	conversationsCollection = "conversations"

	// Firestore caps a write batch at 500 operations.
	maxBatchWrites = 500
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// commitInChunks applies write to every item, committing a batch each maxBatchWrites items.
func commitInChunks[T any](ctx context.Context, client *firestore.Client, items []T, write func(*firestore.WriteBatch, T)) error {
	for start := 0; start < len(items); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(items) {
			end = len(items)
		}
		batch := client.Batch()
		for _, item := range items[start:end] {
			write(batch, item)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *FirestoreStore) CreateTransactions(ctx context.Context, txs []*domain.Transaction) error {
	for _, t := range txs {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
	}
	err := commitInChunks(ctx, s.client, txs, func(b *firestore.WriteBatch, t *domain.Transaction) {
		b.Set(s.client.Collection(transactionsCollection).Doc(t.ID), t)
	})
	if err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}
	return nil
}

func (s *FirestoreStore) FindTransactions(ctx context.Context, userID string, since time.Time, kind domain.TransactionKind) ([]*domain.Transaction, error) {
	query := s.client.Collection(transactionsCollection).
		Where("userId", "==", userID).
		Where("occurredAt", ">=", since)
	if kind != "" {
		query = query.Where("kind", "==", string(kind))
	}
	query = query.OrderBy("occurredAt", firestore.Asc)

	iter := query.Documents(ctx)
	defer iter.Stop()

	var result []*domain.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to find transactions: %w", err)
		}
		var t domain.Transaction
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("failed to parse transaction: %w", err)
		}
		result = append(result, &t)
	}
	return result, nil
}

func (s *FirestoreStore) MarkProcessed(ctx context.Context, ids []string, at time.Time) error {
	err := commitInChunks(ctx, s.client, ids, func(b *firestore.WriteBatch, id string) {
		b.Update(s.client.Collection(transactionsCollection).Doc(id), []firestore.Update{
			{Path: "anomalyChecked", Value: true},
			{Path: "processedAt", Value: at},
		})
	})
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("failed to mark transactions processed: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to mark transactions processed: %w", err)
	}
	return nil
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	ref := s.client.Collection(transactionsCollection).Doc(id)

	doc, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get transaction: %w", err)
	}
	if owner, _ := doc.DataAt("userId"); owner != userID {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}

	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return nil
}

func (s *FirestoreStore) InsertAlerts(ctx context.Context, alerts []*domain.Alert) error {
	for _, a := range alerts {
		if a.ID == "" {
			a.ID = uuid.New().String()
		}
	}
	err := commitInChunks(ctx, s.client, alerts, func(b *firestore.WriteBatch, a *domain.Alert) {
		b.Set(s.client.Collection(alertsCollection).Doc(a.ID), a)
	})
	if err != nil {
		return fmt.Errorf("failed to insert alerts: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListAlerts(ctx context.Context, userID string, since time.Time) ([]*domain.Alert, error) {
	docs, err := s.client.Collection(alertsCollection).
		Where("userId", "==", userID).
		Where("createdAt", ">=", since).
		OrderBy("createdAt", firestore.Desc).
		OrderBy("seq", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	result := make([]*domain.Alert, 0, len(docs))
	for _, doc := range docs {
		var a domain.Alert
		if err := doc.DataTo(&a); err != nil {
			return nil, fmt.Errorf("failed to parse alert: %w", err)
		}
		result = append(result, &a)
	}
	return result, nil
}

func (s *FirestoreStore) UpdateAlertStatus(ctx context.Context, userID, alertID string, action domain.AlertAction) error {
	ref := s.client.Collection(alertsCollection).Doc(alertID)

	doc, err := ref.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to get alert: %w", err)
	}
	if owner, _ := doc.DataAt("userId"); owner != userID {
		return fmt.Errorf("alert %s: %w", alertID, ErrNotFound)
	}

	var update firestore.Update
	switch action {
	case domain.AlertActionRead:
		update = firestore.Update{Path: "read", Value: true}
	case domain.AlertActionDismiss:
		update = firestore.Update{Path: "dismissed", Value: true}
	default:
		return fmt.Errorf("unknown alert action %q", action)
	}

	if _, err := ref.Update(ctx, []firestore.Update{update}); err != nil {
		return fmt.Errorf("failed to update alert: %w", err)
	}
	return nil
}

func (s *FirestoreStore) InsertScenarioRecord(ctx context.Context, record *domain.ScenarioRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	_, err := s.client.Collection(scenariosCollection).Doc(record.ID).Set(ctx, record)
	return err
}

func (s *FirestoreStore) ListScenarioRecords(ctx context.Context, userID string, limit int) ([]*domain.ScenarioRecord, error) {
	query := s.client.Collection(scenariosCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list scenario records: %w", err)
	}

	result := make([]*domain.ScenarioRecord, 0, len(docs))
	for _, doc := range docs {
		var r domain.ScenarioRecord
		if err := doc.DataTo(&r); err != nil {
			return nil, fmt.Errorf("failed to parse scenario record: %w", err)
		}
		result = append(result, &r)
	}
	return result, nil
}

func (s *FirestoreStore) InsertConversation(ctx context.Context, conv *domain.Conversation) error {
	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	_, err := s.client.Collection(conversationsCollection).Doc(conv.ID).Set(ctx, conv)
	return err
}

func (s *FirestoreStore) ListConversations(ctx context.Context, userID string, limit int) ([]*domain.Conversation, error) {
	query := s.client.Collection(conversationsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	result := make([]*domain.Conversation, 0, len(docs))
	for _, doc := range docs {
		var c domain.Conversation
		if err := doc.DataTo(&c); err != nil {
			return nil, fmt.Errorf("failed to parse conversation: %w", err)
		}
		result = append(result, &c)
	}
	return result, nil
}

func (s *FirestoreStore) GetProfile(ctx context.Context, userID string) (*domain.FinancialProfile, error) {
	doc, err := s.client.Collection(profilesCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	var p domain.FinancialProfile
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}
	return &p, nil
}

func (s *FirestoreStore) UpsertProfile(ctx context.Context, profile *domain.FinancialProfile) error {
	_, err := s.client.Collection(profilesCollection).Doc(profile.UserID).Set(ctx, profile)
	return err
}
