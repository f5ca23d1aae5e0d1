package service

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/anomaly"
	"github.com/finpersona/backend/internal/auth"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/google/uuid"
)

// AddTransactions stores a batch and runs anomaly detection over it. The
// baseline history is read before the batch is written.
func (s *InsightService) AddTransactions(ctx context.Context, req *connect.Request[rpc.AddTransactionsRequest]) (*connect.Response[rpc.AddTransactionsResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}
	if len(req.Msg.Transactions) == 0 {
		return nil, invalidArgument("at least one transaction is required")
	}

	txs, err := s.buildTransactions(claims.UID, req.Msg.Transactions, false)
	if err != nil {
		return nil, err
	}

	now := s.now()
	history, err := s.store.FindTransactions(ctx, claims.UID, s.lookbackStart(now), domain.KindExpense)
	if err != nil {
		return nil, auth.WrapStoreError("load transaction history", err)
	}

	for _, t := range txs {
		t.ID = uuid.New().String()
	}
	if err := s.store.CreateTransactions(ctx, txs); err != nil {
		return nil, auth.WrapStoreError("create transactions", err)
	}

	anomalies, err := s.detectAndPersist(ctx, claims.UID, txs, history, now)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&rpc.AddTransactionsResponse{
		InsertedCount: len(txs),
		Transactions:  txs,
		Anomalies:     anomalies,
	}), nil
}

// DetectAnomalies evaluates a batch against the user's baseline. Batch items
// carrying IDs are excluded from the baseline, and those the user owns are
// marked processed afterwards. Repeating a call persists the alerts again.
func (s *InsightService) DetectAnomalies(ctx context.Context, req *connect.Request[rpc.DetectAnomaliesRequest]) (*connect.Response[rpc.DetectAnomaliesResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	txs, err := s.buildTransactions(claims.UID, req.Msg.Transactions, true)
	if err != nil {
		return nil, err
	}

	now := s.now()
	history, err := s.store.FindTransactions(ctx, claims.UID, s.lookbackStart(now), domain.KindExpense)
	if err != nil {
		return nil, auth.WrapStoreError("load transaction history", err)
	}
	history = excludeBatch(history, txs)

	stored, err := s.ownedBatch(ctx, claims.UID, txs)
	if err != nil {
		return nil, err
	}

	patterns := anomaly.AnalyzePatterns(history, now)
	anomalies := s.detector.Detect(txs, patterns)
	if err := s.persist(ctx, claims.UID, anomalies, stored, now); err != nil {
		return nil, err
	}

	return connect.NewResponse(&rpc.DetectAnomaliesResponse{
		Patterns:  nonNil(patterns),
		Anomalies: nonNil(anomalies),
	}), nil
}

// ListTransactions returns the user's transactions newest first with totals.
func (s *InsightService) ListTransactions(ctx context.Context, req *connect.Request[rpc.ListTransactionsRequest]) (*connect.Response[rpc.ListTransactionsResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.FindTransactions(ctx, claims.UID, req.Msg.Since, "")
	if err != nil {
		return nil, auth.WrapStoreError("list transactions", err)
	}

	summary := rpc.TransactionSummary{
		TotalTransactions: len(txs),
		CategoryBreakdown: make(map[string]float64),
	}
	newestFirst := make([]*domain.Transaction, len(txs))
	for i, t := range txs {
		newestFirst[len(txs)-1-i] = t
		switch t.Kind {
		case domain.KindIncome:
			summary.TotalIncome += t.Amount
		default:
			summary.TotalExpenses += t.Amount
			summary.CategoryBreakdown[t.CategoryOrDefault()] += t.Amount
		}
	}
	summary.NetAmount = summary.TotalIncome - summary.TotalExpenses

	return connect.NewResponse(&rpc.ListTransactionsResponse{
		Transactions: newestFirst,
		Summary:      summary,
	}), nil
}

// DeleteTransaction removes one of the caller's transactions. Alerts raised
// from it are kept.
func (s *InsightService) DeleteTransaction(ctx context.Context, req *connect.Request[rpc.DeleteTransactionRequest]) (*connect.Response[rpc.DeleteTransactionResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}
	if req.Msg.TransactionID == "" {
		return nil, invalidArgument("transactionId is required")
	}

	if err := s.store.DeleteTransaction(ctx, claims.UID, req.Msg.TransactionID); err != nil {
		return nil, auth.WrapStoreError("delete transaction", err)
	}

	return connect.NewResponse(&rpc.DeleteTransactionResponse{
		TransactionID: req.Msg.TransactionID,
	}), nil
}

func (s *InsightService) detectAndPersist(ctx context.Context, userID string, batch, history []*domain.Transaction, now time.Time) ([]domain.Anomaly, error) {
	patterns := anomaly.AnalyzePatterns(history, now)
	anomalies := s.detector.Detect(batch, patterns)
	if err := s.persist(ctx, userID, anomalies, batch, now); err != nil {
		return nil, err
	}
	return nonNil(anomalies), nil
}

// persist inserts one alert per anomaly, then marks stored processed. A failure
// between the two writes leaves the alerts in place.
func (s *InsightService) persist(ctx context.Context, userID string, anomalies []domain.Anomaly, stored []*domain.Transaction, now time.Time) error {
	if len(anomalies) > 0 {
		alerts := make([]*domain.Alert, 0, len(anomalies))
		for i, a := range anomalies {
			alert := domain.NewAlert(uuid.New().String(), userID, a, now)
			alert.Seq = i
			alerts = append(alerts, alert)
		}
		if err := s.store.InsertAlerts(ctx, alerts); err != nil {
			return auth.WrapStoreError("insert alerts", err)
		}
	}

	if len(stored) > 0 {
		if err := s.store.MarkProcessed(ctx, domain.TransactionIDs(stored), now); err != nil {
			s.logger(ctx).Error().Err(err).
				Str("user_id", userID).
				Int("alerts", len(anomalies)).
				Msg("alerts stored but transactions not marked processed")
			return auth.WrapStoreError("mark transactions processed", err)
		}
		for _, t := range stored {
			processed := now
			t.AnomalyChecked = true
			t.ProcessedAt = &processed
		}
	}

	s.logger(ctx).Info().
		Str("user_id", userID).
		Int("processed", len(stored)).
		Int("anomalies", len(anomalies)).
		Msg("anomaly detection complete")
	return nil
}

// batchIDs indexes the batch members that reference stored transactions.
func batchIDs(batch []*domain.Transaction) map[string]*domain.Transaction {
	byID := make(map[string]*domain.Transaction, len(batch))
	for _, t := range batch {
		if t.ID != "" {
			byID[t.ID] = t
		}
	}
	return byID
}

// excludeBatch drops batch members from the baseline history.
func excludeBatch(history, batch []*domain.Transaction) []*domain.Transaction {
	byID := batchIDs(batch)
	if len(byID) == 0 {
		return history
	}

	rest := make([]*domain.Transaction, 0, len(history))
	for _, h := range history {
		if _, ok := byID[h.ID]; !ok {
			rest = append(rest, h)
		}
	}
	return rest
}

// ownedBatch returns the batch members stored under userID, whatever their
// kind or age. Only these are marked processed.
func (s *InsightService) ownedBatch(ctx context.Context, userID string, batch []*domain.Transaction) ([]*domain.Transaction, error) {
	byID := batchIDs(batch)
	if len(byID) == 0 {
		return nil, nil
	}

	all, err := s.store.FindTransactions(ctx, userID, time.Time{}, "")
	if err != nil {
		return nil, auth.WrapStoreError("load batch transactions", err)
	}

	var owned []*domain.Transaction
	for _, t := range all {
		if b, ok := byID[t.ID]; ok {
			owned = append(owned, b)
			delete(byID, t.ID)
		}
	}
	return owned, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
