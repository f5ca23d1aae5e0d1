package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/finpersona/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 10, 0, 0, 0, time.UTC)
}

// spikeHistory is eight quiet weeks of Food spending at 100 followed by
// 600 in the current week.
func spikeHistory(userID string) []*domain.Transaction {
	var txs []*domain.Transaction
	for i, at := range []time.Time{
		day(1, 8), day(1, 15), day(1, 22), day(1, 29),
		day(2, 5), day(2, 12), day(2, 19), day(2, 26),
	} {
		txs = append(txs, &domain.Transaction{
			ID: "h" + string(rune('a'+i)), UserID: userID, Amount: 100, Category: "Food",
			OccurredAt: at, Kind: domain.KindExpense,
		})
	}
	for i, d := range []int{10, 11, 12} {
		txs = append(txs, &domain.Transaction{
			ID: "c" + string(rune('a'+i)), UserID: userID, Amount: 200, Category: "Food",
			OccurredAt: day(3, d), Kind: domain.KindExpense,
		})
	}
	return txs
}

func TestAddTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)
	ctx := testContextWithUser("user-1")

	req := &rpc.AddTransactionsRequest{
		Transactions: []rpc.TransactionInput{
			{Amount: 2000, Category: "Food", Description: "<b>Dinner party</b>", OccurredAt: day(3, 14)},
			{Amount: 80000, Category: "Salary", Description: "March pay", OccurredAt: day(3, 14), Kind: domain.KindIncome},
		},
	}

	gomock.InOrder(
		mockStore.EXPECT().
			FindTransactions(gomock.Any(), "user-1", testNow.AddDate(0, 0, -90), domain.KindExpense).
			Return(spikeHistory("user-1"), nil),
		mockStore.EXPECT().
			CreateTransactions(gomock.Any(), gomock.Len(2)).
			DoAndReturn(func(_ context.Context, txs []*domain.Transaction) error {
				for _, tx := range txs {
					assert.NotEmpty(t, tx.ID)
					assert.Equal(t, "user-1", tx.UserID)
					assert.False(t, tx.AnomalyChecked)
				}
				assert.Equal(t, "Dinner party", txs[0].Description)
				assert.Equal(t, domain.KindExpense, txs[0].Kind)
				assert.Equal(t, domain.KindIncome, txs[1].Kind)
				return nil
			}),
		mockStore.EXPECT().
			InsertAlerts(gomock.Any(), gomock.Len(2)).
			DoAndReturn(func(_ context.Context, alerts []*domain.Alert) error {
				for i, a := range alerts {
					assert.Equal(t, i, a.Seq)
					assert.NotEmpty(t, a.ID)
					assert.Equal(t, "user-1", a.UserID)
					assert.Equal(t, domain.AlertTypeSpendingAnomaly, a.Type)
					assert.Equal(t, testNow, a.CreatedAt)
				}
				return nil
			}),
		mockStore.EXPECT().
			MarkProcessed(gomock.Any(), gomock.Len(2), testNow).
			Return(nil),
	)

	resp, err := svc.AddTransactions(ctx, connect.NewRequest(req))
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Msg.InsertedCount)
	require.Len(t, resp.Msg.Anomalies, 2)
	assert.Equal(t, domain.AnomalySpendingSpike, resp.Msg.Anomalies[0].Kind)
	assert.Equal(t, domain.SeverityHigh, resp.Msg.Anomalies[0].Severity)
	assert.Equal(t, domain.AnomalyLargeTransaction, resp.Msg.Anomalies[1].Kind)
	assert.Equal(t, "Dinner party", resp.Msg.Anomalies[1].Transaction)

	for _, tx := range resp.Msg.Transactions {
		assert.True(t, tx.AnomalyChecked)
		require.NotNil(t, tx.ProcessedAt)
		assert.Equal(t, testNow, *tx.ProcessedAt)
	}
}

func TestAddTransactions_NoAnomalies(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	gomock.InOrder(
		mockStore.EXPECT().FindTransactions(gomock.Any(), "user-1", gomock.Any(), domain.KindExpense).Return(nil, nil),
		mockStore.EXPECT().CreateTransactions(gomock.Any(), gomock.Len(1)).Return(nil),
		mockStore.EXPECT().MarkProcessed(gomock.Any(), gomock.Len(1), testNow).Return(nil),
	)

	resp, err := svc.AddTransactions(testContextWithUser("user-1"), connect.NewRequest(&rpc.AddTransactionsRequest{
		Transactions: []rpc.TransactionInput{{Amount: 40, Category: ""}},
	}))
	require.NoError(t, err)
	assert.NotNil(t, resp.Msg.Anomalies)
	assert.Empty(t, resp.Msg.Anomalies)
	assert.Equal(t, domain.DefaultCategory, resp.Msg.Transactions[0].Category)
	assert.Equal(t, testNow, resp.Msg.Transactions[0].OccurredAt)
}

func TestAddTransactions_AlertsListedInDetectionOrder(t *testing.T) {
	memStore := store.NewMemoryStore()
	svc := newTestService(memStore)
	ctx := testContextWithUser("user-1")

	require.NoError(t, memStore.CreateTransactions(ctx, spikeHistory("user-1")))

	resp, err := svc.AddTransactions(ctx, connect.NewRequest(&rpc.AddTransactionsRequest{
		Transactions: []rpc.TransactionInput{{Amount: 2000, Category: "Food", Description: "Dinner party", OccurredAt: day(3, 14)}},
	}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Anomalies, 2)

	alerts, err := svc.ListAlerts(ctx, connect.NewRequest(&rpc.ListAlertsRequest{}))
	require.NoError(t, err)
	require.Len(t, alerts.Msg.Alerts, 2)
	assert.Equal(t, domain.AnomalySpendingSpike, alerts.Msg.Alerts[0].Kind)
	assert.Equal(t, domain.AnomalyLargeTransaction, alerts.Msg.Alerts[1].Kind)
}

func TestAddTransactions_StoreFailures(t *testing.T) {
	input := &rpc.AddTransactionsRequest{
		Transactions: []rpc.TransactionInput{{Amount: 2000, Category: "Food", OccurredAt: day(3, 14)}},
	}

	t.Run("history read fails before any write", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		mockStore.EXPECT().FindTransactions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

		_, err := svc.AddTransactions(testContextWithUser("user-1"), connect.NewRequest(input))
		assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
		assert.Contains(t, err.Error(), "failed to load transaction history")
	})

	t.Run("mark processed fails after alerts are stored", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newTestService(mockStore)

		gomock.InOrder(
			mockStore.EXPECT().FindTransactions(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(spikeHistory("user-1"), nil),
			mockStore.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(nil),
			mockStore.EXPECT().InsertAlerts(gomock.Any(), gomock.Any()).Return(nil),
			mockStore.EXPECT().MarkProcessed(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("timeout")),
		)

		_, err := svc.AddTransactions(testContextWithUser("user-1"), connect.NewRequest(input))
		assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
		assert.Contains(t, err.Error(), "failed to mark transactions processed")
	})
}

func TestAddTransactions_ValidationBeforeStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	// No expectations: any store call fails the test.
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)
	ctx := testContextWithUser("user-1")

	tooMany := make([]rpc.TransactionInput, maxBatchSize+1)

	tests := []struct {
		name    string
		txs     []rpc.TransactionInput
		wantErr string
	}{
		{"empty batch", nil, "at least one transaction"},
		{"too many", tooMany, "at most 500 transactions"},
		{"negative amount", []rpc.TransactionInput{{Amount: -1}}, "amount must be a non-negative number"},
		{"NaN amount", []rpc.TransactionInput{{Amount: math.NaN()}}, "amount must be a non-negative number"},
		{"infinite amount", []rpc.TransactionInput{{Amount: math.Inf(1)}}, "amount must be a non-negative number"},
		{"unknown kind", []rpc.TransactionInput{{Amount: 1, Kind: "transfer"}}, "unknown kind"},
		{"long category", []rpc.TransactionInput{{Amount: 1, Category: strings.Repeat("x", maxCategoryLen+1)}}, "category longer"},
		{"long description", []rpc.TransactionInput{{Amount: 1, Description: strings.Repeat("x", maxDescriptionLen+1)}}, "description longer"},
		{"client supplied id", []rpc.TransactionInput{{ID: "t1", Amount: 1}}, "id must not be set"},
		{"second item invalid", []rpc.TransactionInput{{Amount: 1}, {Amount: -5}}, "transactions[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTransactions(ctx, connect.NewRequest(&rpc.AddTransactionsRequest{Transactions: tt.txs}))
			require.Error(t, err)
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDetectAnomalies_DuplicateAlertsOnRepeat(t *testing.T) {
	memStore := store.NewMemoryStore()
	svc := newTestService(memStore)
	ctx := testContextWithUser("user-1")

	require.NoError(t, memStore.CreateTransactions(ctx, spikeHistory("user-1")[:8]))

	req := &rpc.DetectAnomaliesRequest{
		Transactions: []rpc.TransactionInput{{Amount: 2500, Category: "Food", Description: "Banquet", OccurredAt: day(3, 14)}},
	}

	for i := 0; i < 2; i++ {
		resp, err := svc.DetectAnomalies(ctx, connect.NewRequest(req))
		require.NoError(t, err)
		require.Len(t, resp.Msg.Anomalies, 1)
		assert.Equal(t, domain.AnomalyLargeTransaction, resp.Msg.Anomalies[0].Kind)
	}

	alerts, err := svc.ListAlerts(ctx, connect.NewRequest(&rpc.ListAlertsRequest{}))
	require.NoError(t, err)
	require.Len(t, alerts.Msg.Alerts, 2)
	assert.NotEqual(t, alerts.Msg.Alerts[0].ID, alerts.Msg.Alerts[1].ID)
	assert.Equal(t, alerts.Msg.Alerts[0].Message, alerts.Msg.Alerts[1].Message)
}

func TestDetectAnomalies_StoredBatchExcludedFromBaseline(t *testing.T) {
	memStore := store.NewMemoryStore()
	svc := newTestService(memStore)
	ctx := testContextWithUser("user-1")

	history := spikeHistory("user-1")[:8]
	batchTx := &domain.Transaction{
		ID: "new-1", UserID: "user-1", Amount: 3000, Category: "Food",
		Description: "Catering", OccurredAt: day(3, 13), Kind: domain.KindExpense,
	}
	require.NoError(t, memStore.CreateTransactions(ctx, append(history, batchTx)))

	resp, err := svc.DetectAnomalies(ctx, connect.NewRequest(&rpc.DetectAnomaliesRequest{
		Transactions: []rpc.TransactionInput{{
			ID: "new-1", Amount: 3000, Category: "Food", Description: "Catering", OccurredAt: day(3, 13),
		}},
	}))
	require.NoError(t, err)

	require.Len(t, resp.Msg.Patterns, 1)
	assert.Equal(t, 0.0, resp.Msg.Patterns[0].CurrentWeekSpend)
	assert.Equal(t, 100.0, resp.Msg.Patterns[0].WeeklyAverage)
	require.Len(t, resp.Msg.Anomalies, 1)
	assert.Equal(t, domain.AnomalyLargeTransaction, resp.Msg.Anomalies[0].Kind)

	stored, err := memStore.FindTransactions(ctx, "user-1", day(3, 13), "")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].AnomalyChecked)
	require.NotNil(t, stored[0].ProcessedAt)
	assert.Equal(t, testNow, *stored[0].ProcessedAt)

	others, err := memStore.FindTransactions(ctx, "user-1", day(1, 1), "")
	require.NoError(t, err)
	for _, tx := range others {
		if tx.ID != "new-1" {
			assert.False(t, tx.AnomalyChecked, tx.ID)
		}
	}
}

func TestDetectAnomalies_MarksOwnRowsOfAnyKindOrAge(t *testing.T) {
	memStore := store.NewMemoryStore()
	svc := newTestService(memStore)
	ctx := testContextWithUser("user-1")

	old := testNow.AddDate(0, 0, -120)
	require.NoError(t, memStore.CreateTransactions(ctx, []*domain.Transaction{
		{ID: "inc1", UserID: "user-1", Amount: 80000, Category: "Salary", OccurredAt: day(3, 1), Kind: domain.KindIncome},
		{ID: "old1", UserID: "user-1", Amount: 400, Category: "Food", OccurredAt: old, Kind: domain.KindExpense},
		{ID: "theirs", UserID: "user-2", Amount: 50, Category: "Food", OccurredAt: day(3, 1), Kind: domain.KindExpense},
	}))

	_, err := svc.DetectAnomalies(ctx, connect.NewRequest(&rpc.DetectAnomaliesRequest{
		Transactions: []rpc.TransactionInput{
			{ID: "inc1", Amount: 80000, Category: "Salary", OccurredAt: day(3, 1), Kind: domain.KindIncome},
			{ID: "old1", Amount: 400, Category: "Food", OccurredAt: old},
			{ID: "theirs", Amount: 50, Category: "Food", OccurredAt: day(3, 1)},
		},
	}))
	require.NoError(t, err)

	mine, err := memStore.FindTransactions(ctx, "user-1", time.Time{}, "")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, tx := range mine {
		assert.True(t, tx.AnomalyChecked, tx.ID)
		require.NotNil(t, tx.ProcessedAt, tx.ID)
	}

	theirs, err := memStore.FindTransactions(ctx, "user-2", time.Time{}, "")
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.False(t, theirs[0].AnomalyChecked)
}

func TestDetectAnomalies_EmptyBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	mockStore.EXPECT().FindTransactions(gomock.Any(), "user-1", gomock.Any(), domain.KindExpense).Return(spikeHistory("user-1"), nil)
	mockStore.EXPECT().InsertAlerts(gomock.Any(), gomock.Len(1)).Return(nil)

	resp, err := svc.DetectAnomalies(testContextWithUser("user-1"), connect.NewRequest(&rpc.DetectAnomaliesRequest{}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Anomalies, 1)
	assert.Equal(t, domain.AnomalySpendingSpike, resp.Msg.Anomalies[0].Kind)
	assert.Equal(t, 600.0, resp.Msg.Patterns[0].CurrentWeekSpend)
}

func TestListTransactions(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	mockStore.EXPECT().
		FindTransactions(gomock.Any(), "user-1", time.Time{}, domain.TransactionKind("")).
		Return([]*domain.Transaction{
			{ID: "1", Amount: 100, Category: "Food", Kind: domain.KindExpense, OccurredAt: day(3, 1)},
			{ID: "2", Amount: 5000, Category: "Salary", Kind: domain.KindIncome, OccurredAt: day(3, 2)},
			{ID: "3", Amount: 250, Category: "Food", Kind: domain.KindExpense, OccurredAt: day(3, 3)},
			{ID: "4", Amount: 50, Category: "", Kind: domain.KindExpense, OccurredAt: day(3, 4)},
		}, nil)

	resp, err := svc.ListTransactions(testContextWithUser("user-1"), connect.NewRequest(&rpc.ListTransactionsRequest{}))
	require.NoError(t, err)

	assert.Equal(t, []string{"4", "3", "2", "1"}, domain.TransactionIDs(resp.Msg.Transactions))
	summary := resp.Msg.Summary
	assert.Equal(t, 4, summary.TotalTransactions)
	assert.Equal(t, 400.0, summary.TotalExpenses)
	assert.Equal(t, 5000.0, summary.TotalIncome)
	assert.Equal(t, 4600.0, summary.NetAmount)
	assert.Equal(t, map[string]float64{"Food": 350, "Other": 50}, summary.CategoryBreakdown)
}

func TestDeleteTransaction(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)
	ctx := testContextWithUser("user-1")

	t.Run("deletes own transaction", func(t *testing.T) {
		mockStore.EXPECT().DeleteTransaction(gomock.Any(), "user-1", "t1").Return(nil)

		resp, err := svc.DeleteTransaction(ctx, connect.NewRequest(&rpc.DeleteTransactionRequest{TransactionID: "t1"}))
		require.NoError(t, err)
		assert.Equal(t, "t1", resp.Msg.TransactionID)
	})

	t.Run("unknown or foreign id is not found", func(t *testing.T) {
		mockStore.EXPECT().DeleteTransaction(gomock.Any(), "user-1", "t2").Return(fmt.Errorf("transaction t2: %w", store.ErrNotFound))

		_, err := svc.DeleteTransaction(ctx, connect.NewRequest(&rpc.DeleteTransactionRequest{TransactionID: "t2"}))
		assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
	})

	t.Run("id is required", func(t *testing.T) {
		_, err := svc.DeleteTransaction(ctx, connect.NewRequest(&rpc.DeleteTransactionRequest{}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Groceries ", "Groceries"},
		{"<script>alert(1)</script>Lunch", "Lunch"},
		{"<b>Bold</b> move", "Bold move"},
		{"Food & Drink", "Food & Drink"},
		{"&lt;img src=x onerror=alert(1)&gt;Cab", "Cab"},
		{"₹500 rent", "₹500 rent"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeText(tt.in))
		})
	}
}
