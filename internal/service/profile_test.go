package service

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/finpersona/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGetFinancialProfile(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(m *store.MockStore)
		wantDefault bool
		wantIncome  float64
		wantCode    connect.Code
	}{
		{
			name: "stored profile",
			setup: func(m *store.MockStore) {
				m.EXPECT().GetProfile(gomock.Any(), "user-1").Return(&domain.FinancialProfile{
					UserID:            "user-1",
					FinancialSnapshot: domain.FinancialSnapshot{MonthlyIncome: 90000, MonthlyExpenses: 45000, CurrentSavings: 1},
				}, nil)
			},
			wantIncome: 90000,
		},
		{
			name: "stored zero income reads as default",
			setup: func(m *store.MockStore) {
				m.EXPECT().GetProfile(gomock.Any(), "user-1").Return(&domain.FinancialProfile{
					UserID:            "user-1",
					FinancialSnapshot: domain.FinancialSnapshot{MonthlyExpenses: 45000, CurrentSavings: 1},
				}, nil)
			},
			wantIncome: 50000,
		},
		{
			name: "no profile yet",
			setup: func(m *store.MockStore) {
				m.EXPECT().GetProfile(gomock.Any(), "user-1").Return(nil, store.ErrNotFound)
			},
			wantDefault: true,
			wantIncome:  50000,
		},
		{
			name: "store failure",
			setup: func(m *store.MockStore) {
				m.EXPECT().GetProfile(gomock.Any(), "user-1").Return(nil, errors.New("unavailable"))
			},
			wantCode: connect.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockStore := store.NewMockStore(ctrl)
			tt.setup(mockStore)
			svc := newTestService(mockStore)

			resp, err := svc.GetFinancialProfile(testContextWithUser("user-1"), connect.NewRequest(&rpc.GetFinancialProfileRequest{}))
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDefault, resp.Msg.IsDefault)
			assert.Equal(t, "user-1", resp.Msg.Profile.UserID)
			assert.Equal(t, tt.wantIncome, resp.Msg.Profile.MonthlyIncome)
		})
	}
}

func TestUpdateFinancialProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	snapshot := domain.FinancialSnapshot{MonthlyIncome: 120000, MonthlyExpenses: 70000, CurrentSavings: 0}
	mockStore.EXPECT().
		UpsertProfile(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, p *domain.FinancialProfile) error {
			assert.Equal(t, "user-1", p.UserID)
			assert.Equal(t, snapshot, p.FinancialSnapshot)
			assert.Equal(t, testNow, p.UpdatedAt)
			return nil
		})

	resp, err := svc.UpdateFinancialProfile(testContextWithUser("user-1"), connect.NewRequest(&rpc.UpdateFinancialProfileRequest{
		UserID:   "user-1",
		Snapshot: snapshot,
	}))
	require.NoError(t, err)
	assert.Equal(t, snapshot, resp.Msg.Profile.FinancialSnapshot)
}

func TestUpdateFinancialProfile_RejectsInvalidSnapshot(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	svc := newTestService(mockStore)

	for _, snap := range []domain.FinancialSnapshot{
		{MonthlyIncome: -1},
		{MonthlyExpenses: -10},
		{CurrentSavings: -0.5},
	} {
		_, err := svc.UpdateFinancialProfile(testContextWithUser("user-1"), connect.NewRequest(&rpc.UpdateFinancialProfileRequest{Snapshot: snap}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	}
}

func TestFinancialProfile_RoundTrip(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())
	ctx := testContextWithUser("user-1")

	snapshot := domain.FinancialSnapshot{MonthlyIncome: 75000, MonthlyExpenses: 50000, CurrentSavings: 250000}
	_, err := svc.UpdateFinancialProfile(ctx, connect.NewRequest(&rpc.UpdateFinancialProfileRequest{Snapshot: snapshot}))
	require.NoError(t, err)

	resp, err := svc.GetFinancialProfile(ctx, connect.NewRequest(&rpc.GetFinancialProfileRequest{}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.IsDefault)
	assert.Equal(t, snapshot, resp.Msg.Profile.FinancialSnapshot)
	assert.Equal(t, testNow, resp.Msg.Profile.UpdatedAt)
}
