package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/advisor"
	"github.com/finpersona/backend/internal/anomaly"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/finpersona/backend/internal/scenario"
	"github.com/finpersona/backend/internal/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// recordingAdvisor captures requests and answers with a fixed reply.
type recordingAdvisor struct {
	requests []advisor.Request
	err      error
}

func (r *recordingAdvisor) Reply(ctx context.Context, req advisor.Request) (*advisor.Reply, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &advisor.Reply{Text: "noted", Source: domain.SourceAI}, nil
}

func newChatService(st store.Store, adv advisor.Advisor) *InsightService {
	svc := NewInsightService(st, anomaly.NewDetector(anomaly.DefaultConfig()), scenario.NewFallbackInterpreter("₹"), adv, Config{}, zerolog.Nop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestChat_FallbackReply(t *testing.T) {
	memStore := store.NewMemoryStore()
	svc := newTestService(memStore)
	ctx := testContextWithUser("user-1")

	resp, err := svc.Chat(ctx, connect.NewRequest(&rpc.ChatRequest{Message: " How can I <b>save</b> more? "}))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Msg.ConversationID)
	assert.Contains(t, resp.Msg.Response, "Savings rate: ₹15,000/month (30% of income)")
	assert.False(t, resp.Msg.IsScenario)
	assert.Equal(t, domain.SourceFallback, resp.Msg.Source)

	convs, err := memStore.ListConversations(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "How can I save more?", convs[0].Message)
	assert.Equal(t, resp.Msg.Response, convs[0].Response)
	assert.Equal(t, testNow, convs[0].CreatedAt)
}

func TestChat_ScenarioQuestion(t *testing.T) {
	svc := newTestService(store.NewMemoryStore())

	resp, err := svc.Chat(testContextWithUser("user-1"), connect.NewRequest(&rpc.ChatRequest{Message: "What if I move cities?"}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.IsScenario)
	assert.Contains(t, resp.Msg.Response, "Scenario Simulator")
}

func TestChat_HistoryFromStore(t *testing.T) {
	memStore := store.NewMemoryStore()
	adv := &recordingAdvisor{}
	svc := newChatService(memStore, adv)
	ctx := testContextWithUser("user-1")

	for i, msg := range []string{"one", "two", "three", "four"} {
		require.NoError(t, memStore.InsertConversation(ctx, &domain.Conversation{
			UserID: "user-1", Message: msg, Response: "re " + msg,
			CreatedAt: testNow.Add(time.Duration(i-10) * time.Minute),
		}))
	}

	_, err := svc.Chat(ctx, connect.NewRequest(&rpc.ChatRequest{Message: "and now?"}))
	require.NoError(t, err)

	require.Len(t, adv.requests, 1)
	got := adv.requests[0]
	assert.Equal(t, "and now?", got.Message)
	assert.Equal(t, DefaultConfig().DefaultSnapshot, got.Snapshot)
	assert.Equal(t, []domain.ChatTurn{
		{Role: "user", Message: "two"}, {Role: "assistant", Message: "re two"},
		{Role: "user", Message: "three"}, {Role: "assistant", Message: "re three"},
		{Role: "user", Message: "four"}, {Role: "assistant", Message: "re four"},
	}, got.History)
}

func TestChat_ClientHistorySkipsStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockStore := store.NewMockStore(ctrl)
	adv := &recordingAdvisor{}
	svc := newChatService(mockStore, adv)

	mockStore.EXPECT().GetProfile(gomock.Any(), "user-1").Return(&domain.FinancialProfile{
		UserID:            "user-1",
		FinancialSnapshot: domain.FinancialSnapshot{MonthlyIncome: 90000},
	}, nil)
	mockStore.EXPECT().InsertConversation(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Chat(testContextWithUser("user-1"), connect.NewRequest(&rpc.ChatRequest{
		Message: "thoughts?",
		History: []domain.ChatTurn{
			{Role: "user", Message: "<i>hi</i>"},
			{Role: "assistant", Message: "   "},
		},
	}))
	require.NoError(t, err)

	require.Len(t, adv.requests, 1)
	assert.Equal(t, []domain.ChatTurn{{Role: "user", Message: "hi"}}, adv.requests[0].History)
	assert.Equal(t, domain.FinancialSnapshot{MonthlyIncome: 90000, MonthlyExpenses: 35000, CurrentSavings: 200000}, adv.requests[0].Snapshot)
}

func TestChat_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := newTestService(store.NewMockStore(ctrl))
	ctx := testContextWithUser("user-1")

	tests := []struct {
		name string
		req  *rpc.ChatRequest
	}{
		{"empty message", &rpc.ChatRequest{Message: "  "}},
		{"markup only", &rpc.ChatRequest{Message: "<script>x</script>"}},
		{"message too long", &rpc.ChatRequest{Message: strings.Repeat("a", maxMessageLen+1)}},
		{"too much history", &rpc.ChatRequest{Message: "hi", History: make([]domain.ChatTurn, maxHistoryTurns+1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Chat(ctx, connect.NewRequest(tt.req))
			assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
		})
	}
}

func TestChat_Failures(t *testing.T) {
	t.Run("advisor error", func(t *testing.T) {
		svc := newChatService(store.NewMemoryStore(), &recordingAdvisor{err: errors.New("down")})
		_, err := svc.Chat(testContextWithUser("user-1"), connect.NewRequest(&rpc.ChatRequest{Message: "hi"}))
		assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	})

	t.Run("history read error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newChatService(mockStore, &recordingAdvisor{})

		mockStore.EXPECT().GetProfile(gomock.Any(), "user-1").Return(nil, store.ErrNotFound)
		mockStore.EXPECT().ListConversations(gomock.Any(), "user-1", 3).Return(nil, errors.New("unavailable"))

		_, err := svc.Chat(testContextWithUser("user-1"), connect.NewRequest(&rpc.ChatRequest{Message: "hi"}))
		assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	})

	t.Run("save error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockStore := store.NewMockStore(ctrl)
		svc := newChatService(mockStore, &recordingAdvisor{})

		mockStore.EXPECT().GetProfile(gomock.Any(), "user-1").Return(nil, store.ErrNotFound)
		mockStore.EXPECT().ListConversations(gomock.Any(), "user-1", 3).Return(nil, nil)
		mockStore.EXPECT().InsertConversation(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := svc.Chat(testContextWithUser("user-1"), connect.NewRequest(&rpc.ChatRequest{Message: "hi"}))
		assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
	})
}
