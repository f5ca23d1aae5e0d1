package service

import (
	"context"
	"fmt"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/advisor"
	"github.com/finpersona/backend/internal/auth"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/google/uuid"
)

// Chat answers a money question against the caller's financial snapshot and
// stores the exchange.
func (s *InsightService) Chat(ctx context.Context, req *connect.Request[rpc.ChatRequest]) (*connect.Response[rpc.ChatResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	message := sanitizeText(req.Msg.Message)
	if message == "" {
		return nil, invalidArgument("message is required")
	}
	if len(message) > maxMessageLen {
		return nil, invalidArgument("message longer than %d characters", maxMessageLen)
	}
	if len(req.Msg.History) > maxHistoryTurns {
		return nil, invalidArgument("at most %d history turns, got %d", maxHistoryTurns, len(req.Msg.History))
	}

	snapshot, err := s.resolveSnapshot(ctx, claims.UID, nil)
	if err != nil {
		return nil, err
	}

	history, err := s.chatHistory(ctx, claims.UID, req.Msg.History)
	if err != nil {
		return nil, err
	}

	reply, err := s.advisor.Reply(ctx, advisor.Request{
		Message:  message,
		History:  history,
		Snapshot: snapshot,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to answer: %w", err))
	}

	conv := &domain.Conversation{
		ID:         uuid.New().String(),
		UserID:     claims.UID,
		Message:    message,
		Response:   reply.Text,
		IsScenario: reply.IsScenario,
		Source:     reply.Source,
		CreatedAt:  s.now(),
	}
	if err := s.store.InsertConversation(ctx, conv); err != nil {
		return nil, auth.WrapStoreError("save conversation", err)
	}

	s.logger(ctx).Info().
		Str("user_id", claims.UID).
		Str("source", string(reply.Source)).
		Bool("is_scenario", reply.IsScenario).
		Msg("advisor reply sent")

	return connect.NewResponse(&rpc.ChatResponse{
		ConversationID: conv.ID,
		Response:       conv.Response,
		IsScenario:     conv.IsScenario,
		Source:         conv.Source,
	}), nil
}

// chatHistory sanitizes the client's turns, or rebuilds turns oldest first
// from stored exchanges when the client sent none.
func (s *InsightService) chatHistory(ctx context.Context, userID string, sent []domain.ChatTurn) ([]domain.ChatTurn, error) {
	if len(sent) > 0 {
		turns := make([]domain.ChatTurn, 0, len(sent))
		for _, t := range sent {
			if msg := sanitizeText(t.Message); msg != "" {
				turns = append(turns, domain.ChatTurn{Role: sanitizeText(t.Role), Message: msg})
			}
		}
		return turns, nil
	}

	convs, err := s.store.ListConversations(ctx, userID, s.cfg.ChatHistoryLimit)
	if err != nil {
		return nil, auth.WrapStoreError("load conversation history", err)
	}
	turns := make([]domain.ChatTurn, 0, 2*len(convs))
	for i := len(convs) - 1; i >= 0; i-- {
		turns = append(turns,
			domain.ChatTurn{Role: "user", Message: convs[i].Message},
			domain.ChatTurn{Role: "assistant", Message: convs[i].Response},
		)
	}
	return turns, nil
}
