package service

import (
	"fmt"
	"html"
	"math"
	"strings"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxBatchSize      = 500
	maxCategoryLen    = 64
	maxDescriptionLen = 256
	maxScenarioLen    = 1000
	maxMessageLen     = 2000
	maxHistoryTurns   = 20
)

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText strips HTML and returns plain text. Entities are decoded on both
// sides of the policy so encoded tags are stripped too.
func sanitizeText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(html.UnescapeString(s))))
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func validAmount(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

// buildTransactions validates a submitted batch and converts it to domain
// transactions owned by userID. allowIDs permits references to stored transactions.
func (s *InsightService) buildTransactions(userID string, inputs []rpc.TransactionInput, allowIDs bool) ([]*domain.Transaction, error) {
	if len(inputs) > maxBatchSize {
		return nil, invalidArgument("at most %d transactions per request, got %d", maxBatchSize, len(inputs))
	}

	now := s.now()
	txs := make([]*domain.Transaction, 0, len(inputs))
	for i, in := range inputs {
		if in.ID != "" && !allowIDs {
			return nil, invalidArgument("transactions[%d]: id must not be set", i)
		}
		if !validAmount(in.Amount) {
			return nil, invalidArgument("transactions[%d]: amount must be a non-negative number", i)
		}

		kind := in.Kind
		if kind == "" {
			kind = domain.KindExpense
		}
		if !kind.IsValid() {
			return nil, invalidArgument("transactions[%d]: unknown kind %q", i, in.Kind)
		}

		category := sanitizeText(in.Category)
		if len(category) > maxCategoryLen {
			return nil, invalidArgument("transactions[%d]: category longer than %d characters", i, maxCategoryLen)
		}
		description := sanitizeText(in.Description)
		if len(description) > maxDescriptionLen {
			return nil, invalidArgument("transactions[%d]: description longer than %d characters", i, maxDescriptionLen)
		}

		occurredAt := in.OccurredAt
		if occurredAt.IsZero() {
			occurredAt = now
		}

		txs = append(txs, &domain.Transaction{
			ID:          in.ID,
			UserID:      userID,
			Amount:      in.Amount,
			Category:    domain.CategoryOrDefault(category),
			Description: description,
			OccurredAt:  occurredAt.UTC(),
			Kind:        kind,
			CreatedAt:   now,
		})
	}
	return txs, nil
}

func validateSnapshot(snap domain.FinancialSnapshot) error {
	switch {
	case !validAmount(snap.MonthlyIncome):
		return invalidArgument("monthlyIncome must be a non-negative number")
	case !validAmount(snap.MonthlyExpenses):
		return invalidArgument("monthlyExpenses must be a non-negative number")
	case !validAmount(snap.CurrentSavings):
		return invalidArgument("currentSavings must be a non-negative number")
	}
	return nil
}

// resolveTimeframe applies the default and enforces the allowed range.
func (s *InsightService) resolveTimeframe(months int) (int, error) {
	if months == 0 {
		return s.cfg.DefaultTimeframe, nil
	}
	if months < 1 || months > s.cfg.MaxTimeframe {
		return 0, invalidArgument("timeframe must be between 1 and %d months, got %d", s.cfg.MaxTimeframe, months)
	}
	return months, nil
}
