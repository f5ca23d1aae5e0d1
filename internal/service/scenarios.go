package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/auth"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/finpersona/backend/internal/scenario"
	"github.com/finpersona/backend/internal/store"
	"github.com/google/uuid"
)

// SimulateScenario interprets a what-if scenario, projects its cash flow and
// records the run.
func (s *InsightService) SimulateScenario(ctx context.Context, req *connect.Request[rpc.SimulateScenarioRequest]) (*connect.Response[rpc.SimulateScenarioResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	text := sanitizeText(req.Msg.Scenario)
	if text == "" {
		return nil, invalidArgument("scenario is required")
	}
	if len(text) > maxScenarioLen {
		return nil, invalidArgument("scenario longer than %d characters", maxScenarioLen)
	}

	timeframe, err := s.resolveTimeframe(req.Msg.Timeframe)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.resolveSnapshot(ctx, claims.UID, req.Msg.Snapshot)
	if err != nil {
		return nil, err
	}

	analysis, err := s.interpreter.Interpret(ctx, scenario.Request{
		Scenario:  text,
		Snapshot:  snapshot,
		Timeframe: timeframe,
	})
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, fmt.Errorf("failed to interpret scenario: %w", err))
	}

	now := s.now()
	simulation, err := scenario.Simulate(snapshot, analysis, timeframe, now)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	record := &domain.ScenarioRecord{
		ID:         uuid.New().String(),
		UserID:     claims.UID,
		Scenario:   text,
		Timeframe:  timeframe,
		Analysis:   *analysis,
		Simulation: *simulation,
		CreatedAt:  now,
	}
	if err := s.store.InsertScenarioRecord(ctx, record); err != nil {
		return nil, auth.WrapStoreError("save scenario", err)
	}

	s.logger(ctx).Info().
		Str("user_id", claims.UID).
		Str("scenario_type", string(analysis.ScenarioType)).
		Str("source", string(analysis.Source)).
		Int("timeframe", timeframe).
		Bool("feasible", simulation.Summary.Feasible).
		Msg("scenario simulated")

	return connect.NewResponse(&rpc.SimulateScenarioResponse{
		ScenarioID: record.ID,
		Snapshot:   snapshot,
		Analysis:   record.Analysis,
		Simulation: record.Simulation,
	}), nil
}

// ListScenarios returns summaries of the latest scenario runs.
func (s *InsightService) ListScenarios(ctx context.Context, req *connect.Request[rpc.ListScenariosRequest]) (*connect.Response[rpc.ListScenariosResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	records, err := s.store.ListScenarioRecords(ctx, claims.UID, s.cfg.ScenarioHistoryLimit)
	if err != nil {
		return nil, auth.WrapStoreError("list scenarios", err)
	}

	summaries := make([]domain.ScenarioSummary, 0, len(records))
	for _, r := range records {
		summaries = append(summaries, r.Summary())
	}

	return connect.NewResponse(&rpc.ListScenariosResponse{
		Scenarios: summaries,
	}), nil
}

// resolveSnapshot prefers the request snapshot, then the stored profile, then
// the configured defaults. Zero fields of a stored profile take their default.
func (s *InsightService) resolveSnapshot(ctx context.Context, userID string, override *domain.FinancialSnapshot) (domain.FinancialSnapshot, error) {
	if override != nil {
		if err := validateSnapshot(*override); err != nil {
			return domain.FinancialSnapshot{}, err
		}
		return *override, nil
	}

	profile, err := s.store.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return s.cfg.DefaultSnapshot, nil
	case err != nil:
		return domain.FinancialSnapshot{}, auth.WrapStoreError("get financial profile", err)
	}
	return withDefaults(profile.FinancialSnapshot, s.cfg.DefaultSnapshot), nil
}

func withDefaults(snap, def domain.FinancialSnapshot) domain.FinancialSnapshot {
	if snap.MonthlyIncome == 0 {
		snap.MonthlyIncome = def.MonthlyIncome
	}
	if snap.MonthlyExpenses == 0 {
		snap.MonthlyExpenses = def.MonthlyExpenses
	}
	if snap.CurrentSavings == 0 {
		snap.CurrentSavings = def.CurrentSavings
	}
	return snap
}
