package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/auth"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/finpersona/backend/internal/store"
)

// GetFinancialProfile returns the stored profile, or the defaults when none exists.
// Zero fields of a stored profile read as their defaults, matching what
// SimulateScenario projects from.
func (s *InsightService) GetFinancialProfile(ctx context.Context, req *connect.Request[rpc.GetFinancialProfileRequest]) (*connect.Response[rpc.GetFinancialProfileResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	profile, err := s.store.GetProfile(ctx, claims.UID)
	if errors.Is(err, store.ErrNotFound) {
		return connect.NewResponse(&rpc.GetFinancialProfileResponse{
			Profile: &domain.FinancialProfile{
				FinancialSnapshot: s.cfg.DefaultSnapshot,
				UserID:            claims.UID,
			},
			IsDefault: true,
		}), nil
	}
	if err != nil {
		return nil, auth.WrapStoreError("get financial profile", err)
	}

	resolved := *profile
	resolved.FinancialSnapshot = withDefaults(profile.FinancialSnapshot, s.cfg.DefaultSnapshot)
	return connect.NewResponse(&rpc.GetFinancialProfileResponse{Profile: &resolved}), nil
}

func (s *InsightService) UpdateFinancialProfile(ctx context.Context, req *connect.Request[rpc.UpdateFinancialProfileRequest]) (*connect.Response[rpc.UpdateFinancialProfileResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}
	if err := validateSnapshot(req.Msg.Snapshot); err != nil {
		return nil, err
	}

	profile := &domain.FinancialProfile{
		FinancialSnapshot: req.Msg.Snapshot,
		UserID:            claims.UID,
		UpdatedAt:         s.now(),
	}
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, auth.WrapStoreError("update financial profile", err)
	}

	return connect.NewResponse(&rpc.UpdateFinancialProfileResponse{Profile: profile}), nil
}
