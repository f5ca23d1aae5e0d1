package service

import (
	"context"

	"connectrpc.com/connect"
	"github.com/finpersona/backend/internal/auth"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/rpc"
)

// ListAlerts returns the caller's alerts inside the alert window, newest first.
func (s *InsightService) ListAlerts(ctx context.Context, req *connect.Request[rpc.ListAlertsRequest]) (*connect.Response[rpc.ListAlertsResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	alerts, err := s.store.ListAlerts(ctx, claims.UID, s.now().Add(-s.cfg.AlertWindow))
	if err != nil {
		return nil, auth.WrapStoreError("list alerts", err)
	}

	return connect.NewResponse(&rpc.ListAlertsResponse{
		Alerts: nonNil(alerts),
	}), nil
}

// UpdateAlert marks an alert read or dismissed.
func (s *InsightService) UpdateAlert(ctx context.Context, req *connect.Request[rpc.UpdateAlertRequest]) (*connect.Response[rpc.UpdateAlertResponse], error) {
	claims, err := auth.RequireUserAccess(ctx, req.Msg.UserID)
	if err != nil {
		return nil, err
	}
	if req.Msg.AlertID == "" {
		return nil, invalidArgument("alertId is required")
	}
	if !req.Msg.Action.IsValid() {
		return nil, invalidArgument("action must be %q or %q, got %q", domain.AlertActionRead, domain.AlertActionDismiss, req.Msg.Action)
	}

	if err := s.store.UpdateAlertStatus(ctx, claims.UID, req.Msg.AlertID, req.Msg.Action); err != nil {
		return nil, auth.WrapStoreError("update alert", err)
	}

	return connect.NewResponse(&rpc.UpdateAlertResponse{
		AlertID: req.Msg.AlertID,
		Action:  req.Msg.Action,
	}), nil
}
