package service

import (
	"context"
	"time"

	"github.com/finpersona/backend/internal/advisor"
	"github.com/finpersona/backend/internal/anomaly"
	"github.com/finpersona/backend/internal/domain"
	"github.com/finpersona/backend/internal/logger"
	"github.com/finpersona/backend/internal/rpc"
	"github.com/finpersona/backend/internal/scenario"
	"github.com/finpersona/backend/internal/store"
	"github.com/rs/zerolog"
)

var _ rpc.InsightServiceHandler = (*InsightService)(nil)

// Config tunes the service windows and defaults.
type Config struct {
	// LookbackDays is the history used to build spending baselines.
	LookbackDays int
	// AlertWindow bounds ListAlerts.
	AlertWindow time.Duration
	// ScenarioHistoryLimit bounds ListScenarios.
	ScenarioHistoryLimit int
	// ChatHistoryLimit is how many stored exchanges Chat reloads when the
	// client sends no history.
	ChatHistoryLimit int
	// DefaultTimeframe applies when a simulation request leaves timeframe unset.
	DefaultTimeframe int
	MaxTimeframe     int
	// DefaultSnapshot is used when neither the request nor a stored profile supplies one.
	DefaultSnapshot domain.FinancialSnapshot
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		LookbackDays:         90,
		AlertWindow:          30 * 24 * time.Hour,
		ScenarioHistoryLimit: 10,
		ChatHistoryLimit:     3,
		DefaultTimeframe:     12,
		MaxTimeframe:         60,
		DefaultSnapshot: domain.FinancialSnapshot{
			MonthlyIncome:   50000,
			MonthlyExpenses: 35000,
			CurrentSavings:  200000,
		},
	}
}

// InsightService serves anomaly detection and scenario simulation over Connect.
type InsightService struct {
	store       store.Store
	detector    *anomaly.Detector
	interpreter scenario.Interpreter
	advisor     advisor.Advisor
	cfg         Config
	log         zerolog.Logger
	now         func() time.Time
}

// NewInsightService wires the pipelines onto a store. Zero config fields take
// their DefaultConfig values.
func NewInsightService(st store.Store, detector *anomaly.Detector, interpreter scenario.Interpreter, adv advisor.Advisor, cfg Config, log zerolog.Logger) *InsightService {
	def := DefaultConfig()
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = def.LookbackDays
	}
	if cfg.AlertWindow <= 0 {
		cfg.AlertWindow = def.AlertWindow
	}
	if cfg.ScenarioHistoryLimit <= 0 {
		cfg.ScenarioHistoryLimit = def.ScenarioHistoryLimit
	}
	if cfg.ChatHistoryLimit <= 0 {
		cfg.ChatHistoryLimit = def.ChatHistoryLimit
	}
	if cfg.DefaultTimeframe <= 0 {
		cfg.DefaultTimeframe = def.DefaultTimeframe
	}
	if cfg.MaxTimeframe <= 0 {
		cfg.MaxTimeframe = def.MaxTimeframe
	}
	if adv == nil {
		adv = advisor.NewFallbackAdvisor("")
	}
	if cfg.DefaultSnapshot.IsZero() {
		cfg.DefaultSnapshot = def.DefaultSnapshot
	}

	return &InsightService{
		store:       st,
		detector:    detector,
		interpreter: interpreter,
		advisor:     adv,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

func (s *InsightService) lookbackStart(now time.Time) time.Time {
	return now.AddDate(0, 0, -s.cfg.LookbackDays)
}

// logger prefers the request-scoped logger set by the HTTP middleware.
func (s *InsightService) logger(ctx context.Context) *zerolog.Logger {
	l := logger.FromContextOr(ctx, s.log)
	return &l
}
