package anomaly

import (
	"math"

	"github.com/finpersona/backend/internal/domain"
)

// Config holds the detector thresholds.
type Config struct {
	// SpikeStdDevs is the number of standard deviations above the weekly
	// average the current week must exceed.
	SpikeStdDevs float64
	// SpikeMultiplier is the minimum current/average ratio for a spike.
	SpikeMultiplier  float64
	HighMultiplier   float64
	UrgentMultiplier float64
	// LargeTransactionRatio is the fraction of the weekly average a single
	// transaction must exceed.
	LargeTransactionRatio float64
	// LargeTransactionFloor is the absolute amount a single transaction must exceed.
	LargeTransactionFloor float64
	CurrencySymbol        string
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		SpikeStdDevs:          2,
		SpikeMultiplier:       2,
		HighMultiplier:        3,
		UrgentMultiplier:      4,
		LargeTransactionRatio: 0.5,
		LargeTransactionFloor: 1000,
		CurrencySymbol:        "₹",
	}
}

// Detector compares new transactions against historical baselines.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector. Zero-valued fields fall back to DefaultConfig.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.SpikeStdDevs <= 0 {
		cfg.SpikeStdDevs = def.SpikeStdDevs
	}
	if cfg.SpikeMultiplier <= 0 {
		cfg.SpikeMultiplier = def.SpikeMultiplier
	}
	if cfg.HighMultiplier <= 0 {
		cfg.HighMultiplier = def.HighMultiplier
	}
	if cfg.UrgentMultiplier <= 0 {
		cfg.UrgentMultiplier = def.UrgentMultiplier
	}
	if cfg.LargeTransactionRatio <= 0 {
		cfg.LargeTransactionRatio = def.LargeTransactionRatio
	}
	if cfg.LargeTransactionFloor <= 0 {
		cfg.LargeTransactionFloor = def.LargeTransactionFloor
	}
	if cfg.CurrencySymbol == "" {
		cfg.CurrencySymbol = def.CurrencySymbol
	}
	return &Detector{cfg: cfg}
}

// Detect evaluates every pattern for a weekly spike and every new expense in
// that pattern's category for an unusually large amount. Patterns must be
// computed over history that excludes newTxs.
//
// Output follows pattern order, with a category's spike ahead of its large
// transaction records. Detect is pure; persistence is the caller's concern.
func (d *Detector) Detect(newTxs []*domain.Transaction, patterns []domain.SpendingPattern) []domain.Anomaly {
	var out []domain.Anomaly

	for _, p := range patterns {
		if a, ok := d.checkSpike(p); ok {
			out = append(out, a)
		}

		threshold := p.WeeklyAverage * d.cfg.LargeTransactionRatio
		for _, t := range newTxs {
			if t.Kind == domain.KindIncome || t.CategoryOrDefault() != p.Category {
				continue
			}
			if t.Amount > threshold && t.Amount > d.cfg.LargeTransactionFloor {
				out = append(out, domain.Anomaly{
					Kind:        domain.AnomalyLargeTransaction,
					Category:    p.Category,
					Amount:      t.Amount,
					NormalRange: d.largeTransactionRange(threshold),
					Severity:    domain.SeverityMedium,
					Message:     d.largeTransactionMessage(p.Category, t.Amount, t.Description),
					Transaction: t.Description,
				})
			}
		}
	}
	return out
}

func (d *Detector) checkSpike(p domain.SpendingPattern) (domain.Anomaly, bool) {
	threshold := p.WeeklyAverage + d.cfg.SpikeStdDevs*p.StandardDeviation
	multiplier := p.CurrentWeekSpend / math.Max(p.WeeklyAverage, 1)

	if p.CurrentWeekSpend <= threshold || multiplier < d.cfg.SpikeMultiplier {
		return domain.Anomaly{}, false
	}

	severity := domain.SeverityMedium
	if multiplier >= d.cfg.HighMultiplier {
		severity = domain.SeverityHigh
	}

	return domain.Anomaly{
		Kind:        domain.AnomalySpendingSpike,
		Category:    p.Category,
		Amount:      p.CurrentWeekSpend,
		NormalRange: d.spikeRange(p.WeeklyAverage, p.StandardDeviation),
		Severity:    severity,
		Message:     d.spikeMessage(p.Category, multiplier, p.CurrentWeekSpend, p.WeeklyAverage),
		Multiplier:  multiplier,
	}, true
}
