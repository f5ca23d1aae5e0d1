package anomaly

import (
	"math"
	"time"

	"github.com/finpersona/backend/internal/domain"
)

const week = 7 * 24 * time.Hour

type categoryBuckets struct {
	weeks   map[string]float64
	months  map[string]float64
	amounts []float64
	current float64
	last    float64
}

// AnalyzePatterns derives per-category spending baselines from expense history.
// Categories are returned in order of first appearance. Income rows are ignored.
func AnalyzePatterns(txs []*domain.Transaction, now time.Time) []domain.SpendingPattern {
	currentStart := now.Add(-week)
	lastStart := now.Add(-2 * week)

	var order []string
	byCat := make(map[string]*categoryBuckets)

	for _, t := range txs {
		if t.Kind == domain.KindIncome {
			continue
		}
		cat := t.CategoryOrDefault()
		b, ok := byCat[cat]
		if !ok {
			b = &categoryBuckets{
				weeks:  make(map[string]float64),
				months: make(map[string]float64),
			}
			byCat[cat] = b
			order = append(order, cat)
		}

		b.weeks[WeekKey(t.OccurredAt)] += t.Amount
		b.months[MonthKey(t.OccurredAt)] += t.Amount
		b.amounts = append(b.amounts, t.Amount)

		switch {
		case !t.OccurredAt.Before(currentStart) && t.OccurredAt.Before(now):
			b.current += t.Amount
		case !t.OccurredAt.Before(lastStart) && t.OccurredAt.Before(currentStart):
			b.last += t.Amount
		}
	}

	patterns := make([]domain.SpendingPattern, 0, len(order))
	for _, cat := range order {
		b := byCat[cat]
		patterns = append(patterns, domain.SpendingPattern{
			Category:          cat,
			WeeklyAverage:     meanOf(b.weeks),
			MonthlyAverage:    meanOf(b.months),
			StandardDeviation: populationStdDev(b.amounts),
			CurrentWeekSpend:  b.current,
			LastWeekSpend:     b.last,
		})
	}
	return patterns
}

// WeekKey returns the UTC date of the Sunday on or before t.
func WeekKey(t time.Time) string {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -int(u.Weekday()))
	return start.Format("2006-01-02")
}

// MonthKey returns the UTC year-month of t.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func meanOf(buckets map[string]float64) float64 {
	if len(buckets) == 0 {
		return 0
	}
	var sum float64
	for _, v := range buckets {
		sum += v
	}
	return sum / float64(len(buckets))
}

func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
