package anomaly

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// formatAmount renders v with digit grouping, e.g. 12,500 or 1,234.5.
func formatAmount(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func formatWhole(v float64) string {
	return fmt.Sprintf("%.0f", roundHalfUp(v))
}

func (d *Detector) spikeMessage(category string, multiplier, current, average float64) string {
	sym := d.cfg.CurrencySymbol
	switch {
	case multiplier >= d.cfg.UrgentMultiplier:
		return fmt.Sprintf("🚨 You spent %.1fx more on %s this week (%s%s) compared to your average (%s%s). What happened?",
			multiplier, category, sym, formatAmount(current), sym, formatAmount(average))
	case multiplier >= d.cfg.HighMultiplier:
		return fmt.Sprintf("⚠️ Unusual %s spending detected! You spent %.1fx more than usual this week.", category, multiplier)
	default:
		return fmt.Sprintf("📊 Your %s spending is %.1fx higher than normal this week. Consider reviewing your budget.", category, multiplier)
	}
}

func (d *Detector) largeTransactionMessage(category string, amount float64, description string) string {
	return fmt.Sprintf("💳 Large %s transaction detected: %s%s for \"%s\". This is unusually high for you.",
		category, d.cfg.CurrencySymbol, formatAmount(amount), description)
}

func (d *Detector) spikeRange(average, stdDev float64) string {
	sym := d.cfg.CurrencySymbol
	return fmt.Sprintf("%s%s - %s%s", sym, formatWhole(average-stdDev), sym, formatWhole(average+stdDev))
}

func (d *Detector) largeTransactionRange(threshold float64) string {
	return fmt.Sprintf("Usually under %s%s", d.cfg.CurrencySymbol, formatWhole(threshold))
}
