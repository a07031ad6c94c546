package engine

import (
	"math"

	"TrendGuard/internal/domain/models"
)

const (
	cooldownDays  = 5
	lookaheadDays = 5
	targetATRMult = 1.5
	targetFloor   = 0.02
	targetCeil    = 0.05
)

// Evaluate replays emitted signals against realized future prices. It is a
// measurement tool for tests and tuning, not part of the serving path.
//
// SELL/STRONG_SELL signals within cooldownDays trading days of the previously
// counted signal (of either tier) are skipped as duplicates of the same
// breakdown event. Counted signals with a full forward window are classified
// against a volatility-normalized target; the drawdown check wins when both
// bounds were touched within the window.
func Evaluate(bars []models.PriceBar, records []models.SignalRecord) models.BacktestReport {
	report := models.BacktestReport{Bars: len(bars)}
	if len(bars) == 0 || len(bars) != len(records) {
		return report
	}

	atr := wilderSmooth(trueRange(bars), atrPeriod)

	// Cooldown state is explicit and local to the evaluator; the core engine
	// stays stateless across days.
	lastCounted := -(cooldownDays + 1)
	for i, rec := range records {
		if rec.Tier == models.TierSafe {
			continue
		}
		if i-lastCounted <= cooldownDays {
			report.Skipped++
			continue
		}
		lastCounted = i

		if i+lookaheadDays >= len(bars) {
			// Counted for cooldown purposes, but no full forward window to
			// classify against.
			report.Skipped++
			continue
		}
		price := rec.Price
		if price <= 0 || math.IsNaN(atr[i]) {
			report.Skipped++
			continue
		}
		target := clamp(targetATRMult*atr[i]/price, targetFloor, targetCeil)

		lo := math.Inf(1)
		hi := math.Inf(-1)
		for j := i + 1; j <= i+lookaheadDays; j++ {
			if bars[j].Low < lo {
				lo = bars[j].Low
			}
			if bars[j].High > hi {
				hi = bars[j].High
			}
		}

		stats := &report.Sell
		if rec.Tier == models.TierStrongSell {
			stats = &report.StrongSell
		}
		stats.Total++
		switch {
		case lo < price*(1-target):
			stats.Good++
		case hi > price*(1+target):
			stats.Bad++
		default:
			stats.Neutral++
		}
	}

	finalize(&report.Sell)
	finalize(&report.StrongSell)
	return report
}

func finalize(s *models.TierStats) {
	if s.Total > 0 {
		s.Precision = float64(s.Good) / float64(s.Total)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
