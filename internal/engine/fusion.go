package engine

import (
	"errors"
	"fmt"
	"math"

	"TrendGuard/internal/domain/models"
)

// Trigger thresholds shared by all regimes.
const (
	lowChopCeiling   = 38.2  // CHOP below this means the market is statistically trending
	gapDownRatio     = 0.995 // open below this fraction of yesterday's low
	spikeRatio       = 1.05  // intraday high more than 5% above prior close
	spikeRetrace     = 0.04  // close more than 4% off the day's high
	limitUpReturn    = 0.09  // prior day's single-day return for the limit-up trap
	churnVolMult     = 2.0
	churnMaxMove     = 0.01
	highBetaRSIFloor = 60 // do not sell high-beta strength on the first dip
)

// ErrMalformedSeries rejects structurally invalid input before any computation.
var ErrMalformedSeries = errors.New("engine: malformed price series")

// Engine classifies each trading day of one instrument into SAFE, SELL or
// STRONG_SELL. It is purely computational: no I/O, no shared mutable state,
// deterministic for identical input.
type Engine struct {
	overrides models.Overrides
}

// Option configures an Engine.
type Option func(*Engine)

// WithOverrides replaces individual regime parameters; used by tuning tools.
func WithOverrides(ov models.Overrides) Option {
	return func(e *Engine) { e.overrides = ov }
}

func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run emits one SignalRecord per input day. Days before the 60-day window
// floor are emitted as SAFE with empty reasons so output stays index-aligned
// with input.
func (e *Engine) Run(bars []models.PriceBar) ([]models.SignalRecord, error) {
	if err := ValidateBars(bars); err != nil {
		return nil, err
	}
	if len(bars) == 0 {
		return nil, nil
	}

	ind := computeBank(bars)
	profiles := computeProfiles(ind.natr, e.overrides)
	weekly := computeWeeklyStatus(bars)

	out := make([]models.SignalRecord, len(bars))
	for i := range bars {
		out[i] = classify(dayContext{
			i:       i,
			bars:    bars,
			ind:     ind,
			profile: profiles[i],
			weekly:  weekly[i],
		})
	}
	return out, nil
}

// ValidateBars surfaces malformed input loudly: dates must be strictly
// ascending and every OHLCV field finite. Indicator edge cases are recovered
// locally; structural errors are not.
func ValidateBars(bars []models.PriceBar) error {
	for i, b := range bars {
		for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite OHLCV at index %d", ErrMalformedSeries, i)
			}
		}
		if i > 0 && !bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("%w: dates not strictly ascending at index %d", ErrMalformedSeries, i)
		}
	}
	return nil
}

// dayContext carries everything classify needs for one day. classify never
// derives global state, so days can be evaluated (and tested) independently.
type dayContext struct {
	i       int
	bars    []models.PriceBar
	ind     *bank
	profile models.VolatilityProfile
	weekly  models.WeeklyStatus
}

// classify evaluates the fixed ordered trigger set for one day. Any danger
// trigger forces STRONG_SELL regardless of warnings; otherwise any warning
// yields SELL. Every fired reason is recorded for explainability.
func classify(dc dayContext) models.SignalRecord {
	day := dc.bars[dc.i]
	rec := models.SignalRecord{Date: day.Date, Price: day.Close, Tier: models.TierSafe}
	if dc.i < warmupDays {
		return rec
	}

	prev := dc.bars[dc.i-1]
	slow := dc.ind.slow[dc.profile.SlowTrendPeriod][dc.i]
	fast := dc.ind.fast[dc.profile.FastTrendPeriod][dc.i]
	chop := dc.ind.chop[dc.i]
	rsi := dc.ind.rsi[dc.i]
	volMA := dc.ind.volMA5[dc.i]

	var danger, warning []string

	// A breakdown while the market is statistically trending carries more
	// conviction than one in a noisy range.
	if defLT(chop, lowChopCeiling) && defLT(day.Close, slow) {
		danger = append(danger, models.ReasonLowChopBreakout)
	}

	// An opening gap below yesterday's low that is not recovered intraday.
	if day.Open < gapDownRatio*prev.Low && day.Close < prev.Low {
		danger = append(danger, models.ReasonGapDown)
	}

	// Failed intraday breakout: spike above prior close, then a deep retrace.
	if day.High > spikeRatio*prev.Close && day.High > 0 &&
		(day.High-day.Close)/day.High > spikeRetrace {
		danger = append(danger, models.ReasonZhabanTrap)
	}

	if trendBreakdown(dc, day, slow, chop, rsi, volMA) {
		danger = append(danger, models.ReasonTrendBreakdown)
	}

	// Reversal the day after a near-limit-up move.
	if dc.i >= 2 {
		p2 := dc.bars[dc.i-2]
		if p2.Close > 0 && prev.Close/p2.Close-1 > limitUpReturn && day.Close < prev.Close {
			danger = append(danger, models.ReasonLimitUpTrap)
		}
	}

	// Heavy volume with no net price progress.
	if defGT(day.Volume, churnVolMult*volMA) && prev.Close > 0 &&
		math.Abs(day.Close/prev.Close-1) < churnMaxMove {
		warning = append(warning, models.ReasonChurning)
	}

	// Momentum exhaustion with price already under the fast trend line.
	if defGT(rsi, dc.profile.RSICeiling) && defLT(day.Close, fast) {
		warning = append(warning, models.ReasonRSIOverheat)
	}

	switch {
	case len(danger) > 0:
		rec.Tier = models.TierStrongSell
		rec.Reasons = append(danger, warning...)
	case len(warning) > 0:
		rec.Tier = models.TierSell
		rec.Reasons = warning
	}
	return rec
}

// trendBreakdown fires on a close below the regime's slow trend line, subject
// to regime suppressions and weekly momentum gating.
func trendBreakdown(dc dayContext, day models.PriceBar, slow, chop, rsi, volMA float64) bool {
	if !defLT(day.Close, slow) {
		return false
	}
	p := dc.profile
	// Low-beta names are only flagged when the 60-day MA confirms the break.
	if p.RequireMA60Break && !defLT(day.Close, dc.ind.sma60[dc.i]) {
		return false
	}
	if p.Regime == models.RegimeHighBeta && defGT(rsi, highBetaRSIFloor) {
		return false
	}
	switch dc.weekly {
	case models.WeeklyWeakening:
		return !p.IgnoreWeakening
	case models.WeeklyDown:
		// Either confirmation suffices; both thresholds are on the tuning grid.
		return defLT(chop, p.ChopThreshold) || defGT(day.Volume, p.VolumeMultiplier*volMA)
	default:
		return false
	}
}
