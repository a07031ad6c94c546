package engine

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"TrendGuard/internal/domain/models"
)

func hasReason(rec models.SignalRecord, reason string) bool {
	for _, r := range rec.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

// gateCtx builds a minimal live-day context at index 60 where the close sits
// just under the slow trend line and nothing else fires, so individual trigger
// gates can be probed in isolation.
func gateCtx(p models.VolatilityProfile, weekly models.WeeklyStatus) dayContext {
	bars := flatBars(61, 100)
	bars[60].Open = 99.5
	bars[60].High = 99.6
	bars[60].Low = 98.8
	bars[60].Close = 99

	n := len(bars)
	b := &bank{
		tr: nanSlice(n), atr: nanSlice(n), natr: nanSlice(n),
		rsi: nanSlice(n), chop: nanSlice(n),
		sma20: nanSlice(n), sma60: nanSlice(n), volMA5: nanSlice(n),
		slow: map[int][]float64{p.SlowTrendPeriod: nanSlice(n)},
		fast: map[int][]float64{p.FastTrendPeriod: nanSlice(n)},
	}
	b.slow[p.SlowTrendPeriod][60] = 100
	b.fast[p.FastTrendPeriod][60] = 95
	b.chop[60] = 50
	b.rsi[60] = 50
	b.volMA5[60] = 1000
	b.sma60[60] = 98

	return dayContext{i: 60, bars: bars, ind: b, profile: p, weekly: weekly}
}

func TestTrendBreakdownGating(t *testing.T) {
	cases := []struct {
		name   string
		regime models.Regime
		weekly models.WeeklyStatus
		mutate func(dc *dayContext)
		fires  bool
	}{
		{"down week with chop confirmation", models.RegimeNormal, models.WeeklyDown, nil, true},
		{
			"down week without confirmation", models.RegimeNormal, models.WeeklyDown,
			func(dc *dayContext) { dc.ind.chop[60] = 70 }, false,
		},
		{
			"down week with volume confirmation", models.RegimeNormal, models.WeeklyDown,
			func(dc *dayContext) {
				dc.ind.chop[60] = 70
				dc.bars[60].Volume = 2000
			}, true,
		},
		{"up week never fires", models.RegimeNormal, models.WeeklyUp, nil, false},
		{"neutral week never fires", models.RegimeNormal, models.WeeklyNeutral, nil, false},
		{"weakening week fires unconditionally", models.RegimeNormal, models.WeeklyWeakening, nil, true},
		{
			"low beta ignores weakening", models.RegimeLowBeta, models.WeeklyWeakening,
			func(dc *dayContext) { dc.ind.sma60[60] = 99.5 }, false,
		},
		{
			"low beta needs the 60-day break", models.RegimeLowBeta, models.WeeklyDown,
			nil, false, // close 99 still above the 60-day line at 98
		},
		{
			"low beta with the 60-day break", models.RegimeLowBeta, models.WeeklyDown,
			func(dc *dayContext) { dc.ind.sma60[60] = 99.5 }, true,
		},
		{
			"low beta with undefined 60-day line", models.RegimeLowBeta, models.WeeklyDown,
			func(dc *dayContext) { dc.ind.sma60[60] = math.NaN() }, false,
		},
		{
			"high beta suppressed while hot", models.RegimeHighBeta, models.WeeklyDown,
			func(dc *dayContext) {
				dc.ind.chop[60] = 45
				dc.ind.rsi[60] = 70
			}, false,
		},
		{
			"high beta fires once cooled", models.RegimeHighBeta, models.WeeklyDown,
			func(dc *dayContext) { dc.ind.chop[60] = 45 }, true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dc := gateCtx(defaultProfile(tc.regime), tc.weekly)
			if tc.mutate != nil {
				tc.mutate(&dc)
			}
			rec := classify(dc)
			if got := hasReason(rec, models.ReasonTrendBreakdown); got != tc.fires {
				t.Fatalf("trend breakdown fired = %v, want %v (reasons %v)", got, tc.fires, rec.Reasons)
			}
			if tc.fires && rec.Tier != models.TierStrongSell {
				t.Fatalf("tier = %s, want STRONG_SELL", rec.Tier)
			}
		})
	}
}

func TestLowChopBreakout(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(dc *dayContext)
		fires  bool
	}{
		{"trending market broken", func(dc *dayContext) { dc.ind.chop[60] = 30 }, true},
		{"choppy market not flagged", func(dc *dayContext) { dc.ind.chop[60] = 50 }, false},
		{"boundary chop not flagged", func(dc *dayContext) { dc.ind.chop[60] = 38.2 }, false},
		{"undefined chop not flagged", func(dc *dayContext) { dc.ind.chop[60] = math.NaN() }, false},
		{
			"close above the slow line not flagged",
			func(dc *dayContext) {
				dc.ind.chop[60] = 30
				dc.ind.slow[dc.profile.SlowTrendPeriod][60] = 98.5
			},
			false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// UP week keeps Trend_Breakdown out of the picture; close 99 sits
			// under the slow line at 100.
			dc := gateCtx(defaultProfile(models.RegimeNormal), models.WeeklyUp)
			tc.mutate(&dc)

			rec := classify(dc)
			if got := hasReason(rec, models.ReasonLowChopBreakout); got != tc.fires {
				t.Fatalf("low chop breakout fired = %v, want %v (reasons %v)", got, tc.fires, rec.Reasons)
			}
			if tc.fires {
				if rec.Tier != models.TierStrongSell {
					t.Fatalf("tier = %s, want STRONG_SELL", rec.Tier)
				}
				if !reflect.DeepEqual(rec.Reasons, []string{models.ReasonLowChopBreakout}) {
					t.Fatalf("reasons = %v, want only Low_Chop_Breakout", rec.Reasons)
				}
			}
		})
	}
}

func TestDangerDominatesWarning(t *testing.T) {
	dc := gateCtx(defaultProfile(models.RegimeNormal), models.WeeklyDown)
	// Keep the breakdown alive and add churning on top.
	dc.bars[60].Close = 99.5
	dc.bars[60].Volume = 5000

	rec := classify(dc)
	if rec.Tier != models.TierStrongSell {
		t.Fatalf("tier = %s, want STRONG_SELL when danger and warning overlap", rec.Tier)
	}
	if !hasReason(rec, models.ReasonTrendBreakdown) || !hasReason(rec, models.ReasonChurning) {
		t.Fatalf("reasons = %v, want both the danger and the warning recorded", rec.Reasons)
	}
	if rec.Reasons[0] != models.ReasonTrendBreakdown {
		t.Fatalf("reasons = %v, want danger triggers recorded first", rec.Reasons)
	}
	if rec.Price != 99.5 {
		t.Fatalf("price = %v, want the day's close", rec.Price)
	}
}

func TestRSIOverheatWarning(t *testing.T) {
	dc := gateCtx(defaultProfile(models.RegimeNormal), models.WeeklyUp)
	dc.ind.rsi[60] = 85
	dc.ind.fast[8][60] = 100.5

	rec := classify(dc)
	if rec.Tier != models.TierSell {
		t.Fatalf("tier = %s, want SELL for a lone warning", rec.Tier)
	}
	if !reflect.DeepEqual(rec.Reasons, []string{models.ReasonRSIOverheat}) {
		t.Fatalf("reasons = %v, want only RSI_Overheat", rec.Reasons)
	}
}

func TestRunFlatSeriesAllSafe(t *testing.T) {
	e := New()
	bars := flatBars(180, 100)
	records, err := e.Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(records) != len(bars) {
		t.Fatalf("got %d records for %d bars", len(records), len(bars))
	}
	for i, rec := range records {
		if rec.Tier != models.TierSafe || len(rec.Reasons) != 0 {
			t.Fatalf("record[%d] = %+v on a flat series, want SAFE", i, rec)
		}
		if !rec.Date.Equal(bars[i].Date) || rec.Price != bars[i].Close {
			t.Fatalf("record[%d] misaligned with input bar", i)
		}
	}
}

func TestRunGapDownStrongSell(t *testing.T) {
	bars := flatBars(130, 100)
	bars[61].Open = 99
	bars[61].High = 99
	bars[61].Low = 98.9
	bars[61].Close = 98.9

	records, err := New().Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec := records[61]
	if rec.Tier != models.TierStrongSell {
		t.Fatalf("tier = %s, want STRONG_SELL on an unrecovered gap", rec.Tier)
	}
	if !hasReason(rec, models.ReasonGapDown) {
		t.Fatalf("reasons = %v, want Gap_Down recorded", rec.Reasons)
	}
}

func TestRunWindowFloor(t *testing.T) {
	// The same gap pattern inside the 60-day warmup must stay silent.
	bars := flatBars(100, 100)
	bars[30].Open = 99
	bars[30].High = 99
	bars[30].Low = 98.9
	bars[30].Close = 98.9

	records, err := New().Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec := records[30]; rec.Tier != models.TierSafe || len(rec.Reasons) != 0 {
		t.Fatalf("record inside warmup = %+v, want SAFE", rec)
	}
}

func TestRunSpikeRetraceTrap(t *testing.T) {
	bars := flatBars(130, 100)
	bars[61].Open = 100
	bars[61].High = 106
	bars[61].Low = 99
	bars[61].Close = 101

	records, err := New().Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec := records[61]
	if rec.Tier != models.TierStrongSell || !hasReason(rec, models.ReasonZhabanTrap) {
		t.Fatalf("record = %+v, want STRONG_SELL with Zhaban_Trap", rec)
	}
}

func TestRunLimitUpTrap(t *testing.T) {
	bars := flatBars(130, 100)
	// A 10% up day followed by a lower close.
	bars[70].Open = 100
	bars[70].High = 110
	bars[70].Low = 100
	bars[70].Close = 110
	bars[71].Open = 109
	bars[71].High = 109.2
	bars[71].Low = 108
	bars[71].Close = 109

	records, err := New().Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec := records[71]
	if rec.Tier != models.TierStrongSell || !hasReason(rec, models.ReasonLimitUpTrap) {
		t.Fatalf("record = %+v, want STRONG_SELL with Limit_Up_Trap", rec)
	}
}

func TestRunChurningWarning(t *testing.T) {
	bars := flatBars(130, 100)
	bars[61].Open = 100
	bars[61].High = 100.6
	bars[61].Low = 99.4
	bars[61].Close = 100.5
	bars[61].Volume = 5000

	records, err := New().Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	rec := records[61]
	if rec.Tier != models.TierSell {
		t.Fatalf("tier = %s, want SELL on heavy volume with no progress", rec.Tier)
	}
	if !reflect.DeepEqual(rec.Reasons, []string{models.ReasonChurning}) {
		t.Fatalf("reasons = %v, want only Churning", rec.Reasons)
	}
}

func TestRunDeterminism(t *testing.T) {
	bars := noisyBars(400, 42)
	e := New()
	first, err := e.Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	second, err := e.Run(bars)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical input produced different output")
	}
}

func TestRunReasonsMatchTier(t *testing.T) {
	records, err := New().Run(noisyBars(400, 99))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, rec := range records {
		safe := rec.Tier == models.TierSafe
		if safe != (len(rec.Reasons) == 0) {
			t.Fatalf("record[%d] tier %s with reasons %v", i, rec.Tier, rec.Reasons)
		}
		switch rec.Tier {
		case models.TierSafe, models.TierSell, models.TierStrongSell:
		default:
			t.Fatalf("record[%d] has unknown tier %q", i, rec.Tier)
		}
	}
}

func TestRunEmptyInput(t *testing.T) {
	records, err := New().Run(nil)
	if err != nil || records != nil {
		t.Fatalf("Run(nil) = %v, %v, want nil, nil", records, err)
	}
}

func TestValidateBarsRejectsMalformedInput(t *testing.T) {
	base := flatBars(70, 100)

	mutations := []struct {
		name   string
		mutate func(bars []models.PriceBar)
	}{
		{"nan close", func(b []models.PriceBar) { b[10].Close = math.NaN() }},
		{"infinite volume", func(b []models.PriceBar) { b[20].Volume = math.Inf(1) }},
		{"duplicate date", func(b []models.PriceBar) { b[31].Date = b[30].Date }},
		{"backwards date", func(b []models.PriceBar) { b[40].Date = b[5].Date }},
	}
	for _, tc := range mutations {
		t.Run(tc.name, func(t *testing.T) {
			bars := make([]models.PriceBar, len(base))
			copy(bars, base)
			tc.mutate(bars)

			if err := ValidateBars(bars); !errors.Is(err, ErrMalformedSeries) {
				t.Fatalf("ValidateBars error = %v, want ErrMalformedSeries", err)
			}
			if _, err := New().Run(bars); !errors.Is(err, ErrMalformedSeries) {
				t.Fatalf("Run error = %v, want ErrMalformedSeries", err)
			}
		})
	}

	if err := ValidateBars(base); err != nil {
		t.Fatalf("ValidateBars on clean input: %v", err)
	}
}
