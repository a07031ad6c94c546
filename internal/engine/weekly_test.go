package engine

import (
	"math"
	"testing"

	"TrendGuard/internal/domain/models"
)

// trendPhases builds 55 weeks of daily closes: a steady 1%/day rise for 40
// weeks, then a slow 0.5%/day bleed. The rise keeps weekly MACD strictly
// expanding (UP), the first bleed weeks shrink the histogram while MACD stays
// above its signal (WEAKENING), and the bleed eventually crosses it (DOWN).
func trendPhases() []models.PriceBar {
	closes := make([]float64, 275)
	price := 100.0
	for i := range closes {
		if i < 200 {
			price *= 1.01
		} else {
			price *= 0.995
		}
		closes[i] = price
	}
	return closesBars(closes)
}

func TestWeeklyStatusShortHistoryNeutral(t *testing.T) {
	// 20 calendar weeks of data, below the 26-week minimum.
	statuses := computeWeeklyStatus(closesBars(constSeries(100, 100)))
	for i, s := range statuses {
		if s != models.WeeklyNeutral {
			t.Fatalf("status[%d] = %s with short history, want NEUTRAL", i, s)
		}
	}
}

func TestWeeklyStatusPhases(t *testing.T) {
	statuses := computeWeeklyStatus(trendPhases())

	// Weekly MACD(12,26,9) needs 34 weeks before the signal line exists.
	if got := statuses[160]; got != models.WeeklyNeutral {
		t.Fatalf("status during signal warmup = %s, want NEUTRAL", got)
	}
	if got := statuses[165]; got != models.WeeklyUp {
		t.Fatalf("status in first defined rising week = %s, want UP", got)
	}
	if got := statuses[182]; got != models.WeeklyUp {
		t.Fatalf("status mid-rise = %s, want UP", got)
	}
	// Second week of the bleed: histogram collapsed below 80% of the prior
	// week's while MACD still sits above its signal.
	if got := statuses[207]; got != models.WeeklyWeakening {
		t.Fatalf("status after the stall = %s, want WEAKENING", got)
	}
	if got := statuses[274]; got != models.WeeklyDown {
		t.Fatalf("status after a long bleed = %s, want DOWN", got)
	}
}

func TestWeeklyStatusBackfillsWholeWeeks(t *testing.T) {
	bars := trendPhases()
	statuses := computeWeeklyStatus(bars)
	for w := 0; w < len(bars)/5; w++ {
		first := statuses[w*5]
		for d := 1; d < 5; d++ {
			if statuses[w*5+d] != first {
				t.Fatalf("week %d not uniform: day 0 = %s, day %d = %s",
					w, first, d, statuses[w*5+d])
			}
		}
	}
}

func TestResampleWeekly(t *testing.T) {
	days := tradingDays(7)
	bars := []models.PriceBar{
		{Date: days[0], Open: 10, High: 12, Low: 9, Close: 11, Volume: 100},
		{Date: days[1], Open: 11, High: 15, Low: 10, Close: 14, Volume: 200},
		{Date: days[2], Open: 14, High: 14.5, Low: 8, Close: 9, Volume: 300},
		{Date: days[3], Open: 9, High: 10, Low: 8.5, Close: 9.5, Volume: 100},
		{Date: days[4], Open: 9.5, High: 11, Low: 9, Close: 10.5, Volume: 50},
		{Date: days[5], Open: 10.5, High: 13, Low: 10, Close: 12, Volume: 400},
		{Date: days[6], Open: 12, High: 12.5, Low: 11, Close: 12.5, Volume: 100},
	}
	weeks := resampleWeekly(bars)
	if len(weeks) != 2 {
		t.Fatalf("got %d weeks, want 2", len(weeks))
	}
	w := weeks[0]
	if w.open != 10 || w.high != 15 || w.low != 8 || w.close != 10.5 || w.volume != 750 {
		t.Fatalf("first week aggregation wrong: %+v", w)
	}
	if weeks[1].open != 10.5 || weeks[1].close != 12.5 || weeks[1].volume != 500 {
		t.Fatalf("second week aggregation wrong: %+v", weeks[1])
	}
}

func TestMACDSeriesWarmup(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 100 * math.Pow(1.02, float64(i))
	}
	macd, signal, hist := macdSeries(closes)

	if defined(macd[macdSlow-2]) || !defined(macd[macdSlow-1]) {
		t.Fatal("macd warmup boundary wrong")
	}
	signalSeed := macdSlow + macdSignal - 2
	if defined(signal[signalSeed-1]) || !defined(signal[signalSeed]) {
		t.Fatal("signal warmup boundary wrong")
	}
	for i := signalSeed; i < 40; i++ {
		if !floatEq(hist[i], macd[i]-signal[i]) {
			t.Fatalf("hist[%d] inconsistent with macd-signal", i)
		}
		if !(macd[i] > 0) {
			t.Fatalf("macd[%d] = %v in a steady uptrend, want positive", i, macd[i])
		}
	}
}
