package engine

import (
	"math"

	"TrendGuard/internal/domain/models"
)

const (
	minWeeks       = 26
	macdFast       = 12
	macdSlow       = 26
	macdSignal     = 9
	weakeningRatio = 0.8
)

type weekKey struct {
	year int
	week int
}

func keyFor(b models.PriceBar) weekKey {
	y, w := b.Date.ISOWeek()
	return weekKey{year: y, week: w}
}

// weekBar is one calendar week resampled from daily bars with week-ending
// alignment: open=first, high=max, low=min, close=last, volume=sum.
type weekBar struct {
	key    weekKey
	open   float64
	high   float64
	low    float64
	close  float64
	volume float64
}

func resampleWeekly(bars []models.PriceBar) []weekBar {
	var weeks []weekBar
	for _, b := range bars {
		k := keyFor(b)
		if len(weeks) == 0 || weeks[len(weeks)-1].key != k {
			weeks = append(weeks, weekBar{
				key: k, open: b.Open, high: b.High, low: b.Low, close: b.Close, volume: b.Volume,
			})
			continue
		}
		w := &weeks[len(weeks)-1]
		if b.High > w.high {
			w.high = b.High
		}
		if b.Low < w.low {
			w.low = b.Low
		}
		w.close = b.Close
		w.volume += b.Volume
	}
	return weeks
}

// computeWeeklyStatus aggregates daily bars into calendar weeks, classifies
// weekly momentum from MACD(12,26,9) on weekly closes, and back-fills the
// status onto every daily row. Below 26 weeks of history every day is NEUTRAL.
func computeWeeklyStatus(bars []models.PriceBar) []models.WeeklyStatus {
	out := make([]models.WeeklyStatus, len(bars))
	for i := range out {
		out[i] = models.WeeklyNeutral
	}
	if len(bars) == 0 {
		return out
	}

	weeks := resampleWeekly(bars)
	if len(weeks) < minWeeks {
		return out
	}

	closes := make([]float64, len(weeks))
	for i, w := range weeks {
		closes[i] = w.close
	}
	macd, signal, hist := macdSeries(closes)

	status := make(map[weekKey]models.WeeklyStatus, len(weeks))
	for i, w := range weeks {
		switch {
		case math.IsNaN(macd[i]) || math.IsNaN(signal[i]):
			status[w.key] = models.WeeklyNeutral
		case macd[i] < signal[i]:
			status[w.key] = models.WeeklyDown
		case i > 0 && !math.IsNaN(hist[i-1]) && hist[i] > 0 && hist[i] < weakeningRatio*hist[i-1]:
			// Still technically in an uptrend, but momentum is exhausting.
			status[w.key] = models.WeeklyWeakening
		default:
			status[w.key] = models.WeeklyUp
		}
	}

	// A week's status applies to all of its constituent trading days.
	for i, b := range bars {
		if s, ok := status[keyFor(b)]; ok {
			out[i] = s
		}
	}
	return out
}

func macdSeries(closes []float64) (macd, signal, hist []float64) {
	fast := ema(closes, macdFast)
	slow := ema(closes, macdSlow)
	macd = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			macd[i] = fast[i] - slow[i]
		}
	}
	signal = ema(macd, macdSignal)
	hist = nanSlice(len(closes))
	for i := range closes {
		if !math.IsNaN(macd[i]) && !math.IsNaN(signal[i]) {
			hist[i] = macd[i] - signal[i]
		}
	}
	return macd, signal, hist
}
