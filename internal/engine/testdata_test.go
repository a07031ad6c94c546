package engine

import (
	"time"

	"TrendGuard/internal/domain/models"
)

// tradingDays returns n consecutive weekday dates starting Monday 2024-01-01,
// so five bars map onto exactly one ISO calendar week.
func tradingDays(n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

// flatBars builds a perfectly flat series: every trigger compares equal, never
// strictly beyond its threshold.
func flatBars(n int, price float64) []models.PriceBar {
	days := tradingDays(n)
	out := make([]models.PriceBar, n)
	for i := range out {
		out[i] = models.PriceBar{
			Date: days[i], Open: price, High: price, Low: price, Close: price, Volume: 1000,
		}
	}
	return out
}

// rangeBars builds a flat-close series with a fixed daily high/low range, so
// ATR is defined and stable.
func rangeBars(n int, price, halfRange float64) []models.PriceBar {
	days := tradingDays(n)
	out := make([]models.PriceBar, n)
	for i := range out {
		out[i] = models.PriceBar{
			Date: days[i], Open: price, High: price + halfRange, Low: price - halfRange,
			Close: price, Volume: 1000,
		}
	}
	return out
}

// closesBars builds bars from a close series with a small intraday range
// around each close.
func closesBars(closes []float64) []models.PriceBar {
	days := tradingDays(len(closes))
	out := make([]models.PriceBar, len(closes))
	for i, c := range closes {
		out[i] = models.PriceBar{
			Date: days[i], Open: c, High: c * 1.002, Low: c * 0.998, Close: c, Volume: 1000,
		}
	}
	return out
}

// noisyBars builds a deterministic pseudo-random walk for property tests.
func noisyBars(n int, seed int64) []models.PriceBar {
	days := tradingDays(n)
	out := make([]models.PriceBar, n)
	r := seed
	next := func() float64 {
		r = (r*1103515245 + 12345) % (1 << 31)
		return float64(r) / float64(1<<31) // [0,1)
	}
	price := 100.0
	for i := range out {
		open := price
		price *= 1 + (next()-0.5)*0.06
		high := open * (1 + next()*0.02)
		low := open * (1 - next()*0.02)
		if price > high {
			high = price
		}
		if price < low {
			low = price
		}
		out[i] = models.PriceBar{
			Date: days[i], Open: open, High: high, Low: low, Close: price,
			Volume: 500 + next()*5000,
		}
	}
	return out
}
