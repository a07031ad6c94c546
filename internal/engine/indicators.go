package engine

import (
	"math"

	"TrendGuard/internal/domain/models"
)

const (
	atrPeriod   = 14
	rsiPeriod   = 14
	chopPeriod  = 14
	volMAPeriod = 5

	// warmupDays is the engine's window floor: the largest lookback in use
	// (the volatility-profile window). No real signal is emitted before it.
	warmupDays = 60
)

var (
	slowTrendPeriods = []int{20, 25, 30}
	fastTrendPeriods = []int{5, 8, 12}
)

// bank holds every rolling indicator, precomputed once per run as whole-series
// passes. All series are index-aligned with the input bars and read-only after
// construction.
type bank struct {
	tr     []float64
	atr    []float64
	natr   []float64
	rsi    []float64
	chop   []float64
	sma20  []float64
	sma60  []float64
	volMA5 []float64

	// Adaptive trend lines at every period a regime may select.
	slow map[int][]float64
	fast map[int][]float64
}

func computeBank(bars []models.PriceBar) *bank {
	closes := make([]float64, len(bars))
	vols := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		vols[i] = b.Volume
	}

	b := &bank{
		tr:     trueRange(bars),
		sma20:  sma(closes, 20),
		sma60:  sma(closes, 60),
		volMA5: sma(vols, volMAPeriod),
		slow:   make(map[int][]float64, len(slowTrendPeriods)),
		fast:   make(map[int][]float64, len(fastTrendPeriods)),
	}
	b.atr = wilderSmooth(b.tr, atrPeriod)
	b.natr = natr(b.atr, closes)
	b.rsi = wilderRSI(closes, rsiPeriod)
	b.chop = choppiness(bars, b.tr, chopPeriod)
	for _, p := range slowTrendPeriods {
		b.slow[p] = kama(closes, p)
	}
	for _, p := range fastTrendPeriods {
		b.fast[p] = kama(closes, p)
	}
	return b
}

// trueRange uses the plain high-low range on the first bar, where no prior
// close exists.
func trueRange(bars []models.PriceBar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		if i == 0 {
			out[i] = b.High - b.Low
			continue
		}
		pc := bars[i-1].Close
		hl := b.High - b.Low
		hc := math.Abs(b.High - pc)
		lc := math.Abs(b.Low - pc)
		out[i] = math.Max(hl, math.Max(hc, lc))
	}
	return out
}

// wilderSmooth seeds with the SMA of the first period values, then applies
// Wilder's recursive smoothing. NaN until the seed window is full.
func wilderSmooth(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if len(vals) < period {
		return out
	}
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += vals[i]
	}
	out[period-1] = sum / float64(period)
	p := float64(period)
	for i := period; i < len(vals); i++ {
		out[i] = (out[i-1]*(p-1) + vals[i]) / p
	}
	return out
}

func natr(atr, closes []float64) []float64 {
	out := nanSlice(len(atr))
	for i := range atr {
		if !math.IsNaN(atr[i]) && closes[i] != 0 {
			out[i] = atr[i] / closes[i] * 100
		}
	}
	return out
}

// wilderRSI is RSI with Wilder smoothing of average gains and losses.
// Defined from index period onward; 100 when no losses occurred.
func wilderRSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) < period+1 {
		return out
	}
	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			avgGain += d
		} else {
			avgLoss -= d
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)
	out[period] = rsiValue(avgGain, avgLoss)
	p := float64(period)
	for i := period + 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if d > 0 {
			gain = d
		} else {
			loss = -d
		}
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// kama is a Kaufman-style adaptive moving average over period bars, seeded at
// the first close with a full efficiency window. A zero-volatility window
// yields efficiency 0 (the line goes flat, it does not blow up).
func kama(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if len(closes) <= period {
		return out
	}
	const (
		fastSC = 2.0 / (2 + 1)
		slowSC = 2.0 / (30 + 1)
	)
	prev := closes[period-1]
	for i := period; i < len(closes); i++ {
		change := math.Abs(closes[i] - closes[i-period])
		vol := 0.0
		for j := i - period + 1; j <= i; j++ {
			vol += math.Abs(closes[j] - closes[j-1])
		}
		er := 0.0
		if vol != 0 {
			er = change / vol
		}
		sc := er*(fastSC-slowSC) + slowSC
		sc *= sc
		prev += sc * (closes[i] - prev)
		out[i] = prev
	}
	return out
}

// choppiness computes the Choppiness Index over a trailing window:
// 100 * log10(sum(TR) / (maxHigh - minLow)) / log10(period).
// A zero high/low range is undefined, not an error; downstream comparisons
// treat NaN as "not triggered".
func choppiness(bars []models.PriceBar, tr []float64, period int) []float64 {
	out := nanSlice(len(bars))
	logP := math.Log10(float64(period))
	for i := period - 1; i < len(bars); i++ {
		sumTR := 0.0
		hh := math.Inf(-1)
		ll := math.Inf(1)
		for j := i - period + 1; j <= i; j++ {
			sumTR += tr[j]
			if bars[j].High > hh {
				hh = bars[j].High
			}
			if bars[j].Low < ll {
				ll = bars[j].Low
			}
		}
		rng := hh - ll
		if rng <= 0 || sumTR <= 0 {
			continue
		}
		out[i] = 100 * math.Log10(sumTR/rng) / logP
	}
	return out
}
