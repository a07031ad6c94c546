package engine

import "math"

// Indicator series use NaN for "undefined": insufficient history or a
// degenerate window. A comparison against an undefined value never fires a
// trigger, so all threshold checks go through defLT/defGT.

func nanSlice(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

func defined(x float64) bool { return !math.IsNaN(x) }

func defLT(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b) && a < b
}

func defGT(a, b float64) bool {
	return !math.IsNaN(a) && !math.IsNaN(b) && a > b
}

// sma computes a simple moving average; NaN until the window is full.
func sma(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 || len(vals) < period {
		return out
	}
	sum := 0.0
	for i, v := range vals {
		sum += v
		if i >= period {
			sum -= vals[i-period]
		}
		if i >= period-1 {
			out[i] = sum / float64(period)
		}
	}
	return out
}

// ema computes an exponential moving average seeded with the SMA of the first
// full window. Leading NaNs in the input shift the seed forward, which lets
// EMA chains (MACD signal line) stay NaN until genuinely defined.
func ema(vals []float64, period int) []float64 {
	out := nanSlice(len(vals))
	if period <= 0 {
		return out
	}
	first := -1
	for i, v := range vals {
		if !math.IsNaN(v) {
			first = i
			break
		}
	}
	if first < 0 || len(vals)-first < period {
		return out
	}
	seedIdx := first + period - 1
	sum := 0.0
	for i := first; i <= seedIdx; i++ {
		sum += vals[i]
	}
	out[seedIdx] = sum / float64(period)
	k := 2.0 / float64(period+1)
	for i := seedIdx + 1; i < len(vals); i++ {
		out[i] = out[i-1] + k*(vals[i]-out[i-1])
	}
	return out
}

// rollingMeanPartial is a rolling mean that accepts partial windows: any day
// with at least one defined value in its trailing window gets a mean over the
// defined values only (min_periods=1 semantics). Early days degrade gracefully
// instead of being undefined.
func rollingMeanPartial(vals []float64, window int) []float64 {
	out := nanSlice(len(vals))
	for i := range vals {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum, n := 0.0, 0
		for j := lo; j <= i; j++ {
			if !math.IsNaN(vals[j]) {
				sum += vals[j]
				n++
			}
		}
		if n > 0 {
			out[i] = sum / float64(n)
		}
	}
	return out
}
