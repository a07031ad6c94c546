package engine

import "TrendGuard/internal/domain/models"

const (
	natrWindow   = 60
	highBetaNATR = 3.5
	lowBetaNATR  = 2.0
)

// defaultProfile returns the built-in parameter bundle for a regime.
func defaultProfile(r models.Regime) models.VolatilityProfile {
	switch r {
	case models.RegimeHighBeta:
		return models.VolatilityProfile{
			Regime:           models.RegimeHighBeta,
			ChopThreshold:    50.0,
			VolumeMultiplier: 2.0,
			SlowTrendPeriod:  30,
			FastTrendPeriod:  5,
			RSICeiling:       75,
		}
	case models.RegimeLowBeta:
		return models.VolatilityProfile{
			Regime:           models.RegimeLowBeta,
			ChopThreshold:    65.0,
			VolumeMultiplier: 1.2,
			SlowTrendPeriod:  25,
			FastTrendPeriod:  12,
			RSICeiling:       80,
			IgnoreWeakening:  true,
			RequireMA60Break: true,
		}
	default:
		return models.VolatilityProfile{
			Regime:           models.RegimeNormal,
			ChopThreshold:    61.8,
			VolumeMultiplier: 1.5,
			SlowTrendPeriod:  20,
			FastTrendPeriod:  8,
			RSICeiling:       75,
		}
	}
}

// computeProfiles classifies each day into a volatility regime from the rolling
// NATR mean and emits its parameter bundle. The HIGH_BETA test runs first; the
// 3.5/2.0 thresholds are disjoint so a day can never satisfy both.
func computeProfiles(natr []float64, ov models.Overrides) []models.VolatilityProfile {
	avg := rollingMeanPartial(natr, natrWindow)
	out := make([]models.VolatilityProfile, len(natr))
	for i := range natr {
		var r models.Regime
		switch {
		case defGT(avg[i], highBetaNATR):
			r = models.RegimeHighBeta
		case defLT(avg[i], lowBetaNATR):
			r = models.RegimeLowBeta
		default:
			// Includes an undefined average: the profile degrades to NORMAL
			// rather than being undefined.
			r = models.RegimeNormal
		}
		out[i] = applyOverrides(defaultProfile(r), ov[r])
	}
	return out
}

func applyOverrides(p models.VolatilityProfile, ov models.ProfileOverrides) models.VolatilityProfile {
	if ov.ChopThreshold != nil {
		p.ChopThreshold = *ov.ChopThreshold
	}
	if ov.VolumeMultiplier != nil {
		p.VolumeMultiplier = *ov.VolumeMultiplier
	}
	if ov.SlowTrendPeriod != nil && validTrendPeriod(*ov.SlowTrendPeriod, slowTrendPeriods) {
		p.SlowTrendPeriod = *ov.SlowTrendPeriod
	}
	if ov.FastTrendPeriod != nil && validTrendPeriod(*ov.FastTrendPeriod, fastTrendPeriods) {
		p.FastTrendPeriod = *ov.FastTrendPeriod
	}
	if ov.RSICeiling != nil {
		p.RSICeiling = *ov.RSICeiling
	}
	if ov.IgnoreWeakening != nil {
		p.IgnoreWeakening = *ov.IgnoreWeakening
	}
	if ov.RequireMA60Break != nil {
		p.RequireMA60Break = *ov.RequireMA60Break
	}
	return p
}

// validTrendPeriod restricts overrides to the precomputed trend-line variants.
func validTrendPeriod(p int, allowed []int) bool {
	for _, a := range allowed {
		if p == a {
			return true
		}
	}
	return false
}
