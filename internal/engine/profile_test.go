package engine

import (
	"testing"

	"TrendGuard/internal/domain/models"
)

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }
func bptr(v bool) *bool       { return &v }

func constSeries(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestDefaultProfiles(t *testing.T) {
	hb := defaultProfile(models.RegimeHighBeta)
	if hb.ChopThreshold != 50.0 || hb.SlowTrendPeriod != 30 || hb.FastTrendPeriod != 5 {
		t.Fatalf("high-beta defaults wrong: %+v", hb)
	}
	if hb.IgnoreWeakening || hb.RequireMA60Break {
		t.Fatalf("high-beta gates wrong: %+v", hb)
	}

	lb := defaultProfile(models.RegimeLowBeta)
	if lb.ChopThreshold != 65.0 || lb.SlowTrendPeriod != 25 || lb.FastTrendPeriod != 12 {
		t.Fatalf("low-beta defaults wrong: %+v", lb)
	}
	if !lb.IgnoreWeakening || !lb.RequireMA60Break || lb.RSICeiling != 80 {
		t.Fatalf("low-beta gates wrong: %+v", lb)
	}

	n := defaultProfile(models.RegimeNormal)
	if n.ChopThreshold != 61.8 || n.VolumeMultiplier != 1.5 || n.SlowTrendPeriod != 20 || n.FastTrendPeriod != 8 {
		t.Fatalf("normal defaults wrong: %+v", n)
	}
}

func TestComputeProfilesRegimes(t *testing.T) {
	cases := []struct {
		name string
		natr float64
		want models.Regime
	}{
		{"high volatility", 5.0, models.RegimeHighBeta},
		{"low volatility", 1.0, models.RegimeLowBeta},
		{"middle", 2.5, models.RegimeNormal},
		{"exactly at high bound", 3.5, models.RegimeNormal},
		{"exactly at low bound", 2.0, models.RegimeNormal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			profiles := computeProfiles(constSeries(70, tc.natr), nil)
			for i, p := range profiles {
				if p.Regime != tc.want {
					t.Fatalf("regime[%d] = %s, want %s", i, p.Regime, tc.want)
				}
			}
		})
	}
}

func TestComputeProfilesUndefinedNATR(t *testing.T) {
	profiles := computeProfiles(nanSlice(70), nil)
	for i, p := range profiles {
		if p.Regime != models.RegimeNormal {
			t.Fatalf("regime[%d] = %s with no NATR history, want NORMAL", i, p.Regime)
		}
	}
}

func TestComputeProfilesPartialWindow(t *testing.T) {
	// A single defined NATR value classifies from day one; the rolling mean
	// does not wait for a full 60-day window.
	profiles := computeProfiles(constSeries(5, 5.0), nil)
	if profiles[0].Regime != models.RegimeHighBeta {
		t.Fatalf("regime[0] = %s, want HIGH_BETA from a partial window", profiles[0].Regime)
	}
}

func TestApplyOverrides(t *testing.T) {
	base := defaultProfile(models.RegimeNormal)

	got := applyOverrides(base, models.ProfileOverrides{
		ChopThreshold:    fptr(55),
		VolumeMultiplier: fptr(2.5),
		SlowTrendPeriod:  iptr(25),
		FastTrendPeriod:  iptr(12),
		RSICeiling:       fptr(70),
		IgnoreWeakening:  bptr(true),
		RequireMA60Break: bptr(true),
	})
	if got.ChopThreshold != 55 || got.VolumeMultiplier != 2.5 || got.RSICeiling != 70 {
		t.Fatalf("threshold overrides not applied: %+v", got)
	}
	if got.SlowTrendPeriod != 25 || got.FastTrendPeriod != 12 {
		t.Fatalf("trend period overrides not applied: %+v", got)
	}
	if !got.IgnoreWeakening || !got.RequireMA60Break {
		t.Fatalf("gate overrides not applied: %+v", got)
	}

	unchanged := applyOverrides(base, models.ProfileOverrides{})
	if unchanged != base {
		t.Fatalf("empty overrides mutated the profile: %+v", unchanged)
	}
}

func TestApplyOverridesRejectsUnknownTrendPeriod(t *testing.T) {
	base := defaultProfile(models.RegimeNormal)
	got := applyOverrides(base, models.ProfileOverrides{
		SlowTrendPeriod: iptr(21),
		FastTrendPeriod: iptr(7),
	})
	if got.SlowTrendPeriod != base.SlowTrendPeriod || got.FastTrendPeriod != base.FastTrendPeriod {
		t.Fatalf("unsupported trend period accepted: %+v", got)
	}
}

func TestOverridesTargetOnlyTheirRegime(t *testing.T) {
	ov := models.Overrides{
		models.RegimeHighBeta: {ChopThreshold: fptr(40)},
	}
	profiles := computeProfiles(constSeries(10, 2.5), ov)
	for i, p := range profiles {
		if p.ChopThreshold != 61.8 {
			t.Fatalf("normal-regime day %d picked up a high-beta override: %+v", i, p)
		}
	}
	hot := computeProfiles(constSeries(10, 5.0), ov)
	for i, p := range hot {
		if p.ChopThreshold != 40 {
			t.Fatalf("high-beta day %d missing its override: %+v", i, p)
		}
	}
}
