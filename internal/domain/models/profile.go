package models

// Regime classifies a day's prevailing volatility character.
type Regime string

const (
	RegimeNormal   Regime = "NORMAL"
	RegimeHighBeta Regime = "HIGH_BETA"
	RegimeLowBeta  Regime = "LOW_BETA"
)

// VolatilityProfile is the per-day decision parameter bundle selected by regime.
// It is derived on every run and never persisted on its own.
type VolatilityProfile struct {
	Regime           Regime  `json:"regime"`
	ChopThreshold    float64 `json:"chop_threshold"`
	VolumeMultiplier float64 `json:"volume_multiplier"`
	SlowTrendPeriod  int     `json:"slow_trend_period"`
	FastTrendPeriod  int     `json:"fast_trend_period"`
	RSICeiling       float64 `json:"rsi_ceiling"`
	IgnoreWeakening  bool    `json:"ignore_weakening"`
	RequireMA60Break bool    `json:"require_ma60_break"`
}

// ProfileOverrides replaces individual parameters of one regime's bundle.
// Nil fields keep the default. Used by the grid-search tuning surface.
type ProfileOverrides struct {
	ChopThreshold    *float64 `yaml:"chop_threshold" json:"chop_threshold,omitempty"`
	VolumeMultiplier *float64 `yaml:"volume_multiplier" json:"volume_multiplier,omitempty"`
	SlowTrendPeriod  *int     `yaml:"slow_trend_period" json:"slow_trend_period,omitempty"`
	FastTrendPeriod  *int     `yaml:"fast_trend_period" json:"fast_trend_period,omitempty"`
	RSICeiling       *float64 `yaml:"rsi_ceiling" json:"rsi_ceiling,omitempty"`
	IgnoreWeakening  *bool    `yaml:"ignore_weakening" json:"ignore_weakening,omitempty"`
	RequireMA60Break *bool    `yaml:"require_ma60_break" json:"require_ma60_break,omitempty"`
}

// Overrides maps a regime to its parameter overrides.
type Overrides map[Regime]ProfileOverrides
