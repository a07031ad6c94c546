package models

import "time"

// Tier is the severity of a daily reversal signal.
type Tier string

const (
	TierSafe       Tier = "SAFE"
	TierSell       Tier = "SELL"
	TierStrongSell Tier = "STRONG_SELL"
)

// WeeklyStatus is the weekly-timeframe momentum classification back-mapped onto
// daily rows.
type WeeklyStatus string

const (
	WeeklyUp        WeeklyStatus = "UP"
	WeeklyDown      WeeklyStatus = "DOWN"
	WeeklyWeakening WeeklyStatus = "WEAKENING"
	WeeklyNeutral   WeeklyStatus = "NEUTRAL"
)

// Trigger names recorded in SignalRecord.Reasons, in fixed evaluation order.
const (
	ReasonLowChopBreakout = "Low_Chop_Breakout"
	ReasonGapDown         = "Gap_Down"
	ReasonZhabanTrap      = "Zhaban_Trap"
	ReasonTrendBreakdown  = "Trend_Breakdown"
	ReasonLimitUpTrap     = "Limit_Up_Trap"
	ReasonChurning        = "Churning"
	ReasonRSIOverheat     = "RSI_Overheat"
)

// SignalRecord is the per-day engine output. Reasons is non-empty exactly when
// Tier is not SAFE.
type SignalRecord struct {
	Date    time.Time `json:"date"`
	Price   float64   `json:"price"`
	Tier    Tier      `json:"tier"`
	Reasons []string  `json:"reasons,omitempty"`
}

// ScanResult is the latest signal for one symbol from a multi-symbol scan.
// Err carries a per-symbol failure without aborting the rest of the scan.
type ScanResult struct {
	Symbol string        `json:"symbol"`
	Record *SignalRecord `json:"record,omitempty"`
	Err    string        `json:"error,omitempty"`
}

// AlertEvent is the wire form of a non-SAFE signal published to the alert topic.
type AlertEvent struct {
	Symbol  string    `json:"symbol"`
	Date    time.Time `json:"date"`
	Price   float64   `json:"price"`
	Tier    Tier      `json:"tier"`
	Reasons []string  `json:"reasons"`
}
