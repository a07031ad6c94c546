package models

// TierStats aggregates forward-looking outcomes for one signal tier.
type TierStats struct {
	Total     int     `json:"total"`
	Good      int     `json:"good"`
	Bad       int     `json:"bad"`
	Neutral   int     `json:"neutral"`
	Precision float64 `json:"precision"`
}

// BacktestReport is the evaluator output: per-tier precision of SELL and
// STRONG_SELL signals against realized future prices.
type BacktestReport struct {
	Symbol     string    `json:"symbol,omitempty"`
	Bars       int       `json:"bars"`
	Skipped    int       `json:"skipped"` // deduplicated by cooldown or missing forward window
	Sell       TierStats `json:"sell"`
	StrongSell TierStats `json:"strong_sell"`
}
