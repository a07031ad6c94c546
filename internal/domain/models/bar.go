package models

import "time"

// PriceBar is one daily OHLCV bar. A series is date-ascending with no duplicate
// dates and is treated as immutable once loaded.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Symbol string    `json:"symbol,omitempty"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}
