package models

// Requests for the signals HTTP endpoints. Defined in domain for consistency
// and reuse across handlers.

type SignalsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
	N      int    `query:"n" json:"n" default:"300" validate:"gte=61,lte=10000"`
}

type LatestSignalRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	N      int    `query:"n" json:"n" default:"300" validate:"gte=61,lte=10000"`
}

type BacktestRequest struct {
	Symbol    string                      `json:"symbol" validate:"required"`
	From      string                      `json:"from"`
	To        string                      `json:"to"`
	N         int                         `json:"n" default:"750" validate:"gte=61,lte=10000"`
	Overrides map[Regime]ProfileOverrides `json:"overrides,omitempty"`
}

type ScanRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=500,dive,required"`
}
