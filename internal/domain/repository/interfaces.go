package repository

import (
	"context"
	"time"

	"TrendGuard/internal/domain/models"
)

// BarStore provides read-only access to daily OHLCV bars. Implementations
// return an empty slice (not an error) when no data exists for the symbol;
// the engine treats that as the provider's "no data" signal.
type BarStore interface {
	GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error)
	GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.PriceBar, error)
}

// AlertPublisher delivers non-SAFE signals to downstream consumers.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, symbol string, rec models.SignalRecord) error
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordScan(symbol string)
	RecordSignal(symbol string, tier models.Tier)
	RecordError(kind string)
	RecordLastClose(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
