package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TrendGuard/internal/domain/models"
	domrepo "TrendGuard/internal/domain/repository"
	"TrendGuard/internal/engine"
	applogger "TrendGuard/pkg/logger"
	"TrendGuard/pkg/util"
)

// ErrNoData marks a symbol with no stored bars. Handlers map it to 404.
var ErrNoData = errors.New("no bars for symbol")

// SignalService resolves bars for a symbol and runs the classification engine
// over them. Deployment-level parameter overrides come from config; the
// service itself holds no per-request state.
type SignalService struct {
	store     domrepo.BarStore
	metrics   domrepo.Metrics
	overrides models.Overrides
	l         *applogger.Logger
}

func NewSignalService(store domrepo.BarStore, metrics domrepo.Metrics, overrides models.Overrides, l *applogger.Logger) *SignalService {
	return &SignalService{store: store, metrics: metrics, overrides: overrides, l: l}
}

// GetSignals returns one record per stored trading day for the symbol.
func (s *SignalService) GetSignals(ctx context.Context, req models.SignalsRequest) ([]models.SignalRecord, error) {
	start := time.Now()
	bars, err := s.resolveBars(ctx, req.Symbol, req.From, req.To, req.N)
	if err != nil {
		return nil, err
	}

	records, err := engine.New(engine.WithOverrides(s.overrides)).Run(bars)
	if err != nil {
		s.metrics.RecordError("engine")
		return nil, fmt.Errorf("run engine for %s: %w", req.Symbol, err)
	}

	s.metrics.RecordScan(req.Symbol)
	s.metrics.RecordLatency("signals", time.Since(start).Seconds())
	if n := len(records); n > 0 {
		s.metrics.RecordLastClose(req.Symbol, records[n-1].Price)
	}
	return records, nil
}

// GetLatest returns the most recent day's record for the symbol.
func (s *SignalService) GetLatest(ctx context.Context, req models.LatestSignalRequest) (*models.SignalRecord, error) {
	records, err := s.GetSignals(ctx, models.SignalsRequest{Symbol: req.Symbol, N: req.N})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, req.Symbol)
	}
	rec := records[len(records)-1]
	return &rec, nil
}

// Overrides exposes the deployment-level overrides for services composing
// their own engine runs.
func (s *SignalService) Overrides() models.Overrides {
	return s.overrides
}

func (s *SignalService) resolveBars(ctx context.Context, symbol, from, to string, n int) ([]models.PriceBar, error) {
	var (
		bars []models.PriceBar
		err  error
	)
	if from != "" || to != "" {
		fromT := util.ParseDateDefault(from, time.Time{})
		toT := util.ParseDateDefault(to, time.Now().UTC())
		bars, err = s.store.GetDailyBars(ctx, symbol, fromT, toT)
	} else {
		bars, err = s.store.GetLatestNBars(ctx, symbol, n)
	}
	if err != nil {
		s.metrics.RecordError("store")
		return nil, fmt.Errorf("load bars for %s: %w", symbol, err)
	}
	if len(bars) == 0 {
		if s.l != nil {
			s.l.Warn("no bars for symbol", applogger.String("symbol", symbol))
		}
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return bars, nil
}
