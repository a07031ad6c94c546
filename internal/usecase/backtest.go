package usecase

import (
	"context"
	"fmt"
	"time"

	"TrendGuard/internal/domain/models"
	domrepo "TrendGuard/internal/domain/repository"
	"TrendGuard/internal/engine"
	applogger "TrendGuard/pkg/logger"
)

// BacktestService replays the engine over stored history and scores emitted
// signals against realized forward prices. Per-request overrides feed the
// parameter grid search; absent ones fall back to the deployment defaults.
type BacktestService struct {
	signals *SignalService
	store   domrepo.BarStore
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewBacktestService(signals *SignalService, store domrepo.BarStore, metrics domrepo.Metrics, l *applogger.Logger) *BacktestService {
	return &BacktestService{signals: signals, store: store, metrics: metrics, l: l}
}

func (b *BacktestService) Run(ctx context.Context, req models.BacktestRequest) (*models.BacktestReport, error) {
	start := time.Now()
	bars, err := b.signals.resolveBars(ctx, req.Symbol, req.From, req.To, req.N)
	if err != nil {
		return nil, err
	}

	overrides := b.signals.Overrides()
	if len(req.Overrides) > 0 {
		overrides = req.Overrides
	}

	records, err := engine.New(engine.WithOverrides(overrides)).Run(bars)
	if err != nil {
		b.metrics.RecordError("engine")
		return nil, fmt.Errorf("run engine for %s: %w", req.Symbol, err)
	}

	report := engine.Evaluate(bars, records)
	report.Symbol = req.Symbol

	b.metrics.RecordLatency("backtest", time.Since(start).Seconds())
	if b.l != nil {
		b.l.Info("backtest complete",
			applogger.String("symbol", req.Symbol),
			applogger.Int("bars", report.Bars),
			applogger.Int("skipped", report.Skipped),
			applogger.Int("sell_total", report.Sell.Total),
			applogger.Int("strong_sell_total", report.StrongSell.Total),
		)
	}
	return &report, nil
}
