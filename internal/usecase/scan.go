package usecase

import (
	"context"
	"sync"
	"time"

	"TrendGuard/internal/domain/models"
	domrepo "TrendGuard/internal/domain/repository"
	"TrendGuard/internal/engine"
	applogger "TrendGuard/pkg/logger"
)

const (
	defaultScanWorkers  = 8
	defaultLookbackDays = 300
)

// Scanner evaluates the latest signal for many symbols concurrently and
// publishes non-SAFE outcomes to the alert topic. One symbol's failure never
// aborts the rest of the scan.
type Scanner struct {
	store     domrepo.BarStore
	publisher domrepo.AlertPublisher
	metrics   domrepo.Metrics
	overrides models.Overrides
	workers   int
	lookback  int
	l         *applogger.Logger
}

type ScannerOption func(*Scanner)

// WithWorkers bounds scan concurrency.
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLookback sets how many trading days each evaluation loads.
func WithLookback(days int) ScannerOption {
	return func(s *Scanner) {
		if days > 0 {
			s.lookback = days
		}
	}
}

func NewScanner(store domrepo.BarStore, publisher domrepo.AlertPublisher, metrics domrepo.Metrics, overrides models.Overrides, l *applogger.Logger, opts ...ScannerOption) *Scanner {
	s := &Scanner{
		store:     store,
		publisher: publisher,
		metrics:   metrics,
		overrides: overrides,
		workers:   defaultScanWorkers,
		lookback:  defaultLookbackDays,
		l:         l,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan fans symbols out over a bounded worker pool. Results keep the input
// order.
func (s *Scanner) Scan(ctx context.Context, symbols []string) []models.ScanResult {
	start := time.Now()
	results := make([]models.ScanResult, len(symbols))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := s.workers
	if workers > len(symbols) {
		workers = len(symbols)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.scanOne(ctx, symbols[i])
			}
		}()
	}
	for i := range symbols {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	s.metrics.RecordLatency("scan", time.Since(start).Seconds())
	if s.l != nil {
		s.l.Info("scan complete",
			applogger.Int("symbols", len(symbols)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return results
}

func (s *Scanner) scanOne(ctx context.Context, symbol string) models.ScanResult {
	res := models.ScanResult{Symbol: symbol}
	s.metrics.RecordScan(symbol)

	bars, err := s.store.GetLatestNBars(ctx, symbol, s.lookback)
	if err != nil {
		s.metrics.RecordError("store")
		res.Err = err.Error()
		return res
	}
	if len(bars) == 0 {
		res.Err = ErrNoData.Error()
		return res
	}

	records, err := engine.New(engine.WithOverrides(s.overrides)).Run(bars)
	if err != nil {
		s.metrics.RecordError("engine")
		res.Err = err.Error()
		return res
	}

	rec := records[len(records)-1]
	res.Record = &rec
	s.metrics.RecordSignal(symbol, rec.Tier)
	s.metrics.RecordLastClose(symbol, rec.Price)

	if rec.Tier != models.TierSafe && s.publisher != nil {
		if err := s.publisher.PublishAlert(ctx, symbol, rec); err != nil {
			s.metrics.RecordError("publish")
			if s.l != nil {
				s.l.Warn("alert publish failed during scan",
					applogger.String("symbol", symbol),
					applogger.Error(err),
				)
			}
		}
	}
	return res
}
