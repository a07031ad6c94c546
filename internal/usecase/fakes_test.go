package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"TrendGuard/internal/domain/models"
)

var errStoreDown = errors.New("store down")

type fakeStore struct {
	bars map[string][]models.PriceBar
	errs map[string]error
}

func (f *fakeStore) GetDailyBars(_ context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	var out []models.PriceBar
	for _, b := range f.bars[symbol] {
		if !b.Date.Before(from) && !b.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetLatestNBars(_ context.Context, symbol string, n int) ([]models.PriceBar, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	bars := f.bars[symbol]
	if len(bars) > n {
		bars = bars[len(bars)-n:]
	}
	return bars, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	alerts []models.AlertEvent
	err    error
}

func (f *fakePublisher) PublishAlert(_ context.Context, symbol string, rec models.SignalRecord) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alerts = append(f.alerts, models.AlertEvent{
		Symbol: symbol, Date: rec.Date, Price: rec.Price, Tier: rec.Tier, Reasons: rec.Reasons,
	})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	mu      sync.Mutex
	scans   int
	signals map[models.Tier]int
	errs    map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{signals: make(map[models.Tier]int), errs: make(map[string]int)}
}

func (m *fakeMetrics) RecordScan(string) {
	m.mu.Lock()
	m.scans++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordSignal(_ string, tier models.Tier) {
	m.mu.Lock()
	m.signals[tier]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errs[kind]++
	m.mu.Unlock()
}

func (m *fakeMetrics) RecordLastClose(string, float64) {}
func (m *fakeMetrics) RecordLatency(string, float64)   {}

// tradingDays returns n consecutive weekday dates starting Monday 2024-01-01.
func tradingDays(n int) []time.Time {
	out := make([]time.Time, 0, n)
	d := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for len(out) < n {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			out = append(out, d)
		}
		d = d.AddDate(0, 0, 1)
	}
	return out
}

func flatSeries(symbol string, n int) []models.PriceBar {
	days := tradingDays(n)
	out := make([]models.PriceBar, n)
	for i := range out {
		out[i] = models.PriceBar{
			Date: days[i], Symbol: symbol,
			Open: 100, High: 100, Low: 100, Close: 100, Volume: 1000,
		}
	}
	return out
}

// gapDownSeries is flat except the final day, which gaps below the prior low
// and never recovers. The last record classifies STRONG_SELL.
func gapDownSeries(symbol string, n int) []models.PriceBar {
	out := flatSeries(symbol, n)
	last := &out[n-1]
	last.Open = 99
	last.High = 99
	last.Low = 98.9
	last.Close = 98.9
	return out
}
