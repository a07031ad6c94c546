package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"TrendGuard/internal/domain/models"
	pkgch "TrendGuard/pkg/clickhouse"
	applogger "TrendGuard/pkg/logger"
)

const dailyBarsTable = "trendguard.daily_bars"

// SchemaStatements returns the idempotent DDL for the daily bar table.
func SchemaStatements() []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS trendguard`,
		`CREATE TABLE IF NOT EXISTS ` + dailyBarsTable + ` (
            day    Date,
            symbol LowCardinality(String),
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            vol    Float64
        ) ENGINE = ReplacingMergeTree
        PARTITION BY toYYYYMM(day)
        ORDER BY (symbol, day)`,
	}
}

// CHBarStore implements BarStore backed by ClickHouse. Bars come back in
// ascending date order; a symbol with no rows yields an empty slice.
type CHBarStore struct {
	db *sql.DB
	l  *applogger.Logger
}

func NewCHBarStore(ch *pkgch.Client) *CHBarStore {
	return &CHBarStore{db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHBarStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHBarStore) GetDailyBars(ctx context.Context, symbol string, from, to time.Time) ([]models.PriceBar, error) {
	start := time.Now()
	const q = `
        SELECT day, symbol, open, high, low, close, vol
        FROM ` + dailyBarsTable + `
        WHERE symbol = ? AND day >= ? AND day <= ?
        ORDER BY day ASC
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to)
	if err != nil {
		s.logError("daily_bars query error", symbol, err)
		return nil, fmt.Errorf("get daily bars: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceBar, 0, 1024)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.logError("daily_bars scan error", symbol, err)
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		s.logError("daily_bars rows error", symbol, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	if s.l != nil {
		s.l.Debug("clickhouse daily_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

func (s *CHBarStore) GetLatestNBars(ctx context.Context, symbol string, n int) ([]models.PriceBar, error) {
	start := time.Now()
	const q = `
        SELECT day, symbol, open, high, low, close, vol
        FROM ` + dailyBarsTable + `
        WHERE symbol = ?
        ORDER BY day DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, n)
	if err != nil {
		s.logError("latest_bars query error", symbol, err)
		return nil, fmt.Errorf("get latest bars: %w", err)
	}
	defer rows.Close()

	tmp := make([]models.PriceBar, 0, n)
	for rows.Next() {
		var b models.PriceBar
		if err := rows.Scan(&b.Date, &b.Symbol, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			s.logError("latest_bars scan error", symbol, err)
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		tmp = append(tmp, b)
	}
	if err := rows.Err(); err != nil {
		s.logError("latest_bars rows error", symbol, err)
		return nil, fmt.Errorf("rows: %w", err)
	}
	// reverse to ASC for the engine
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Debug("clickhouse latest_bars ok",
			applogger.String("symbol", symbol),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func (s *CHBarStore) logError(msg, symbol string, err error) {
	if s.l != nil {
		s.l.Error(msg,
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
	}
}
