package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"TrendGuard/internal/domain/models"
	"TrendGuard/internal/engine"
	icache "TrendGuard/internal/service/cache"
	apimetrics "TrendGuard/internal/service/metrics"
	"TrendGuard/internal/service/ratelimit"
	"TrendGuard/internal/usecase"
	xhttp "TrendGuard/pkg/http"
	xlogger "TrendGuard/pkg/logger"

	"github.com/labstack/echo/v4"
)

const (
	scanBurst     = 3
	scanPerSecond = 0.2
)

// SignalsEchoHandler exposes the engine over HTTP. Read endpoints are cached;
// the scan endpoint is rate limited per client since one call fans out into
// hundreds of engine runs.
type SignalsEchoHandler struct {
	logger      *xlogger.Logger
	signals     *usecase.SignalService
	backtest    *usecase.BacktestService
	scanner     *usecase.Scanner
	cache       icache.BytesCache
	limiter     *ratelimit.Limiter
	signalsTTL  time.Duration
	backtestTTL time.Duration
	health      func(ctx context.Context) error
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	signals *usecase.SignalService,
	backtest *usecase.BacktestService,
	scanner *usecase.Scanner,
	cache icache.BytesCache,
	signalsTTL, backtestTTL time.Duration,
) *SignalsEchoHandler {
	apimetrics.Register()
	return &SignalsEchoHandler{
		logger:      logger,
		signals:     signals,
		backtest:    backtest,
		scanner:     scanner,
		cache:       cache,
		limiter:     ratelimit.New(),
		signalsTTL:  signalsTTL,
		backtestTTL: backtestTTL,
	}
}

// SetHealthCheck injects the infrastructure health probe for /healthz.
func (h *SignalsEchoHandler) SetHealthCheck(fn func(ctx context.Context) error) {
	h.health = fn
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.GET("/signals/latest", h.LatestSignal)
	g.POST("/backtest", h.Backtest)
	g.POST("/scan", h.Scan)
	e.GET("/healthz", h.Health)
}

func (h *SignalsEchoHandler) Signals(c echo.Context) error {
	start := time.Now()
	defer func() { apimetrics.ApiLatency.WithLabelValues("signals").Observe(time.Since(start).Seconds()) }()

	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	key := fmt.Sprintf("signals:%s:%s:%s:%d", req.Symbol, req.From, req.To, req.N)
	if b, ok := h.cached(key); ok {
		return c.JSONBlob(http.StatusOK, b)
	}

	records, err := h.signals.GetSignals(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "signals", err)
	}

	return h.respondCached(c, key, h.signalsTTL, records)
}

func (h *SignalsEchoHandler) LatestSignal(c echo.Context) error {
	start := time.Now()
	defer func() { apimetrics.ApiLatency.WithLabelValues("latest").Observe(time.Since(start).Seconds()) }()

	req := &models.LatestSignalRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec, err := h.signals.GetLatest(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "latest", err)
	}
	return xhttp.SuccessResponse(c, rec)
}

func (h *SignalsEchoHandler) Backtest(c echo.Context) error {
	start := time.Now()
	defer func() { apimetrics.ApiLatency.WithLabelValues("backtest").Observe(time.Since(start).Seconds()) }()

	req := &models.BacktestRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	// Only parameterless runs are cacheable; override grids change results.
	key := ""
	if len(req.Overrides) == 0 {
		key = fmt.Sprintf("backtest:%s:%s:%s:%d", req.Symbol, req.From, req.To, req.N)
		if b, ok := h.cached(key); ok {
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	report, err := h.backtest.Run(c.Request().Context(), *req)
	if err != nil {
		return h.fail(c, "backtest", err)
	}
	if key == "" {
		return xhttp.SuccessResponse(c, report)
	}
	return h.respondCached(c, key, h.backtestTTL, report)
}

func (h *SignalsEchoHandler) Scan(c echo.Context) error {
	start := time.Now()
	defer func() { apimetrics.ApiLatency.WithLabelValues("scan").Observe(time.Since(start).Seconds()) }()

	if !h.limiter.Allow(c.RealIP(), scanBurst, scanPerSecond) {
		apimetrics.ApiErrors.WithLabelValues("scan").Inc()
		return xhttp.TooManyRequestsResponse(c, "scan budget exhausted, retry later")
	}

	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	results := h.scanner.Scan(c.Request().Context(), req.Symbols)
	return xhttp.ListResponse(c, results, int64(len(results)))
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SignalsEchoHandler) fail(c echo.Context, endpoint string, err error) error {
	apimetrics.ApiErrors.WithLabelValues(endpoint).Inc()
	switch {
	case errors.Is(err, usecase.ErrNoData):
		return xhttp.NotFoundResponse(c, err.Error())
	case errors.Is(err, engine.ErrMalformedSeries):
		h.logger.Error("stored series is malformed", xlogger.Error(err))
		return xhttp.BadRequestResponse(c, err.Error())
	default:
		h.logger.Error(endpoint+" usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
}

func (h *SignalsEchoHandler) cached(key string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	return b, true
}

// respondCached writes the standard envelope and stores the rendered bytes
// for subsequent identical requests.
func (h *SignalsEchoHandler) respondCached(c echo.Context, key string, ttl time.Duration, data interface{}) error {
	body := xhttp.APIResponse{
		Status:  http.StatusOK,
		Message: http.StatusText(http.StatusOK),
		Data:    data,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return xhttp.SuccessResponse(c, data)
	}
	if h.cache != nil && ttl > 0 {
		if cerr := h.cache.SetBytes(key, b, ttl); cerr != nil && h.logger != nil {
			h.logger.Warn("response cache write failed", xlogger.Error(cerr))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}
