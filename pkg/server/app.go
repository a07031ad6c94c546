package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"TrendGuard/internal/domain/models"
	"TrendGuard/internal/domain/repository"
	icache "TrendGuard/internal/service/cache"
	"TrendGuard/internal/usecase"
	pkgch "TrendGuard/pkg/clickhouse"
	"TrendGuard/pkg/config"
	xhttp "TrendGuard/pkg/http"
	applogger "TrendGuard/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    xhttp.Handler
	scanner    *usecase.Scanner
	chClient   *pkgch.Client
	publisher  repository.AlertPublisher
	cache      icache.BytesCache
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	scanner *usecase.Scanner,
	chClient *pkgch.Client,
	publisher repository.AlertPublisher,
	cache icache.BytesCache,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		handler:   handler,
		scanner:   scanner,
		chClient:  chClient,
		publisher: publisher,
		cache:     cache,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.l),
	}
	if !a.cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(""))
	} else if a.cfg.Metrics.Path != "" {
		opts = append(opts, xhttp.WithMetricsPath(a.cfg.Metrics.Path))
	}
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Warm the configured universe once at startup so alerts reflect the
	// latest session as soon as the process is up.
	if a.scanner != nil && len(a.cfg.Scan.Symbols) > 0 {
		go func() {
			results := a.scanner.Scan(ctx, a.cfg.Scan.Symbols)
			flagged := 0
			for _, r := range results {
				if r.Record != nil && r.Record.Tier != models.TierSafe {
					flagged++
				}
			}
			a.l.Info("startup scan complete",
				applogger.Int("symbols", len(results)),
				applogger.Int("flagged", flagged),
			)
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("alert publisher close error", applogger.Error(err))
		}
	}

	if c, ok := a.cache.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
