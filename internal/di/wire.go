//go:build wireinject
// +build wireinject

package di

import (
	"TrendGuard/pkg/config"
	"TrendGuard/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Foundation
		ProvideLogger,
		ProvideOverrides,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideAlertPublisher,
		ProvideCache,

		// Repositories
		ProvideBarStore,

		// Use cases
		ProvideSignalService,
		ProvideBacktestService,
		ProvideScanner,

		// HTTP handler and application server
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
