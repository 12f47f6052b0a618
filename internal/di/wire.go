//go:build wireinject
// +build wireinject

package di

import (
	"EarningsPull/pkg/config"
	"EarningsPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,
		ProvideLocation,

		// Shared outbound plumbing
		ProvideHTTPClient,
		ProvideLimiter,

		// Source adapters
		ProvideRoster,
		ProvideAnnouncements,
		ProvidePrices,
		ProvideDetails,
		ProvideQuotes,

		// Persistence and sinks
		ProvideSnapshotStore,
		ProvideReactionSink,

		// Use cases
		ProvideFetchPool,
		ProvideCompanyInfo,
		ProvideRefresher,

		// HTTP surface
		ProvideHTTPHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
