//go:build wireinject
// +build wireinject

package di

import (
	"BundleScope/pkg/config"
	"BundleScope/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCache,
		ProvideReportCache,
		ProvideReportStore,
		ProvidePublisher,
		ProvideReportQueue,

		// Providers
		ProvideBirdeyeClient,
		ProvideHolderStats,

		// Analysis pipeline
		ProvideDetector,
		ProvideAnalyzer,

		// HTTP surface
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
