package repository

import (
	"context"

	"BundleScope/internal/domain/models"
)

// ReportStore persists completed analysis reports.
type ReportStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, report *models.BundlerAnalysisReport) error
	Latest(ctx context.Context, chain, address string) (*models.BundlerAnalysisReport, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Publisher hands completed reports to downstream consumers
// (narrative generation, delivery).
type Publisher interface {
	PublishReport(ctx context.Context, report *models.BundlerAnalysisReport) error
	Close() error
}

// Metrics records operational counters for the analysis pipeline.
type Metrics interface {
	RecordAnalysis(chain, outcome string)
	RecordBundleDetected(chain string)
	RecordRiskLevel(chain string, level models.RiskLevel)
	RecordStageLatency(stage string, seconds float64)
}
