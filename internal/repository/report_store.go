package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"BundleScope/internal/domain/models"
	drepo "BundleScope/internal/domain/repository"
	pkgch "BundleScope/pkg/clickhouse"
)

// ClickHouseReportStore persists analysis reports. Indexed columns cover
// the lookup paths; the full report rides along as a JSON blob so the
// schema never chases the report shape.
type ClickHouseReportStore struct {
	client *pkgch.Client
	table  string
}

var _ drepo.ReportStore = (*ClickHouseReportStore)(nil)

// NewClickHouseReportStore creates a ClickHouse-backed report store.
func NewClickHouseReportStore(client *pkgch.Client, table string) *ClickHouseReportStore {
	if table == "" {
		table = "bundler_reports"
	}
	return &ClickHouseReportStore{client: client, table: table}
}

func (s *ClickHouseReportStore) Init(ctx context.Context) error {
	ddl := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
    chain             LowCardinality(String),
    token_address     String,
    bundled_detected  UInt8,
    bundled_tx_pct    Float64,
    clusters_accepted UInt32,
    analyzed_at       DateTime64(3, 'UTC'),
    report            String
) ENGINE = MergeTree()
ORDER BY (chain, token_address, analyzed_at)`, s.table)
	return s.client.InitSchema(ctx, []string{ddl})
}

func (s *ClickHouseReportStore) Store(ctx context.Context, report *models.BundlerAnalysisReport) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	detected := uint8(0)
	if report.BundledDetected {
		detected = 1
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (chain, token_address, bundled_detected, bundled_tx_pct, clusters_accepted, analyzed_at, report) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.table,
	)
	_, err = s.client.DB().ExecContext(ctx, q,
		report.Chain,
		report.TokenAddress,
		detected,
		report.BundledTxPct,
		uint32(report.Meta.ClustersAccepted),
		report.Meta.AnalyzedAt,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Latest returns the most recent report for a token, or (nil, nil) when
// none has been stored.
func (s *ClickHouseReportStore) Latest(ctx context.Context, chain, address string) (*models.BundlerAnalysisReport, error) {
	q := fmt.Sprintf(
		"SELECT report FROM %s WHERE chain = ? AND token_address = ? ORDER BY analyzed_at DESC LIMIT 1",
		s.table,
	)
	var payload string
	err := s.client.DB().QueryRowContext(ctx, q, chain, address).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	var report models.BundlerAnalysisReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &report, nil
}

func (s *ClickHouseReportStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

func (s *ClickHouseReportStore) Close() error {
	return s.client.Close()
}
