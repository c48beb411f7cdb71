package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BundleScope/internal/domain/models"
	pkgcache "BundleScope/pkg/cache"
	applogger "BundleScope/pkg/logger"
)

// ReportCache keys finished analysis reports by chain and token address.
// A cache hit lets repeat lookups skip the full provider round trip.
type ReportCache struct {
	backend pkgcache.Service
	logger  *applogger.Logger
	ttl     time.Duration
}

// NewReportCache wraps a cache backend with report-specific keys and TTL.
func NewReportCache(backend pkgcache.Service, logger *applogger.Logger, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportCache{
		backend: backend,
		logger:  logger.Component("report-cache"),
		ttl:     ttl,
	}
}

func reportKey(chain, address string) string {
	return fmt.Sprintf("report:%s:%s", chain, address)
}

// Get returns the cached report, or (nil, false) on a miss. Backend errors
// are logged and reported as a miss so analysis proceeds.
func (c *ReportCache) Get(ctx context.Context, chain, address string) (*models.BundlerAnalysisReport, bool) {
	var report models.BundlerAnalysisReport
	err := c.backend.Get(ctx, reportKey(chain, address), &report)
	if err != nil {
		if !errors.Is(err, pkgcache.ErrCacheMiss) {
			c.logger.Warn("cache read failed", applogger.Error(err))
		}
		return nil, false
	}
	return &report, true
}

// Put stores a report. Failures are logged, never propagated.
func (c *ReportCache) Put(ctx context.Context, report *models.BundlerAnalysisReport) {
	if report == nil {
		return
	}
	key := reportKey(report.Chain, report.TokenAddress)
	if err := c.backend.Set(ctx, key, report, c.ttl); err != nil {
		c.logger.Warn("cache write failed", applogger.Error(err))
	}
}

// Invalidate drops a cached report, used when a refresh is forced.
func (c *ReportCache) Invalidate(ctx context.Context, chain, address string) {
	if err := c.backend.Delete(ctx, reportKey(chain, address)); err != nil {
		c.logger.Warn("cache invalidate failed", applogger.Error(err))
	}
}
