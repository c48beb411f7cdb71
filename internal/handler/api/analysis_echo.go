package api

import (
	"context"
	"time"

	"BundleScope/internal/domain/models"
	drepo "BundleScope/internal/domain/repository"
	icache "BundleScope/internal/service/cache"
	"BundleScope/internal/service/ratelimit"
	"BundleScope/internal/usecase"
	xhttp "BundleScope/pkg/http"
	applogger "BundleScope/pkg/logger"
	"BundleScope/pkg/queue"

	"github.com/labstack/echo/v4"
)

// AnalysisEchoHandler exposes the bundle-analysis pipeline over HTTP.
// Persistence and publishing are best-effort: a dead store or broker
// never fails a request that produced a valid report.
type AnalysisEchoHandler struct {
	logger    *applogger.Logger
	analyzer  *usecase.BundleAnalyzer
	reports   *icache.ReportCache
	store     drepo.ReportStore
	publisher drepo.Publisher
	sink      queue.QueueService
	limiter   *ratelimit.Limiter

	rlCapacity float64
	rlRefill   float64
}

// HandlerOption configures AnalysisEchoHandler.
type HandlerOption func(*AnalysisEchoHandler)

// WithReportStore enables report persistence.
func WithReportStore(store drepo.ReportStore) HandlerOption {
	return func(h *AnalysisEchoHandler) { h.store = store }
}

// WithPublisher enables report publishing.
func WithPublisher(pub drepo.Publisher) HandlerOption {
	return func(h *AnalysisEchoHandler) { h.publisher = pub }
}

// WithAsyncSink routes report persistence and publishing through a job
// queue with retries instead of fire-and-forget goroutines.
func WithAsyncSink(sink queue.QueueService) HandlerOption {
	return func(h *AnalysisEchoHandler) { h.sink = sink }
}

// WithRateLimit enables per-IP request throttling.
func WithRateLimit(capacity, refillPerSec float64) HandlerOption {
	return func(h *AnalysisEchoHandler) {
		h.limiter = ratelimit.New()
		h.rlCapacity = capacity
		h.rlRefill = refillPerSec
	}
}

// NewAnalysisEchoHandler creates the analysis HTTP handler.
func NewAnalysisEchoHandler(
	logger *applogger.Logger,
	analyzer *usecase.BundleAnalyzer,
	reports *icache.ReportCache,
	opts ...HandlerOption,
) *AnalysisEchoHandler {
	h := &AnalysisEchoHandler{
		logger:   logger.Component("api"),
		analyzer: analyzer,
		reports:  reports,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.GET("/reports/:address", h.LatestReport)
}

// Analyze runs a full bundle analysis for one token. Cached reports are
// served unless refresh is requested.
func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	if h.limiter != nil && !h.limiter.Allow(c.RealIP(), h.rlCapacity, h.rlRefill) {
		return xhttp.TooManyRequestsResponse(c, "rate limit exceeded")
	}

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	ctx := c.Request().Context()

	if req.Refresh {
		h.reports.Invalidate(ctx, req.Chain, req.TokenAddress)
	} else if cached, ok := h.reports.Get(ctx, req.Chain, req.TokenAddress); ok {
		return xhttp.SuccessResponse(c, cached)
	}

	report, err := h.analyzer.Analyze(ctx, req.Chain, req.TokenAddress)
	if err != nil {
		h.logger.Error("analysis failed",
			applogger.String("chain", req.Chain),
			applogger.String("address", req.TokenAddress),
			applogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, err)
	}

	h.reports.Put(ctx, report)
	h.persistAndPublish(report)

	return xhttp.SuccessResponse(c, report)
}

// LatestReport returns the most recent stored report for a token.
func (h *AnalysisEchoHandler) LatestReport(c echo.Context) error {
	if h.store == nil {
		return xhttp.NotFoundResponse(c, "report storage is not enabled")
	}

	req := &models.ReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	address := c.Param("address")
	if len(address) < 6 {
		return xhttp.BadRequestResponse(c, "token address is too short")
	}

	report, err := h.store.Latest(c.Request().Context(), req.Chain, address)
	if err != nil {
		h.logger.Error("report lookup failed",
			applogger.String("address", address),
			applogger.Error(err),
		)
		return xhttp.InternalServerErrorResponse(c)
	}
	if report == nil {
		return xhttp.NotFoundResponse(c, "no report for token")
	}
	return xhttp.SuccessResponse(c, report)
}

// Health reports liveness plus the state of optional backends.
func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.store != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.store.Health(ctx); err != nil {
			status["report_store"] = "unreachable"
		} else {
			status["report_store"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

// persistAndPublish stores and publishes the report best-effort in the
// background so the HTTP response is not held up by slow backends. With an
// async sink configured the work goes through the job queue and survives
// transient backend failures; otherwise it is fire-and-forget.
func (h *AnalysisEchoHandler) persistAndPublish(report *models.BundlerAnalysisReport) {
	if h.store == nil && h.publisher == nil {
		return
	}

	if h.sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if h.store != nil {
			if err := h.sink.PublishMessage(ctx, usecase.MsgStoreReport, report); err != nil {
				h.logger.Warn("enqueue store failed", applogger.Error(err))
			}
		}
		if h.publisher != nil {
			if err := h.sink.PublishMessage(ctx, usecase.MsgPublishReport, report); err != nil {
				h.logger.Warn("enqueue publish failed", applogger.Error(err))
			}
		}
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if h.store != nil {
			if err := h.store.Store(ctx, report); err != nil {
				h.logger.Warn("report store failed",
					applogger.String("address", report.TokenAddress),
					applogger.Error(err),
				)
			}
		}
		if h.publisher != nil {
			if err := h.publisher.PublishReport(ctx, report); err != nil {
				h.logger.Warn("report publish failed",
					applogger.String("address", report.TokenAddress),
					applogger.Error(err),
				)
			}
		}
	}()
}
