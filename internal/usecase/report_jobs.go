package usecase

import (
	"context"
	"fmt"

	"BundleScope/internal/domain/models"
	drepo "BundleScope/internal/domain/repository"
	"BundleScope/pkg/queue"
)

// Queue message types for deferred report delivery.
const (
	MsgStoreReport   = "report.store"
	MsgPublishReport = "report.publish"
)

// StoreReportJob persists reports pulled off the async queue.
type StoreReportJob struct {
	store drepo.ReportStore
}

var _ queue.Job = (*StoreReportJob)(nil)

func NewStoreReportJob(store drepo.ReportStore) *StoreReportJob {
	return &StoreReportJob{store: store}
}

func (j *StoreReportJob) Name() string { return "store-report" }
func (j *StoreReportJob) Type() string { return MsgStoreReport }

func (j *StoreReportJob) Handle(ctx context.Context, payload interface{}) error {
	report, err := queue.ParsePayload[models.BundlerAnalysisReport](payload)
	if err != nil {
		return fmt.Errorf("store report payload: %w", err)
	}
	return j.store.Store(ctx, report)
}

// PublishReportJob hands queued reports to the downstream broker.
type PublishReportJob struct {
	publisher drepo.Publisher
}

var _ queue.Job = (*PublishReportJob)(nil)

func NewPublishReportJob(publisher drepo.Publisher) *PublishReportJob {
	return &PublishReportJob{publisher: publisher}
}

func (j *PublishReportJob) Name() string { return "publish-report" }
func (j *PublishReportJob) Type() string { return MsgPublishReport }

func (j *PublishReportJob) Handle(ctx context.Context, payload interface{}) error {
	report, err := queue.ParsePayload[models.BundlerAnalysisReport](payload)
	if err != nil {
		return fmt.Errorf("publish report payload: %w", err)
	}
	return j.publisher.PublishReport(ctx, report)
}
