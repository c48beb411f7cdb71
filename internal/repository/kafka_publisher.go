package repository

import (
	"context"
	"fmt"

	"BundleScope/internal/domain/models"
	drepo "BundleScope/internal/domain/repository"
	pkgkafka "BundleScope/pkg/kafka"
)

// KafkaReportPublisher hands completed reports to the downstream topic.
// Messages are keyed by "<chain>:<token_address>" for per-token ordering.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ drepo.Publisher = (*KafkaReportPublisher)(nil)

// NewKafkaReportPublisher creates a Kafka-backed report publisher.
func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) PublishReport(ctx context.Context, report *models.BundlerAnalysisReport) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}
	key := []byte(report.Chain + ":" + report.TokenAddress)
	if err := p.producer.Publish(ctx, p.topic, key, report); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	return nil
}

func (p *KafkaReportPublisher) Close() error {
	return p.producer.Close()
}
