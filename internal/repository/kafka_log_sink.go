package repository

import (
	"context"

	pkgkafka "BundleScope/pkg/kafka"
	applogger "BundleScope/pkg/logger"
)

// KafkaLogSink adapts the Kafka producer to the logger's aggregation
// publisher, shipping batched error entries to a diagnostics topic.
type KafkaLogSink struct {
	producer *pkgkafka.Producer
}

var _ applogger.Publisher = (*KafkaLogSink)(nil)

func NewKafkaLogSink(producer *pkgkafka.Producer) *KafkaLogSink {
	return &KafkaLogSink{producer: producer}
}

func (s *KafkaLogSink) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return s.producer.Publish(ctx, topic, nil, payload)
}
