package repository

import (
	"context"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	"github.com/AnshNarg/bit-coin/internal/domain/repository"
	pkgkafka "github.com/AnshNarg/bit-coin/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher for Kafka.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates a Kafka forecast publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

// PublishForecast keys messages by symbol so consumers see per-symbol order.
func (p *KafkaSignalPublisher) PublishForecast(ctx context.Context, f *models.Forecast) error {
	return p.producer.Publish(ctx, p.topic, []byte(f.Symbol), f)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
