package repository

import (
	"context"
	"fmt"

	"TrendGuard/internal/domain/models"
	pkgkafka "TrendGuard/pkg/kafka"
	applogger "TrendGuard/pkg/logger"
)

// KafkaAlertPublisher implements AlertPublisher over a Kafka topic. Messages
// are keyed by symbol so per-symbol ordering survives partitioning.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

// SetLogger injects a structured logger.
func (p *KafkaAlertPublisher) SetLogger(l *applogger.Logger) { p.l = l }

func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, symbol string, rec models.SignalRecord) error {
	event := models.AlertEvent{
		Symbol:  symbol,
		Date:    rec.Date,
		Price:   rec.Price,
		Tier:    rec.Tier,
		Reasons: rec.Reasons,
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(symbol), event); err != nil {
		if p.l != nil {
			p.l.Error("alert publish failed",
				applogger.String("symbol", symbol),
				applogger.String("tier", string(rec.Tier)),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("publish alert: %w", err)
	}
	if p.l != nil {
		p.l.Info("alert published",
			applogger.String("symbol", symbol),
			applogger.String("tier", string(rec.Tier)),
			applogger.Strings("reasons", rec.Reasons),
			applogger.Float64("price", rec.Price),
		)
	}
	return nil
}

func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}
