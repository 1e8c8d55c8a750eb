package libs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher writes domain events to Kafka. The topic is chosen per
// message. Without brokers it only logs what it would have sent.
type EventPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewEventPublisher(brokers []string, logger *zap.Logger) *EventPublisher {
	p := &EventPublisher{logger: logger}
	if len(brokers) == 0 {
		logger.Warn("no kafka brokers configured, domain events are only logged")
	} else {
		p.writer = &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			WriteTimeout:           5 * time.Second,
		}
	}
	return p
}

func (p *EventPublisher) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	if p.writer == nil {
		p.logger.Debug("event not sent, kafka disabled", zap.String("topic", topic), zap.String("key", key))
		return nil
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

func (p *EventPublisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
