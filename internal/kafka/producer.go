package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer abstracts the audit trail transport so local runs can fall back
// to a console sink when no broker is configured.
type Producer interface {
	SendMessage(ctx context.Context, key []byte, value []byte) error
	Close() error
}

// WriterProducer ships messages to a Kafka topic.
type WriterProducer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewWriterProducer(brokers []string, topic string, logger *zap.Logger) *WriterProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	logger.Info("Kafka producer initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic))
	return &WriterProducer{writer: w, logger: logger}
}

func (p *WriterProducer) SendMessage(ctx context.Context, key, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
	if err != nil {
		return fmt.Errorf("failed to write audit message: %w", err)
	}
	return nil
}

func (p *WriterProducer) Close() error {
	p.logger.Info("Closing Kafka producer")
	return p.writer.Close()
}

// ConsoleProducer prints messages to the log. Used when KAFKA_BROKERS is
// unset.
type ConsoleProducer struct {
	logger *zap.Logger
}

func NewConsoleProducer(logger *zap.Logger) *ConsoleProducer {
	logger.Info("Initialized console audit producer, no Kafka brokers configured")
	return &ConsoleProducer{logger: logger}
}

func (p *ConsoleProducer) SendMessage(ctx context.Context, key, value []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	p.logger.Info("Audit message",
		zap.ByteString("key", key),
		zap.ByteString("value", value))
	return nil
}

func (p *ConsoleProducer) Close() error {
	return nil
}
