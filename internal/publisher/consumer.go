package publisher

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler receives decoded order events.
type Handler func(ctx context.Context, event OrderEvent) error

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer reads the order event topic and hands each event to a Handler.
type Consumer struct {
	reader  messageReader
	handler Handler
	logger  *zap.Logger
}

func NewConsumer(groupID string, handler Handler, logger *zap.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    Topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, handler: handler, logger: logger}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.consumeOne(ctx)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

func (c *Consumer) consumeOne(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.Warn("error reading order event", zap.Error(err))
		}
		return
	}

	var event OrderEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.logger.Warn("skipping malformed order event", zap.ByteString("key", m.Key), zap.Error(err))
		return
	}
	if event.Type == "" {
		for _, h := range m.Headers {
			if h.Key == "event_type" {
				event.Type = string(h.Value)
			}
		}
	}

	if err := c.handler(ctx, event); err != nil {
		c.logger.Error("order event handler failed",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
}

// LogHandler writes each event to logger. It is the default consumer in cmd/storefront.
func LogHandler(logger *zap.Logger) Handler {
	return func(_ context.Context, event OrderEvent) error {
		logger.Info("order event",
			zap.String("event_type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.String("order_number", event.OrderNumber),
			zap.String("user_id", event.UserID),
			zap.String("status", event.Status.String()),
			zap.String("previous_status", event.PreviousStatus.String()))
		return nil
	}
}
