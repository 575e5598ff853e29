package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/kpmisthah/twaybastore-admin/internal/domain"
)

// OrderStore is the slice of the order repository the consumer needs.
type OrderStore interface {
	PutOrder(ctx context.Context, order *domain.Order) error
}

// KafkaConsumer ingests order-created events from the checkout service.
// The admin view of orders is populated entirely from this stream; the
// dashboard itself never creates orders.
type KafkaConsumer struct {
	reader *kafka.Reader
	orders OrderStore
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

func NewKafkaConsumer(brokers, groupID string, orders OrderStore, logger *zap.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     strings.Split(brokers, ","),
		GroupID:     groupID,
		Topic:       TopicOrderEvents,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})

	return &KafkaConsumer{
		reader: reader,
		orders: orders,
		logger: logger,
		done:   make(chan struct{}),
	}
}

func (kc *KafkaConsumer) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	kc.cancel = cancel

	kc.logger.Info("Kafka consumer started", zap.String("topic", TopicOrderEvents))
	go kc.consume(ctx)
}

func (kc *KafkaConsumer) consume(ctx context.Context) {
	defer close(kc.done)

	for {
		msg, err := kc.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return
			}
			kc.logger.Error("Failed to read message", zap.Error(err))
			continue
		}

		var event OrderCreatedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			// Poison message: log and move on, never block the stream.
			kc.logger.Error("Failed to unmarshal order event",
				zap.ByteString("key", msg.Key),
				zap.Error(err))
			continue
		}

		if event.Order.OrderID == "" {
			kc.logger.Warn("Skipping order event without order id",
				zap.String("event_id", event.EventID))
			continue
		}
		if event.Order.Status == "" {
			event.Order.Status = domain.StatusProcessing
		}

		if err := kc.orders.PutOrder(ctx, &event.Order); err != nil {
			kc.logger.Error("Failed to store ingested order",
				zap.String("event_id", event.EventID),
				zap.String("order_id", event.Order.OrderID),
				zap.Error(err))
			continue
		}

		kc.logger.Info("Order ingested",
			zap.String("event_id", event.EventID),
			zap.String("order_id", event.Order.OrderID),
			zap.String("status", string(event.Order.Status)))
	}
}

func (kc *KafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
		<-kc.done
	}
	return kc.reader.Close()
}
