package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lendshare/service-lending/internal/platform/kafka"
)

// BookingNotifier listens to booking events and emits notification log
// records: owners learn about new requests, bookers about decisions.
type BookingNotifier struct {
	consumer *kafka.Consumer
	logger   *zap.Logger
}

// NewBookingNotifier creates a new BookingNotifier.
func NewBookingNotifier(brokers []string, groupID string, logger *zap.Logger) *BookingNotifier {
	consumer := kafka.NewConsumer(brokers, groupID, TopicBookingEvents, logger)
	return &BookingNotifier{
		consumer: consumer,
		logger:   logger,
	}
}

// Start begins consuming booking events. This blocks until the context is cancelled.
func (n *BookingNotifier) Start(ctx context.Context) error {
	return n.consumer.Consume(ctx, n.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (n *BookingNotifier) Close() error {
	return n.consumer.Close()
}

func (n *BookingNotifier) handleMessage(_ context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		n.logger.Error("failed to parse cloud event from booking topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case BookingRequested:
		var evt BookingRequestedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			n.logger.Error("failed to parse BookingRequestedEvent data", zap.Error(err))
			return nil
		}
		n.logger.Info("notify owner: new booking request",
			zap.String("booking_id", evt.BookingID.String()),
			zap.String("owner_id", evt.OwnerID.String()),
			zap.String("item_id", evt.ItemID.String()),
		)
	case BookingApproved, BookingRejected:
		var evt BookingResolvedEvent
		if err := cloudEvent.ParseData(&evt); err != nil {
			n.logger.Error("failed to parse BookingResolvedEvent data", zap.Error(err))
			return nil
		}
		n.logger.Info("notify booker: booking resolved",
			zap.String("booking_id", evt.BookingID.String()),
			zap.String("booker_id", evt.BookerID.String()),
			zap.String("status", evt.Status),
		)
	default:
		n.logger.Debug("ignoring unhandled booking event type",
			zap.String("type", cloudEvent.Type),
		)
	}
	return nil
}
