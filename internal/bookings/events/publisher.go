// Package events publishes booking lifecycle notifications to Kafka for
// downstream consumers (notifications, analytics). Publishing is best-effort
// from the caller's point of view; a failed publish never fails the booking.
package events

import (
	"context"
	"fmt"

	"tourbook/pkg/kafka"
	"tourbook/pkg/model"
)

const source = "tourbook-bookings"

// Publisher is the slice of event emission the booking service needs.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error
}

type kafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: producer}
}

func (p *kafkaPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventType).
		WithSource(source).
		WithHeader("booking-number", booking.BookingNumber).
		WithValue(booking).
		Build()
	if err != nil {
		return fmt.Errorf("building booking event: %w", err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publishing booking event: %w", err)
	}
	return nil
}
