package events

import (
	"context"

	"tourbook/internal/resilience/degrade"
	"tourbook/pkg/model"
)

type degradingPublisher struct {
	inner  Publisher
	router *degrade.Router
}

// NewDegradingPublisher wraps a publisher with the degradation router. A
// transient broker failure queues the event for replay and reports success to
// the caller; only non-retriable failures surface.
func NewDegradingPublisher(inner Publisher, router *degrade.Router) Publisher {
	return &degradingPublisher{inner: inner, router: router}
}

func (p *degradingPublisher) PublishBookingEvent(ctx context.Context, eventType string, booking *model.Booking) error {
	_, err := p.router.Execute(ctx, func(ctx context.Context) (any, error) {
		return nil, p.inner.PublishBookingEvent(ctx, eventType, booking)
	}, degrade.Descriptor{
		Type:       model.OpTypeEventPublish,
		Dependency: model.DepEventBus,
		Payload: map[string]any{
			"event_type":     eventType,
			"booking_id":     booking.ID,
			"booking_number": booking.BookingNumber,
			"booking":        booking,
		},
	})
	return err
}
