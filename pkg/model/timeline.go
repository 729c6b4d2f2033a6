package model

import "time"

// Timeline event types recorded against a booking.
const (
	TimelineBookingCreated   = "booking_created"
	TimelineBookingConfirmed = "booking_confirmed"
	TimelineBookingCompleted = "booking_completed"
	TimelineBookingCancelled = "booking_cancelled"
)

// TimelineEvent is an append-only audit entry for a booking. Events are never
// updated or deleted.
type TimelineEvent struct {
	ID        string    `json:"id" bson:"_id"`
	BookingID string    `json:"booking_id" bson:"booking_id"`
	Type      string    `json:"type" bson:"type"`
	Actor     string    `json:"actor,omitempty" bson:"actor,omitempty"`
	Note      string    `json:"note,omitempty" bson:"note,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
