package model

import (
	"time"
)

// BookingStatus is the lifecycle state of a booking. Transitions between
// statuses are validated by the lifecycle package; repositories never write
// a status that has not passed through it.
type BookingStatus string

const (
	StatusDraft     BookingStatus = "draft"
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

type Booking struct {
	ID                 string        `json:"id,omitempty" bson:"_id,omitempty"`
	BookingNumber      string        `json:"booking_number" bson:"booking_number"`
	CustomerID         string        `json:"customer_id" bson:"customer_id"`
	TourDate           time.Time     `json:"tour_date" bson:"tour_date"`
	PartySize          int           `json:"party_size" bson:"party_size"`
	DurationHours      int           `json:"duration_hours" bson:"duration_hours"`
	Status             BookingStatus `json:"status" bson:"status"`
	CancellationReason string        `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt          time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at" bson:"updated_at"`
}

// BookingRequest is the inbound shape for creating a booking. Contact fields
// are resolved into a Customer document during creation.
type BookingRequest struct {
	TourDate      time.Time `json:"tour_date" validate:"required"`
	PartySize     int       `json:"party_size" validate:"required,min=1,max=50"`
	DurationHours int       `json:"duration_hours" validate:"required,min=4,max=24"`
	CustomerName  string    `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail string    `json:"customer_email" validate:"required,email"`
	CustomerPhone string    `json:"customer_phone" validate:"omitempty,e164"`
}

// DateKey normalizes a tour date to its calendar day in UTC. All capacity
// accounting and lock keying is done per day, never per timestamp.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// DayBounds returns the half-open UTC interval [start, end) covering the
// calendar day of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
