package models

import "time"

// Booking event types, also used as routing keys.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
	EventBookingReminder      = "booking.reminder"
)

// BookingEvent is published to the message broker after a booking changes.
type BookingEvent struct {
	EventID    string    `json:"eventId"`
	Type       string    `json:"type"`
	BookingID  string    `json:"bookingId"`
	UserUID    string    `json:"userId"`
	Service    string    `json:"service"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurredAt"`
}
