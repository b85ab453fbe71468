package models

import "time"

// Booking statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// DefaultDurationMinutes applies when a booking request omits the duration.
const DefaultDurationMinutes = 30

// MaxDurationMinutes is the longest booking accepted: one day.
const MaxDurationMinutes = 24 * 60

// Booking is a reservation of a single slot (its Date) by one user.
type Booking struct {
	ID        string    `json:"id"`
	UserUID   string    `json:"userId"`
	Service   string    `json:"service"`
	Date      time.Time `json:"date"`
	Duration  int       `json:"duration"` // minutes
	Notes     string    `json:"notes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// BookingRequest is the unparsed input for a new booking. Date is an RFC 3339 timestamp.
type BookingRequest struct {
	Service  string
	Date     string
	Duration int
	Notes    string
}

// ValidStatus reports whether s is one of the known booking statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a booking may move from one status to another.
// Only pending→confirmed, pending→cancelled and confirmed→cancelled are allowed.
func CanTransition(from, to string) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCancelled
	}
	return false
}
