// Package storage declares the errors shared by every storage implementation.
package storage

import "errors"

var (
	// ErrUserExists is returned when the email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrSlotTaken is returned when a live booking already occupies the date.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrBookingNotFound is returned when no booking matches the lookup.
	ErrBookingNotFound = errors.New("booking not found")
)
