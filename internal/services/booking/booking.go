// Package booking creates, lists and transitions bookings. A slot is identified
// by its exact start time: two live bookings conflict only when their dates are equal.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/metrics"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

var (
	// ErrValidation is returned for missing or malformed booking input.
	ErrValidation = errors.New("validation failed")
	// ErrSlotUnavailable is returned when a live booking already starts at the requested date.
	ErrSlotUnavailable = errors.New("time slot unavailable")
	// ErrNotFound is returned when the booking does not exist or belongs to someone else.
	ErrNotFound = errors.New("booking not found")
	// ErrInvalidID is returned for a malformed booking id.
	ErrInvalidID = errors.New("invalid booking id")
	// ErrInvalidTransition is returned when the booking cannot move to the requested status.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrUnknownUser is returned when the owner of a new booking no longer exists.
	ErrUnknownUser = errors.New("user not found")
)

// ValidationError carries a client-facing message and matches ErrValidation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// accepted date layouts, tried in order; layouts without a zone are read as UTC
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Repository is the booking store used by the service.
type Repository interface {
	SlotTaken(ctx context.Context, date time.Time) (bool, error)
	CreateBooking(ctx context.Context, b models.Booking) (*models.Booking, error)
	ListBookings(ctx context.Context, userUID string) ([]*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id, from, to string) (*models.Booking, error)
}

// EventPublisher delivers booking events to the notification pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event models.BookingEvent) error
}

// Service implements the booking workflow.
type Service struct {
	repo   Repository
	events EventPublisher
	log    *slog.Logger
	now    func() time.Time
}

// NewBookingService returns a Service.
func NewBookingService(repo Repository, events EventPublisher, log *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: events,
		log:    log,
		now:    time.Now,
	}
}

// ParseDate parses a booking date and normalizes it to UTC at microsecond precision,
// the resolution the store keeps.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Microsecond), nil
		}
	}
	return time.Time{}, invalid("Invalid date format")
}

// Create books the slot at req.Date for userUID. The booking starts as pending.
func (s *Service) Create(ctx context.Context, userUID string, req models.BookingRequest) (*models.Booking, error) {
	const op = "services.booking.Create"

	service := strings.TrimSpace(req.Service)
	if service == "" || strings.TrimSpace(req.Date) == "" {
		return nil, invalid("Service and date are required")
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	duration := req.Duration
	switch {
	case duration == 0:
		duration = models.DefaultDurationMinutes
	case duration < 0:
		return nil, invalid("Duration must be a positive number of minutes")
	case duration > models.MaxDurationMinutes:
		return nil, invalid(fmt.Sprintf("Duration must be at most %d minutes", models.MaxDurationMinutes))
	}

	taken, err := s.repo.SlotTaken(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if taken {
		metrics.IncSlotConflict()
		return nil, ErrSlotUnavailable
	}

	created, err := s.repo.CreateBooking(ctx, models.Booking{
		UserUID:  userUID,
		Service:  service,
		Date:     date,
		Duration: duration,
		Notes:    strings.TrimSpace(req.Notes),
		Status:   models.StatusPending,
	})
	switch {
	case errors.Is(err, storage.ErrSlotTaken):
		metrics.IncSlotConflict()
		return nil, ErrSlotUnavailable
	case errors.Is(err, storage.ErrUserNotFound):
		return nil, ErrUnknownUser
	case err != nil:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.IncBookingCreated()
	s.log.Info("booking created",
		slog.String("booking_id", created.ID),
		slog.String("user_uid", userUID),
		slog.Time("date", created.Date),
	)
	s.publish(ctx, models.EventBookingCreated, created)
	return created, nil
}

// List returns the bookings of userUID, latest date first.
func (s *Service) List(ctx context.Context, userUID string) ([]*models.Booking, error) {
	const op = "services.booking.List"

	bookings, err := s.repo.ListBookings(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return bookings, nil
}

// UpdateStatus moves a booking owned by userUID to status.
func (s *Service) UpdateStatus(ctx context.Context, userUID, id, status string) (*models.Booking, error) {
	const op = "services.booking.UpdateStatus"

	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidID
	}
	if !models.ValidStatus(status) {
		return nil, invalid(fmt.Sprintf("Unknown status %q", status))
	}

	current, err := s.repo.GetBooking(ctx, id)
	if errors.Is(err, storage.ErrBookingNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if current.UserUID != userUID {
		return nil, ErrNotFound
	}
	if !models.CanTransition(current.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, status)
	}

	updated, err := s.repo.UpdateBookingStatus(ctx, id, current.Status, status)
	if errors.Is(err, storage.ErrBookingNotFound) {
		// status changed since it was read
		return nil, fmt.Errorf("%w: booking was modified concurrently", ErrInvalidTransition)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.IncStatusChange(status)
	s.log.Info("booking status changed",
		slog.String("booking_id", id),
		slog.String("from", current.Status),
		slog.String("to", status),
	)
	s.publish(ctx, models.EventBookingStatusChanged, updated)
	return updated, nil
}

func (s *Service) publish(ctx context.Context, eventType string, b *models.Booking) {
	event := models.BookingEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		BookingID:  b.ID,
		UserUID:    b.UserUID,
		Service:    b.Service,
		Date:       b.Date,
		Status:     b.Status,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish booking event",
			slog.String("type", eventType),
			slog.String("booking_id", b.ID),
			sl.Err(err),
		)
	}
}
