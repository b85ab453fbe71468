// Package reminder publishes a one-time reminder event for bookings that are
// about to start.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/metrics"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

// Repository finds bookings due for a reminder and marks them as reminded.
type Repository interface {
	ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Booking, error)
	MarkReminderSent(ctx context.Context, id string) error
}

// EventPublisher delivers booking events to the notification pipeline.
type EventPublisher interface {
	Publish(ctx context.Context, event models.BookingEvent) error
}

// Service periodically scans for upcoming bookings.
type Service struct {
	repo      Repository
	publisher EventPublisher
	lead      time.Duration
	log       *slog.Logger
	now       func() time.Time
}

// NewService returns a Service that reminds bookings starting within lead.
func NewService(repo Repository, publisher EventPublisher, lead time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		lead:      lead,
		log:       log,
		now:       time.Now,
	}
}

// Run scans once immediately and then on every tick of interval until ctx is done.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	s.runOnceLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnceLogged(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) runOnceLogged(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error("reminder scan failed", sl.Err(err))
	}
}

// RunOnce publishes a reminder for every due booking and returns how many were sent.
// A booking is marked only after its event was published, so a failed publish
// is retried on the next scan.
func (s *Service) RunOnce(ctx context.Context) (int, error) {
	const op = "services.reminder.RunOnce"
	log := s.log.With(slog.String("op", op))

	now := s.now().UTC()
	due, err := s.repo.ListDueReminders(ctx, now, now.Add(s.lead))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if len(due) == 0 {
		log.Debug("no bookings due for a reminder")
		return 0, nil
	}
	log.Info("found bookings due for a reminder", slog.Int("count", len(due)))

	sent := 0
	for _, b := range due {
		if err := ctx.Err(); err != nil {
			return sent, fmt.Errorf("%s: %w", op, err)
		}
		event := models.BookingEvent{
			EventID:    uuid.NewString(),
			Type:       models.EventBookingReminder,
			BookingID:  b.ID,
			UserUID:    b.UserUID,
			Service:    b.Service,
			Date:       b.Date,
			Status:     b.Status,
			OccurredAt: now,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			log.Error("failed to publish reminder", slog.String("booking_id", b.ID), sl.Err(err))
			continue
		}
		if err := s.repo.MarkReminderSent(ctx, b.ID); err != nil {
			if errors.Is(err, storage.ErrBookingNotFound) {
				log.Warn("booking already reminded", slog.String("booking_id", b.ID))
				continue
			}
			log.Error("failed to mark reminder", slog.String("booking_id", b.ID), sl.Err(err))
			continue
		}
		metrics.IncReminderSent()
		sent++
	}
	return sent, nil
}
