// Package sender turns booking events into confirmation emails.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/smtp"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

const dateLayout = "Monday, 02 January 2006 at 15:04 MST"

// UserRepository resolves the recipient of an event.
type UserRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
}

// Service sends one email per booking event.
type Service struct {
	users     UserRepository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService returns a Service.
func NewSenderService(users UserRepository, transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		transport: transport,
		log:       log,
	}
}

// HandleBookingEvent emails the owner of the booking described by body.
// Messages that can never be delivered (malformed, unknown type, unknown user)
// are dropped with a log entry; a returned error means the event should be retried.
func (s *Service) HandleBookingEvent(ctx context.Context, body []byte) error {
	const op = "services.sender.HandleBookingEvent"
	log := s.log.With(slog.String("op", op))

	var event models.BookingEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("dropping malformed event", sl.Err(err))
		return nil
	}
	log = log.With(slog.String("event_id", event.EventID), slog.String("booking_id", event.BookingID))

	subject, ok := subjectFor(event)
	if !ok {
		log.Warn("dropping event of unknown type", slog.String("type", event.Type))
		return nil
	}

	user, err := s.users.GetUser(ctx, event.UserUID)
	if errors.Is(err, storage.ErrUserNotFound) {
		log.Warn("dropping event for unknown user", slog.String("user_uid", event.UserUID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err = s.sendEmail([]string{user.Email}, subject, bodyFor(user, event)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("email sent", slog.String("type", event.Type))
	return nil
}

func subjectFor(event models.BookingEvent) (string, bool) {
	switch event.Type {
	case models.EventBookingCreated:
		return "We received your booking", true
	case models.EventBookingStatusChanged:
		switch event.Status {
		case models.StatusConfirmed:
			return "Your booking is confirmed", true
		case models.StatusCancelled:
			return "Your booking was cancelled", true
		}
	case models.EventBookingReminder:
		return "Reminder: your booking is coming up", true
	}
	return "", false
}

func bodyFor(user *models.User, event models.BookingEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello, %s!\r\n\r\n", user.Name)
	switch event.Type {
	case models.EventBookingCreated:
		fmt.Fprintf(&b, "Your booking for %s on %s has been received and is awaiting confirmation.\r\n",
			event.Service, event.Date.UTC().Format(dateLayout))
	case models.EventBookingReminder:
		fmt.Fprintf(&b, "This is a reminder of your %s appointment on %s.\r\n",
			event.Service, event.Date.UTC().Format(dateLayout))
	default:
		fmt.Fprintf(&b, "Your booking for %s on %s is now %s.\r\n",
			event.Service, event.Date.UTC().Format(dateLayout), event.Status)
	}
	b.WriteString("\r\nBeauty Booking\r\n")
	return b.String()
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("mail from %s: %w", from, err)
	}
	for _, addr := range to {
		if err = client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to %s: %w", addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		_ = wc.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("quit: %w", err)
	}
	return nil
}
