package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

// ListDueReminders returns live bookings starting in [from, to) that have not
// been reminded yet, earliest first.
func (s *Storage) ListDueReminders(ctx context.Context, from, to time.Time) ([]*models.Booking, error) {
	const op = "storage.postgresql.ListDueReminders"

	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE reminder_sent_at IS NULL
			    AND status <> 'cancelled'
			    AND date >= $1 AND date < $2
			  ORDER BY date ASC`
	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, b)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MarkReminderSent records that the booking was reminded. A booking that is
// unknown or already marked yields storage.ErrBookingNotFound.
func (s *Storage) MarkReminderSent(ctx context.Context, id string) error {
	const op = "storage.postgresql.MarkReminderSent"

	query := `UPDATE bookings
			  SET reminder_sent_at = NOW()
			  WHERE id = $1 AND reminder_sent_at IS NULL`
	res, err := s.DB.ExecContext(ctx, query, id)
	if isInvalidText(err) {
		return fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	}
	return nil
}
