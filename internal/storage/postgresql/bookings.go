package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

const bookingColumns = `id, user_uid, service, date, duration, notes, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	if err := row.Scan(&b.ID, &b.UserUID, &b.Service, &b.Date, &b.Duration,
		&b.Notes, &b.Status, &b.CreatedAt); err != nil {
		return nil, err
	}
	b.Date = b.Date.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

// SlotTaken reports whether a booking that is not cancelled starts exactly at date.
func (s *Storage) SlotTaken(ctx context.Context, date time.Time) (bool, error) {
	const op = "storage.postgresql.SlotTaken"

	query := `SELECT EXISTS(
				  SELECT 1 FROM bookings
				  WHERE date = $1 AND status <> 'cancelled'
			  )`
	var taken bool
	if err := s.DB.QueryRowContext(ctx, query, date).Scan(&taken); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return taken, nil
}

// CreateBooking inserts the booking and returns the stored record.
// A live booking at the same date yields storage.ErrSlotTaken; an unknown
// owner yields storage.ErrUserNotFound.
func (s *Storage) CreateBooking(ctx context.Context, b models.Booking) (*models.Booking, error) {
	const op = "storage.postgresql.CreateBooking"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO bookings (user_uid, service, date, duration, notes, status)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING ` + bookingColumns
	created, err := scanBooking(s.DB.QueryRowContext(ctx, query,
		b.UserUID, b.Service, b.Date, b.Duration, b.Notes, b.Status))
	switch {
	case err == nil:
		return created, nil
	case isUniqueViolation(err):
		return nil, fmt.Errorf("%s: %w", op, storage.ErrSlotTaken)
	case isForeignKeyViolation(err), isInvalidText(err):
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
}

// ListBookings returns the user's bookings, latest date first.
func (s *Storage) ListBookings(ctx context.Context, userUID string) ([]*models.Booking, error) {
	const op = "storage.postgresql.ListBookings"

	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE user_uid = $1
			  ORDER BY date DESC, created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userUID)
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

// GetBooking returns a booking by id.
func (s *Storage) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	const op = "storage.postgresql.GetBooking"

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// UpdateBookingStatus moves the booking from status `from` to `to` and returns
// the updated record. The row is matched on its current status so concurrent
// transitions cannot both succeed; a lost race yields storage.ErrBookingNotFound.
func (s *Storage) UpdateBookingStatus(ctx context.Context, id, from, to string) (*models.Booking, error) {
	const op = "storage.postgresql.UpdateBookingStatus"

	query := `UPDATE bookings
			  SET status = $1
			  WHERE id = $2 AND status = $3
			  RETURNING ` + bookingColumns
	b, err := scanBooking(s.DB.QueryRowContext(ctx, query, to, id, from))
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, sql.ErrNoRows), isInvalidText(err):
		return nil, fmt.Errorf("%s: %w", op, storage.ErrBookingNotFound)
	case isUniqueViolation(err):
		return nil, fmt.Errorf("%s: %w", op, storage.ErrSlotTaken)
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}
}
