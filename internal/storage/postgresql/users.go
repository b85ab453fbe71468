package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/storage"
)

// CreateUser stores a new user and returns its id.
// A duplicate email yields storage.ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.postgresql.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (name, email, password_hash, phone)
			  VALUES ($1, $2, $3, $4)
			  RETURNING uid`
	var uid string
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.Phone).Scan(&uid); err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetUserByEmail returns the user including its password hash.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgresql.GetUserByEmail"

	query := `SELECT uid, name, email, password_hash, phone, created_at
			  FROM users
			  WHERE email = $1`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, email).
		Scan(&u.UUID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// GetUser returns the user by id without the password hash.
func (s *Storage) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.postgresql.GetUser"

	query := `SELECT uid, name, email, phone, created_at
			  FROM users
			  WHERE uid = $1`
	u := &models.User{}
	err := s.DB.QueryRowContext(ctx, query, userUID).
		Scan(&u.UUID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) || isInvalidText(err) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

// ListUsers returns every user without password hashes, oldest first.
func (s *Storage) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "storage.postgresql.ListUsers"

	query := `SELECT uid, name, email, phone, created_at
			  FROM users
			  ORDER BY created_at, uid`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make([]*models.User, 0)
	for rows.Next() {
		u := &models.User{}
		if err = rows.Scan(&u.UUID, &u.Name, &u.Email, &u.Phone, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		result = append(result, u)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
