// Package postgresql implements the credential and booking stores on PostgreSQL.
// Uniqueness of emails and of live booking slots is enforced by indexes; the
// resulting violations are translated to the storage package errors.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// registers the pgx driver for database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Storage wraps the connection pool shared by the user and booking repositories.
type Storage struct {
	DB *sql.DB
}

// New opens the pool and verifies the database is reachable.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{DB: db}, nil
}

// Close releases the pool.
func (s *Storage) Close() error {
	return s.DB.Close()
}

// Ping checks the database is still reachable.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgErrCode(err) == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgErrCode(err) == pgerrcode.ForeignKeyViolation
}

func isInvalidText(err error) bool {
	return pgErrCode(err) == pgerrcode.InvalidTextRepresentation
}
