// Package scheduler runs the reminder worker: it periodically looks for
// bookings that start soon and publishes a reminder event for each.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/beauty-booking/internal/config"
	"github.com/magabrotheeeer/beauty-booking/internal/events"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/metrics"
	"github.com/magabrotheeeer/beauty-booking/internal/services/reminder"
	"github.com/magabrotheeeer/beauty-booking/internal/storage/postgresql"
)

var errNoBroker = errors.New("RABBITMQ_URL is required for the reminder scheduler")

const (
	dbReadyAttempts = 10
	dbReadyDelay    = 3 * time.Second
)

// App is the reminder scheduler process.
type App struct {
	reminders *reminder.Service
	interval  time.Duration
	db        *postgresql.Storage
	conn      *amqp.Connection
	ch        *amqp.Channel
	logger    *slog.Logger
}

// connectDB retries until the database accepts connections; the scheduler may
// start before PostgreSQL is ready.
func connectDB(ctx context.Context, dsn string, attempts int, delay time.Duration) (*postgresql.Storage, error) {
	var err error
	for range attempts {
		var db *postgresql.Storage
		if db, err = postgresql.New(dsn); err == nil {
			return db, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("database not ready after %d attempts: %w", attempts, err)
}

// New connects the database and the broker and builds the reminder service.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.scheduler.New"

	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("%s: %w", op, errNoBroker)
	}

	db, err := connectDB(ctx, cfg.StorageConnectionString, dbReadyAttempts, dbReadyDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBookingQueues())
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	metrics.Register()
	return &App{
		reminders: reminder.NewService(db, events.NewPublisher(ch), cfg.Reminder.Lead, logger),
		interval:  cfg.Reminder.Interval,
		db:        db,
		conn:      conn,
		ch:        ch,
		logger:    logger,
	}, nil
}

// Run scans for due reminders until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("reminder scheduler started", slog.Duration("interval", a.interval))
	a.reminders.Run(ctx, a.interval)

	a.logger.Info("shutting down reminder scheduler")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
