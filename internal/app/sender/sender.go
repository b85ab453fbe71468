// Package sender runs the notification worker: it consumes booking events from
// RabbitMQ and emails the booking owner.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/beauty-booking/internal/config"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/beauty-booking/internal/services/sender"
	"github.com/magabrotheeeer/beauty-booking/internal/storage/postgresql"
)

var (
	errNoBroker = errors.New("RABBITMQ_URL is required for the notification sender")
	errNoSMTP   = errors.New("SMTP_HOST is required for the notification sender")
)

type App struct {
	db            *postgresql.Storage
	conn          *amqp.Connection
	ch            *amqp.Channel
	queues        []rabbitmq.QueueConfig
	senderService *senderservice.Service
	logger        *slog.Logger
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"

	if cfg.RabbitMQ.URL == "" {
		return nil, fmt.Errorf("%s: %w", op, errNoBroker)
	}
	if cfg.SMTP.Host == "" {
		return nil, fmt.Errorf("%s: %w", op, errNoSMTP)
	}

	db, err := postgresql.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	queues := rabbitmq.GetBookingQueues()
	ch, err := rabbitmq.SetupChannel(conn, queues)
	if err != nil {
		_ = conn.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)
	return &App{
		db:            db,
		conn:          conn,
		ch:            ch,
		queues:        queues,
		senderService: senderservice.NewSenderService(db, transport, logger),
		logger:        logger,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	handle := func(body []byte) error {
		return a.senderService.HandleBookingEvent(ctx, body)
	}
	for _, q := range a.queues {
		if err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, q.QueueName, handle); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), sl.Err(err))
			a.close()
			return err
		}
		a.logger.Info("consuming", slog.String("queue", q.QueueName))
	}

	<-ctx.Done()
	a.logger.Info("sender service shutting down gracefully")
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
