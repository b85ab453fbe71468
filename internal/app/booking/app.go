// Package booking assembles the booking API: storage, optional cache and broker,
// services and the HTTP server.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/beauty-booking/internal/cache"
	"github.com/magabrotheeeer/beauty-booking/internal/config"
	"github.com/magabrotheeeer/beauty-booking/internal/events"
	"github.com/magabrotheeeer/beauty-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/metrics"
	"github.com/magabrotheeeer/beauty-booking/internal/migrations"
	authservice "github.com/magabrotheeeer/beauty-booking/internal/services/auth"
	bookingservice "github.com/magabrotheeeer/beauty-booking/internal/services/booking"
	userservice "github.com/magabrotheeeer/beauty-booking/internal/services/user"
	"github.com/magabrotheeeer/beauty-booking/internal/storage/postgresql"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *postgresql.Storage
	redis  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// New connects to the database and runs migrations; failing either is fatal.
// Redis and RabbitMQ are optional: when unset or unreachable the API runs
// without the user cache or booking notifications.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.booking.New"

	db, err := postgresql.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
	}

	var userCache userservice.Cache = cache.Nop{}
	if cfg.RedisConnection.Addr != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis unavailable, user cache disabled", sl.Err(err))
		} else {
			app.redis = redisCache
			userCache = redisCache
		}
	}

	var publisher bookingservice.EventPublisher = events.Nop{}
	if cfg.RabbitMQ.URL != "" {
		if err := app.connectBroker(cfg.RabbitMQ); err != nil {
			logger.Warn("rabbitmq unavailable, booking notifications disabled", sl.Err(err))
		} else {
			publisher = events.NewPublisher(app.ch)
		}
	}

	metrics.Register()

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	svc := Services{
		Auth:    authservice.NewAuthService(db, jwtMaker, logger),
		Users:   userservice.NewUserService(db, userCache, logger),
		Booking: bookingservice.NewBookingService(db, publisher, logger),
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, svc, RouteOptions{
		AllowedOrigin: cfg.CORS.AllowedOrigin,
		AuthLimiter:   middlewarectx.NewRateLimiter(ctx, cfg.RateLimit.RPS, cfg.RateLimit.Burst),
	})

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.Address(),
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

func (a *App) connectBroker(cfg config.RabbitMQ) error {
	conn, err := rabbitmq.Connect(cfg.URL, cfg.MaxRetries, cfg.RetryDelay)
	if err != nil {
		return err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetBookingQueues())
	if err != nil {
		_ = conn.Close()
		return err
	}
	a.conn = conn
	a.ch = ch
	return nil
}

// Run serves HTTP until ctx is done, then shuts down gracefully and releases
// every connection.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.ch != nil {
		if err := a.ch.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.conn != nil {
		if err := a.conn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
