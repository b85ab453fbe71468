package booking

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/beauty-booking/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/beauty-booking/internal/http/handlers/auth/register"
	bookingcreate "github.com/magabrotheeeer/beauty-booking/internal/http/handlers/booking/create"
	bookinglist "github.com/magabrotheeeer/beauty-booking/internal/http/handlers/booking/list"
	bookingstatus "github.com/magabrotheeeer/beauty-booking/internal/http/handlers/booking/status"
	"github.com/magabrotheeeer/beauty-booking/internal/http/handlers/health"
	userlist "github.com/magabrotheeeer/beauty-booking/internal/http/handlers/user/list"
	userread "github.com/magabrotheeeer/beauty-booking/internal/http/handlers/user/read"
	"github.com/magabrotheeeer/beauty-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/beauty-booking/internal/http/response"
)

// AuthService registers users, logs them in and validates their tokens.
type AuthService interface {
	register.Service
	login.Service
	middlewarectx.TokenValidator
}

// UserService serves user projections.
type UserService interface {
	userlist.Service
	userread.Service
}

// BookingService creates, lists and transitions bookings.
type BookingService interface {
	bookingcreate.Service
	bookinglist.Service
	bookingstatus.Service
}

// Services groups the use cases behind the HTTP surface.
type Services struct {
	Auth    AuthService
	Users   UserService
	Booking BookingService
}

// RouteOptions configures the cross-cutting middleware.
type RouteOptions struct {
	AllowedOrigin string
	AuthLimiter   *middlewarectx.RateLimiter
}

// RegisterRoutes mounts every route of the API on r.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, opts RouteOptions) {
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middlewarectx.Recoverer(logger),
		middlewarectx.CORS(opts.AllowedOrigin),
		middlewarectx.Metrics,
	)

	// unknown paths and unsupported methods look the same to clients
	notFound := func(w http.ResponseWriter, r *http.Request) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(response.MsgNotFound))
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	r.Get("/", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/docs/*", httpSwagger.WrapHandler)

	authLimit := func(next http.Handler) http.Handler { return next }
	if opts.AuthLimiter != nil {
		authLimit = middlewarectx.RateLimitMiddleware(opts.AuthLimiter, logger)
	}
	r.With(authLimit).Post("/api/auth/register", register.New(logger, svc.Auth).ServeHTTP)
	r.With(authLimit).Post("/api/auth/login", login.New(logger, svc.Auth).ServeHTTP)

	userList := userlist.New(logger, svc.Users)
	userRead := userread.New(logger, svc.Users)
	create := bookingcreate.New(logger, svc.Booking)
	list := bookinglist.New(logger, svc.Booking)
	status := bookingstatus.New(logger, svc.Booking)

	r.Group(func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(svc.Auth, logger))

		// the browser client prefixes every call with /api
		for _, prefix := range []string{"", "/api"} {
			r.Get(prefix+"/users", userList.ServeHTTP)
			r.Get(prefix+"/users/{id}", userRead.ServeHTTP)
			for _, base := range []string{"/bookings", "/appointments"} {
				r.Post(prefix+base, create.ServeHTTP)
				r.Get(prefix+base, list.ServeHTTP)
				r.Patch(prefix+base+"/{id}/status", status.ServeHTTP)
			}
		}
	})
}
