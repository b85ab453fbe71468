// Package register implements POST /api/auth/register.
package register

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/beauty-booking/internal/http/response"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/services/auth"
)

const (
	msgRegistered = "User registered successfully"
	msgUserExists = "User already exists"
	msgRequired   = "Name, email, and password are required"
	msgTooLong    = "Password must be at most 72 bytes"
)

// Request is the registration payload.
type Request struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone,omitempty"`
}

// LogValue keeps the password out of the logs.
func (r Request) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", r.Name),
		slog.String("email", r.Email),
		slog.String("phone", r.Phone),
	)
}

// Response is returned on success.
type Response struct {
	Message string `json:"message" example:"User registered successfully"`
	Token   string `json:"token"`
}

// Handler registers new users.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New returns a Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Register a user
// @Description Creates an account and returns a bearer token bound to the new user id.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Account details"
// @Success 201 {object} Response
// @Failure 400 {object} response.ErrorResponse "Missing fields, password over 72 bytes or email already registered"
// @Failure 429 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return
	}
	log.Debug("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(msgRequired))
		return
	}

	session, err := h.service.Register(r.Context(), req.Name, req.Email, req.Password, req.Phone)
	switch {
	case errors.Is(err, auth.ErrValidation):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(msgRequired))
		return
	case errors.Is(err, auth.ErrPasswordTooLong):
		log.Info("password too long")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(msgTooLong))
		return
	case errors.Is(err, auth.ErrUserExists):
		log.Info("email already registered")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(msgUserExists))
		return
	case err != nil:
		log.Error("registration failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternalError))
		return
	}

	log.Info("user registered", slog.String("user_uid", session.User.UUID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, Response{
		Message: msgRegistered,
		Token:   session.Token,
	})
}
