// Package login implements POST /api/auth/login.
//
// An unknown email and a wrong password produce the same 401 body, so the
// endpoint does not reveal which accounts exist.
package login

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
	msgLoggedIn           = "Login successful"
	msgInvalidCredentials = "Invalid credentials"
)

// Request holds the login credentials.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LogValue keeps the password out of the logs.
func (r Request) LogValue() slog.Value {
	return slog.GroupValue(slog.String("email", r.Email))
}

// Response is returned on success.
type Response struct {
	Message string `json:"message" example:"Login successful"`
	Token   string `json:"token"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// Handler authenticates users.
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
// @Summary Log in
// @Description Checks the credentials and returns a bearer token with the user's id, name and email.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body Request true "Credentials"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Malformed body"
// @Failure 401 {object} response.ErrorResponse "Invalid credentials"
// @Failure 429 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /api/auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	// missing credentials are just wrong credentials
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(msgInvalidCredentials))
		return
	}

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Info("invalid credentials")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(msgInvalidCredentials))
		return
	}
	if err != nil {
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternalError))
		return
	}

	log.Info("login success", slog.String("user_uid", session.User.UUID))
	render.JSON(w, r, Response{
		Message: msgLoggedIn,
		Token:   session.Token,
		UserID:  session.User.UUID,
		Name:    session.User.Name,
		Email:   session.User.Email,
	})
}
