// Package create implements POST /bookings and its /appointments alias.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/beauty-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/beauty-booking/internal/http/response"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/services/booking"
)

const msgUnknownUser = "User not found"

// Service books slots.
type Service interface {
	Create(ctx context.Context, userUID string, req models.BookingRequest) (*models.Booking, error)
}

// Request is the booking payload. Duration is in minutes and defaults to 30.
type Request struct {
	Service  string `json:"service" example:"haircut"`
	Date     string `json:"date" example:"2025-06-01T10:00:00Z"`
	Duration int    `json:"duration,omitempty" example:"30"`
	Notes    string `json:"notes,omitempty"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Book a slot
// @Description Creates a pending booking for the caller. A slot is taken when another live booking starts at exactly the same time.
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body Request true "Booking"
// @Success 201 {object} models.Booking
// @Failure 400 {object} response.MsgResponse "Time slot unavailable"
// @Failure 400 {object} response.ErrorResponse "Missing or malformed fields"
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /bookings [post]
// @Router /appointments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.create"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := middlewarectx.UserUIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error(response.MsgInvalidToken))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Info("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return
	}
	log.Debug("request body decoded", slog.Any("request", req))

	created, err := h.service.Create(r.Context(), userUID, models.BookingRequest{
		Service:  req.Service,
		Date:     req.Date,
		Duration: req.Duration,
		Notes:    req.Notes,
	})
	var verr *booking.ValidationError
	switch {
	case errors.As(err, &verr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(verr.Msg))
		return
	case errors.Is(err, booking.ErrSlotUnavailable):
		log.Info("slot unavailable", slog.String("date", req.Date))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Msg(response.MsgSlotTaken))
		return
	case errors.Is(err, booking.ErrUnknownUser):
		log.Warn("token refers to a missing user", slog.String("user_uid", userUID))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(msgUnknownUser))
		return
	case err != nil:
		log.Error("failed to create booking", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternalError))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, created)
}
