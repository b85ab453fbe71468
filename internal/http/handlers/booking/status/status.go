// Package status implements PATCH /bookings/{id}/status.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/beauty-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/beauty-booking/internal/http/response"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/services/booking"
)

const (
	msgInvalidID         = "Invalid booking ID format"
	msgNotFound          = "Booking not found"
	msgInvalidTransition = "Invalid status transition"
)

// Service moves bookings between statuses.
type Service interface {
	UpdateStatus(ctx context.Context, userUID, id, status string) (*models.Booking, error)
}

// Request carries the target status.
type Request struct {
	Status string `json:"status" validate:"required,oneof=pending confirmed cancelled" example:"confirmed"`
}

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Change a booking's status
// @Description Allowed transitions: pending to confirmed, pending to cancelled, confirmed to cancelled. Cancelling frees the slot.
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking id"
// @Param request body Request true "Target status"
// @Success 200 {object} models.Booking
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /bookings/{id}/status [patch]
// @Router /appointments/{id}/status [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.status"

	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("booking_id", id),
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
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			render.JSON(w, r, response.ValidationError(verrs))
			return
		}
		render.JSON(w, r, response.Error(response.MsgInvalidBody))
		return
	}

	updated, err := h.service.UpdateStatus(r.Context(), userUID, id, req.Status)
	var verr *booking.ValidationError
	switch {
	case errors.Is(err, booking.ErrInvalidID):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(msgInvalidID))
		return
	case errors.As(err, &verr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(verr.Msg))
		return
	case errors.Is(err, booking.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(msgNotFound))
		return
	case errors.Is(err, booking.ErrInvalidTransition):
		log.Info("transition rejected", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(msgInvalidTransition))
		return
	case errors.Is(err, booking.ErrSlotUnavailable):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Msg(response.MsgSlotTaken))
		return
	case err != nil:
		log.Error("failed to update booking status", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternalError))
		return
	}

	render.JSON(w, r, updated)
}
