// Package list implements GET /bookings and its /appointments alias.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/beauty-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/beauty-booking/internal/http/response"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
)

// Service lists the bookings of one user.
type Service interface {
	List(ctx context.Context, userUID string) ([]*models.Booking, error)
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
// @Summary List my bookings
// @Description Returns the caller's bookings, latest date first.
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Booking
// @Failure 401 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /bookings [get]
// @Router /appointments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.booking.list"

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

	bookings, err := h.service.List(r.Context(), userUID)
	if err != nil {
		log.Error("failed to list bookings", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternalError))
		return
	}
	if bookings == nil {
		bookings = []*models.Booking{}
	}

	log.Debug("bookings listed", slog.Int("count", len(bookings)))
	render.JSON(w, r, bookings)
}
