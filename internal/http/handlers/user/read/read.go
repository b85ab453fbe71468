// Package read implements GET /users/{id}.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/beauty-booking/internal/http/response"
	"github.com/magabrotheeeer/beauty-booking/internal/lib/sl"
	"github.com/magabrotheeeer/beauty-booking/internal/models"
	"github.com/magabrotheeeer/beauty-booking/internal/services/user"
)

const (
	msgInvalidID = "Invalid user ID format"
	msgNotFound  = "User not found"
)

// Service looks a user up by id.
type Service interface {
	Get(ctx context.Context, id string) (*models.User, error)
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
// @Summary Get a user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User id"
// @Success 200 {object} models.User
// @Failure 400 {object} response.ErrorResponse "Malformed id"
// @Failure 401 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Router /users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.read"

	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_uid", id),
	)

	u, err := h.service.Get(r.Context(), id)
	switch {
	case errors.Is(err, user.ErrInvalidID):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(msgInvalidID))
		return
	case errors.Is(err, user.ErrNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error(msgNotFound))
		return
	case err != nil:
		log.Error("failed to read user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternalError))
		return
	}

	render.JSON(w, r, u)
}
