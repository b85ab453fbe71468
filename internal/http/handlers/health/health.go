// Package health answers GET / so load balancers can probe the API.
package health

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
)

const banner = "Beauty Booking API is running!"

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

// ServeHTTP godoc
// @Summary Liveness probe
// @Tags Health
// @Produce plain
// @Success 200 {string} string "Beauty Booking API is running!"
// @Router / [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.PlainText(w, r, banner)
}
