package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"codebuds/internal/api"
	"codebuds/internal/metrics"
)

func New(h *api.Handlers) http.Handler {
	r := chi.NewRouter()

	r.Get("/api/v1/healthz", h.Health)
	r.Get("/api/v1/rooms/{id}", h.RoomStatus)
	r.Post("/api/v1/run", h.RunCode)

	r.Get("/ws", h.CollabWS)

	r.Handle("/metrics", metrics.Handler())

	return r
}
