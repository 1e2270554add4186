package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/tempus/internal/calcservice"
)

const maxBodyBytes = 1 << 20

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *calcservice.Service, logger *slog.Logger, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Group(func(r chi.Router) {
		r.Use(limitBody(maxBodyBytes))

		r.Post("/add", h.Add)
		r.Post("/subtract", h.Subtract)
		r.Post("/until", h.Until)
		r.Post("/since", h.Since)
		r.Post("/round", h.Round)
		r.Post("/resolve", h.Resolve)
		r.Post("/with", h.With)

		r.Route("/duration", func(r chi.Router) {
			r.Post("/round", h.DurationRound)
			r.Post("/total", h.DurationTotal)
			r.Post("/add", h.DurationAdd)
			r.Post("/compare", h.DurationCompare)
		})
	})

	r.Get("/zones", h.ListZones)
	r.Get("/zones/*", h.ZoneDay)
	r.Get("/options", h.Options)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
