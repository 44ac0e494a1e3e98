package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/user/profile-collector/internal/delivery/http/handler"
	"github.com/user/profile-collector/internal/delivery/http/middleware"
	"go.uber.org/zap"
)

func New(h *handler.Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/api/health", h.HandleHealthCheck)

	r.Route("/api/runs", func(r chi.Router) {
		r.Post("/", h.HandleSubmitRun)
		r.Get("/{id}", h.HandleGetRun)
		r.Get("/{id}/profiles", h.HandleListProfiles)
	})

	return r
}
