package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/covervote/internal/logger"
)

type Handlers struct {
	Vote    *VoteHandler
	Results *ResultsHandler
	Live    *LiveHandler
	Auth    *AuthHandler
	Health  *HealthHandler
}

func NewHandler(h Handlers, allowedOrigins []string, l *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger.Resolve(l)))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !containsWildcard(allowedOrigins),
		MaxAge:           300,
	}))

	r.Get("/health", h.Health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/admin", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/options", h.Vote.Options)
		r.Get("/student/{id}", h.Vote.GetStudent)
		r.Post("/student/{id}/confirm", h.Vote.ConfirmStudent)
		r.Post("/vote", h.Vote.CastVote)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAdmin)
			r.Get("/results", h.Results.Results)
			r.Get("/live", h.Live.Live)
		})
	})

	return r
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
