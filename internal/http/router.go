package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"dealportal/backend-go/internal/config"
	"dealportal/backend-go/internal/handlers"
	"dealportal/backend-go/internal/services"
)

func NewRouter(cfg config.Config, api *handlers.API, rates services.RateStore, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(withLogging(logger))
	r.Use(withCORS)
	r.Use(withRateLimit(rates, cfg.RateLimitPerMin))
	r.Use(withRecovery)

	r.Get("/", api.Portal)
	r.Get("/portal", api.Portal)
	r.Get("/api/v1/ledger", api.Ledger)
	r.Get("/api/v1/health", api.Health)
	return r
}
