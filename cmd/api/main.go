package main

import (
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"dealportal/backend-go/internal/config"
	"dealportal/backend-go/internal/handlers"
	internalhttp "dealportal/backend-go/internal/http"
	"dealportal/backend-go/internal/presenter"
	"dealportal/backend-go/internal/services"
)

func main() {
	_ = godotenv.Load(
		".env",
		".env.local",
	)
	cfg, err := config.Load()
	logger := newLogger(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	if cfg.CRMAccessToken == "" {
		logger.Warn().Msg("CRM_ACCESS_TOKEN is not set; portal requests will fail with a configuration error")
	}
	if cfg.PaymentPageURL == "" {
		logger.Warn().Msg("PAYMENT_PAGE_URL is not set; portal pages will not offer a pay link")
	}

	pages, err := presenter.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse templates")
	}
	crm := services.NewCRMClient(cfg)
	rates := services.NewRateStore(cfg)
	api := handlers.New(cfg, crm, pages, rates)

	h := internalhttp.NewRouter(cfg, api, rates, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info().Str("addr", srv.Addr).Str("rate_store", rates.Backend()).Msg("deal portal listening")
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg config.Config) zerolog.Logger {
	var out io.Writer = os.Stdout
	if strings.EqualFold(cfg.LogFormat, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", "dealportal").Logger()
}
