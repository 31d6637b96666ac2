// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tom832/MinerU/cmd/mineru-api/handlers"
	"github.com/tom832/MinerU/cmd/mineru-api/middleware"
	"github.com/tom832/MinerU/internal/config"
	"github.com/tom832/MinerU/internal/observability"
	"github.com/tom832/MinerU/internal/upload"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, processor handlers.Processor, stager *upload.Stager) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	if cfg.Server.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Server.RequestTimeout))
	}

	info := handlers.NewInfoHandler(cfg.Server.Port)
	process := handlers.NewProcessHandler(logger, processor, stager, cfg.Server.MaxUploadBytes)

	// Unauthenticated
	r.Get("/", info.Root)
	r.Get("/health", info.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{Token: cfg.Auth.Token}, logger))

		r.Post("/process/pdf", process.ProcessPDF)
		r.Post("/process/image", process.ProcessImage)
	})

	return r
}
