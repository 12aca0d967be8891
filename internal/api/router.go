package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pantry-chef/internal/apperrors"
)

func (s *Server) setupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Use(s.requestIDMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.panicRecoveryMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         300,
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, r, http.StatusNotFound, string(apperrors.CodeNotFound), "Route not found", false, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorCode(w, r, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed", false, nil)
	})

	// System endpoints (no rate limiting)
	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if s.webhook != nil {
		r.Method(http.MethodPost, s.webhookPath, s.webhook)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(s.rateLimitMiddleware)

		r.Get("/recipes", s.handleListRecipes)
		r.Get("/recipes/{id}", s.handleGetRecipe)
		r.Post("/recipes/search", s.handleSearch)
		r.Post("/recipes/generate", s.handleGenerate)

		r.Post("/ingredients/analyze-image", s.handleAnalyzeImage)

		r.Route("/user", func(r chi.Router) {
			r.Get("/preferences", s.handleGetPreferences)
			r.Put("/preferences", s.handleUpdatePreferences)
			r.Get("/favorites", s.handleListFavorites)
			r.Post("/favorites/{id}", s.handleToggleFavorite)
			r.Get("/ratings", s.handleListRatings)
			r.Post("/ratings", s.handleRate)
			r.Get("/suggestions", s.handleSuggestions)
			r.Get("/recognition-usage", s.handleRecognitionUsage)
		})
	})

	return r
}
