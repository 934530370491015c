// Package main provides the API router setup.
package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/spherical/libs/ledger-engine/cmd/ledger-engine-api/handlers"
	"github.com/spherical-ai/spherical/libs/ledger-engine/cmd/ledger-engine-api/middleware"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/app"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
)

// NewRouter creates the main API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, engine *app.App) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(middleware.RequestContext)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.WriteTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"ledger-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := engine.Store.Check(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "detail": err.Error()})
			return
		}
		w.Write([]byte(`{"status":"ready"}`))
	})

	questionHandler := handlers.NewQuestionHandler(logger, engine)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/questions", questionHandler.Ask)

		r.Get("/rules", func(w http.ResponseWriter, r *http.Request) {
			type ruleDTO struct {
				Name    string `json:"name"`
				Example string `json:"example"`
			}
			rules := engine.Classifier.Rules()
			out := make([]ruleDTO, 0, len(rules))
			for _, rule := range rules {
				out = append(out, ruleDTO{Name: rule.Name, Example: rule.Example})
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(out)
		})
	})

	return r
}
