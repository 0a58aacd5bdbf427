package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lexivid/lexivid/internal/api"
	apiMiddleware "github.com/lexivid/lexivid/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	materialHandler := api.NewMaterialHandler(app.materialService)
	jobHandler := api.NewJobHandler(app.queueService, app.config.Queue.BatchLimit)

	r.Route("/api", func(r chi.Router) {
		// Material submission and inspection
		r.Post("/materials", materialHandler.SubmitMaterial)
		r.Get("/materials/{id}", materialHandler.GetMaterial)

		// Job inspection and manual step execution
		r.Get("/jobs/{id}", jobHandler.GetJob)
		r.Post("/jobs/{id}/run", jobHandler.RunJob)

		// Operator queue controls
		r.Post("/queue/dispatch", jobHandler.Dispatch)
		r.Post("/queue/reclaim", jobHandler.Reclaim)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
