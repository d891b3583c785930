// Package http provides HTTP routing and middleware configuration
// for the word server.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/phihung0131/vocabulary-extension/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the word
// server API. It applies JSON content-type enforcement on mutating
// endpoints and request logging everywhere.
//
// Routes:
//
//	POST /api/check-word        → wordHandler.CheckWord
//	POST /api/add-collocations  → wordHandler.AddCollocations
//	GET  /api/collocations      → wordHandler.List
//	GET  /api/export-csv        → wordHandler.ExportCSV
//	POST /api/delete-all        → wordHandler.DeleteAll
func NewRouter(wordHandler *WordHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		// JSON endpoints
		r.Group(func(r chi.Router) {
			// Only allow requests with Content-Type: application/json
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/check-word", wordHandler.CheckWord)
			r.Post("/add-collocations", wordHandler.AddCollocations)
		})

		r.Get("/collocations", wordHandler.List)
		r.Get("/export-csv", wordHandler.ExportCSV)
		r.Post("/delete-all", wordHandler.DeleteAll)
	})

	return r
}
