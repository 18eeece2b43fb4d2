package api

import (
	"net/http"
	"time"

	conversationapi "github.com/futig/issue-assistant/internal/api/conversation"
	"github.com/futig/issue-assistant/internal/api/docs"
	documentapi "github.com/futig/issue-assistant/internal/api/document"
	"github.com/futig/issue-assistant/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the HTTP router
func SetupRouter(
	conversationHandler *conversationapi.Handler,
	documentHandler *documentapi.Handler,
	metricsHandler http.Handler,
	requestTimeout time.Duration,
	swaggerPath string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)               // Recover from panics
	r.Use(chimiddleware.RequestID)               // Add request ID
	r.Use(middleware.Logger(logger))             // Log requests
	r.Use(middleware.CORS)                       // Handle CORS
	r.Use(chimiddleware.Timeout(requestTimeout)) // Completion calls can be slow

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})
	r.Handle("/metrics", metricsHandler)

	// Swagger UI over docs/swagger.yaml
	docs.RegisterRoutes(r, swaggerPath)

	conversationapi.RegisterRoutes(r, conversationHandler)
	documentapi.RegisterRoutes(r, documentHandler)

	return r
}
