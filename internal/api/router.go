package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes live under /api; every request acts as the demo user.
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User routes
		r.Get("/user", apiHandler.GetUserHandler)
		r.Patch("/user", apiHandler.UpdateUserHandler)

		// Conversation routes
		r.Get("/conversations", apiHandler.ListConversationsHandler)
		r.Post("/conversations", apiHandler.CreateConversationHandler)
		r.Patch("/conversations/{conversationID}", apiHandler.UpdateConversationHandler)
		r.Delete("/conversations/{conversationID}", apiHandler.DeleteConversationHandler)

		// Message routes
		r.Get("/conversations/{conversationID}/messages", apiHandler.ListMessagesHandler)
		r.Post("/conversations/{conversationID}/messages", apiHandler.CreateMessageHandler)

		// Token usage routes
		r.Get("/token-usage", apiHandler.GetTokenUsageHandler)
		r.Post("/token-usage", apiHandler.RecordTokenUsageHandler)
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
