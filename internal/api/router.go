// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"groupcart/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(accountHandler *handler.AccountHandler, listHandler *handler.ListHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)                       // Add a request ID to the context
	r.Use(middleware.RealIP)                          // Use the real IP address
	r.Use(middleware.Logger)                          // Log HTTP requests
	r.Use(middleware.Recoverer)                       // Recover from panics and return 500
	r.Use(middleware.Timeout(handler.DefaultTimeout)) // Set a default timeout for requests

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// User and personal list routes
	r.Route("/users", func(r chi.Router) {
		r.Post("/", accountHandler.CreateUser)
		r.Get("/{username}", accountHandler.GetUser)
		r.Patch("/{username}", accountHandler.UpdateUser)

		r.Get("/{username}/list", listHandler.GetList)
		r.Post("/{username}/list", listHandler.CreateItem)
		r.Patch("/{username}/list/{itemID}", listHandler.UpdateItem)
		r.Delete("/{username}/list/{itemID}", listHandler.DeleteItem)

		r.Get("/{username}/favors/for", listHandler.GetFavorsFor)
		r.Get("/{username}/favors/by", listHandler.GetFavorsBy)
	})

	// Group routes
	r.Route("/groups", func(r chi.Router) {
		r.Post("/", accountHandler.CreateGroup)
		r.Get("/{groupID}", accountHandler.GetGroup)
		r.Get("/{groupID}/cart", listHandler.GetSharedList)
	})

	// Favor ledger routes
	r.Route("/favors", func(r chi.Router) {
		r.Post("/fulfill", listHandler.Fulfill)
		r.Post("/{favorID}/void", listHandler.Void)
		r.Patch("/{favorID}", listHandler.UpdateFavor)
	})

	return r
}
