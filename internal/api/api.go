package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const Banner = "Snake Prediction API is running!"

// AddServiceRoutes registers the routes that do not belong to a single
// service.
func AddServiceRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(Banner)) //nolint:errcheck
	})
	r.Get("/health", RestHandler(func(r *http.Request) (any, error) { return nil, nil }))
}
