package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS applies the configured origin allow-list.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id", "Idempotent-Replayed", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
