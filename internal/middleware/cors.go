package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/lacajita/backend/internal/config"
)

// CORS applies the configured cross-origin policy and answers preflights.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Origins,
		AllowedMethods:   cfg.Methods,
		AllowedHeaders:   cfg.Headers,
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: cfg.Credentials,
		MaxAge:           300,
	})
}
