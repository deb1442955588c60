package middleware

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/angelmondragon/lttsale-console/api/responses"
)

// CORS returns middleware that applies the console's allowed origin policy. The
// browser app sends the session cookie, so credentials are allowed.
func CORS(origins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{responses.RedirectHeader, requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler
}
