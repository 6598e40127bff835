package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"

	"github.com/dealeros/dealeros-backend/pkg/config"
)

const corsPreflightMaxAge = 5 * time.Minute

var defaultDevOrigins = []string{"http://localhost:3000"}

// CORS allows credentials so the impersonation cookie reaches the API from the
// dashboard origin. Clients need to read the request id, the token header and
// the export file name.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = defaultDevOrigins
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", AccessTokenHeader, IdempotencyKeyHeader, requestIDHeader},
		ExposedHeaders:   []string{AccessTokenHeader, requestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           int(corsPreflightMaxAge.Seconds()),
	})
}
