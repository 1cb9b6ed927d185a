package httpserver

import (
	"crypto/subtle"
	"net/http"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

const apiKeyHeader = "api-key"

// apiKeyAuth checks the api-key header against the configured key. Auth is
// disabled when no key is configured or when running in development.
func apiKeyAuth(apiKey, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	enabled := apiKey != "" && environment != "development"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !enabled {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(apiKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				logger.Warn("request-rejected-bad-api-key",
					zap.String("path", r.URL.Path),
					zap.String("remote", r.RemoteAddr))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
