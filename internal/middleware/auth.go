package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/Lixing-Zhang/stall-backend/internal/config"
)

// APIKeyHeader carries the admin API key
const APIKeyHeader = "api_key"

// APIKeyAuth middleware validates the API key sent with admin requests
func APIKeyAuth(cfg config.AuthConfig) func(next http.Handler) http.Handler {
	keys := make([][]byte, len(cfg.APIKeys))
	for i, k := range cfg.APIKeys {
		keys[i] = []byte(k)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(APIKeyHeader)

			if apiKey == "" {
				http.Error(w, "Unauthorized: API key required", http.StatusUnauthorized)
				return
			}

			valid := false
			for _, validKey := range keys {
				if subtle.ConstantTimeCompare([]byte(apiKey), validKey) == 1 {
					valid = true
					break
				}
			}

			if !valid {
				http.Error(w, "Forbidden: Invalid API key", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
