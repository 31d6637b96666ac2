// Package middleware provides HTTP middleware for the MinerU API.
package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tom832/MinerU/internal/domain"
	"github.com/tom832/MinerU/internal/observability"
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Token string
}

// Auth returns middleware that accepts only "Authorization: Bearer <token>"
// with the configured token. Anything else is answered with 401.
func Auth(cfg AuthConfig, logger *observability.Logger) func(http.Handler) http.Handler {
	want := []byte(cfg.Token)
	if logger == nil {
		logger = observability.NopLogger()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err == nil && subtle.ConstantTimeCompare([]byte(token), want) != 1 {
				err = domain.AuthError("Invalid authentication token", nil)
			}
			if err != nil {
				logger.WithContext(r.Context()).Warn().
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Err(err).
					Msg("authentication failed")
				unauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", domain.AuthError("Not authenticated", nil)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", domain.AuthError("Invalid authentication credentials", nil)
	}
	return strings.TrimSpace(parts[1]), nil
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": domain.Describe(err),
	})
}
