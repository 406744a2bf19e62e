package server

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"mercator-hq/underwriter/pkg/config"
)

// Authentication error details.
const (
	ErrorTypeAuthentication = "authentication_error"
	CodeInvalidAPIKey       = "invalid_api_key"
)

// APIKey is an accepted API key and the client it belongs to.
type APIKey struct {
	Key      string
	ClientID string
	Enabled  bool
}

// APIKeyValidator checks presented keys against a fixed key set.
type APIKeyValidator struct {
	keys []APIKey
}

// NewAPIKeyValidator creates a validator from the configured keys.
func NewAPIKeyValidator(keys []config.APIKeyConfig) *APIKeyValidator {
	v := &APIKeyValidator{keys: make([]APIKey, 0, len(keys))}
	for _, k := range keys {
		v.keys = append(v.keys, APIKey{Key: k.Key, ClientID: k.ClientID, Enabled: !k.Disabled})
	}
	return v
}

// Validate returns the key matching presented. Every configured key is
// compared in constant time.
func (v *APIKeyValidator) Validate(presented string) (*APIKey, bool) {
	var match *APIKey
	for i := range v.keys {
		if subtle.ConstantTimeCompare([]byte(v.keys[i].Key), []byte(presented)) == 1 {
			match = &v.keys[i]
		}
	}
	if match == nil || !match.Enabled {
		return nil, false
	}
	return match, true
}

type clientIDKey struct{}

// ClientIDFromContext returns the authenticated client ID, if any.
func ClientIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clientIDKey{}).(string)
	return id, ok
}

// APIKeyMiddleware rejects requests without a valid API key in header.
// Requests to exempt paths pass through unauthenticated.
func APIKeyMiddleware(validator *APIKeyValidator, header string, exempt map[string]bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if exempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			key := extractAPIKey(r, header)
			if key == "" {
				logger.WarnContext(r.Context(), "missing API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, ErrorTypeAuthentication, CodeInvalidAPIKey, "missing API key")
				return
			}

			info, ok := validator.Validate(key)
			if !ok {
				logger.WarnContext(r.Context(), "invalid API key", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, ErrorTypeAuthentication, CodeInvalidAPIKey, "invalid API key")
				return
			}

			logger.DebugContext(r.Context(), "API key authenticated", "client_id", info.ClientID, "path", r.URL.Path)
			ctx := context.WithValue(r.Context(), clientIDKey{}, info.ClientID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractAPIKey(r *http.Request, header string) string {
	value := strings.TrimSpace(r.Header.Get(header))
	if rest, ok := strings.CutPrefix(value, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return value
}
