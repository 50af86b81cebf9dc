package middleware

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/rgwnotify/pkg/clientip"
)

type clientIPContextKey struct{}

// ClientIPConfig configures the client IP middleware.
type ClientIPConfig struct {
	// Skip bypasses extraction for matching requests.
	Skip func(r *http.Request) bool
	// HeaderName, when set, echoes the resolved address in a response header.
	HeaderName string
}

// ClientIP resolves the client address once per request and stores it in
// the request context.
func ClientIP() func(http.Handler) http.Handler {
	return ClientIPWithConfig(ClientIPConfig{})
}

// ClientIPWithConfig is ClientIP with custom configuration.
func ClientIPWithConfig(cfg ClientIPConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientip.GetIP(r)
			if cfg.HeaderName != "" {
				w.Header().Set(cfg.HeaderName, ip)
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPContextKey{}, ip)))
		})
	}
}

// GetClientIP returns the address stored by ClientIP.
func GetClientIP(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPContextKey{}).(string)
	return ip, ok && ip != ""
}

// RemoteAddr returns the stored client address, or r.RemoteAddr when the
// middleware did not run.
func RemoteAddr(r *http.Request) string {
	if ip, ok := GetClientIP(r.Context()); ok {
		return ip
	}
	return r.RemoteAddr
}
