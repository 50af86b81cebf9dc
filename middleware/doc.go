// Package middleware provides net/http middleware for the service: request
// IDs, client address resolution and access logging.
//
// Each middleware has a default constructor and a WithConfig variant. Every
// config carries a Skip func for bypassing specific requests.
//
//	import "github.com/dmitrymomot/rgwnotify/middleware"
//
//	h := handler.Chain(mux,
//		middleware.RequestID(),
//		middleware.ClientIP(),
//		middleware.LoggingWithConfig(middleware.LoggingConfig{
//			Logger:   log,
//			LogStart: true,
//		}),
//	)
//
// # Request ID
//
// RequestID reuses an incoming X-Request-ID header or generates a UUID, sets
// it on the response and stores it in the request context. RequestIDExtractor
// plugs it into the logger so every *Context log call carries request_id:
//
//	log := logger.New(logger.WithContextExtractors(middleware.RequestIDExtractor))
//
// # Client IP
//
// ClientIP resolves the client address through pkg/clientip once per request.
// RemoteAddr reads it back and falls back to r.RemoteAddr.
//
// # Logging
//
// Logging writes one record per completed request with method, path, status,
// bytes written and duration. 5xx responses log at error and 4xx at warn.
// Long-lived subscription streams are not flagged as slow.
package middleware
