package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/rgwnotify/core/handler"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip bypasses the middleware for matching requests.
	Skip func(r *http.Request) bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// LogLevel for completed requests (default: slog.LevelInfo).
	LogLevel slog.Level

	// LogStart also logs when a request begins, at debug level. Useful for
	// subscriber streams that complete only on disconnect.
	LogStart bool

	// SlowRequestThreshold logs slower requests at warning level (default: 5s).
	// GET requests are exempt since subscriber streams last until disconnect.
	SlowRequestThreshold time.Duration

	// Component defaults to "http".
	Component string
}

// Logging logs every completed request at info level.
func Logging() handler.Middleware {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithLogger is Logging with a custom logger.
func LoggingWithLogger(log *slog.Logger) handler.Middleware {
	return LoggingWithConfig(LoggingConfig{Logger: log})
}

// LoggingWithConfig is Logging with custom configuration.
func LoggingWithConfig(cfg LoggingConfig) handler.Middleware {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.LogLevel == 0 {
		cfg.LogLevel = slog.LevelInfo
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Skip != nil && cfg.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			if cfg.LogStart {
				cfg.Logger.LogAttrs(r.Context(), slog.LevelDebug, "HTTP request started",
					logger.Component(cfg.Component),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.RemoteAddr(RemoteAddr(r)),
				)
			}

			rw := handler.NewResponseWriter(w)
			next.ServeHTTP(rw, r)

			status := rw.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)

			attrs := []slog.Attr{
				logger.Component(cfg.Component),
				logger.Event("response"),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
				logger.RemoteAddr(RemoteAddr(r)),
				logger.UserAgent(r.UserAgent()),
				logger.StatusCode(status),
				logger.BytesOut(rw.BytesWritten()),
				logger.Duration(duration),
			}

			level := cfg.LogLevel
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			case duration > cfg.SlowRequestThreshold && !rw.Hijacked() && r.Method != http.MethodGet:
				level = slog.LevelWarn
				attrs = append(attrs, slog.Bool("slow_request", true))
			}

			cfg.Logger.LogAttrs(r.Context(), level, "HTTP request completed", attrs...)
		})
	}
}
