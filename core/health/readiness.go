package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/rgwnotify/core/handler"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

// DefaultCheckTimeout bounds a single readiness probe run.
const DefaultCheckTimeout = 5 * time.Second

// Check is a dependency probe such as opensearch.Healthcheck or redis.Healthcheck.
type Check func(ctx context.Context) error

// Readiness runs every check and answers "READY", or 503 when any fails.
// Nil checks are skipped.
func Readiness(log *slog.Logger, checks ...Check) handler.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(r *http.Request) handler.Response {
		ctx, cancel := context.WithTimeout(r.Context(), DefaultCheckTimeout)
		defer cancel()

		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed", logger.Component("health"), logger.Error(err))
				return handler.Text(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable))
			}
		}
		return handler.String("READY")
	}
}
