// Package logger provides structured logging utilities built on log/slog.
//
// New builds a *slog.Logger from functional options; environment presets pick
// the format and level:
//
//	import "github.com/dmitrymomot/rgwnotify/core/logger"
//
//	log := logger.New(
//		logger.ForEnv(os.Getenv("APP_ENV"), "rgwnotify"),
//		logger.WithContextExtractors(middleware.RequestIDExtractor),
//	)
//	logger.SetAsDefault(log)
//
// Development is text at debug level; staging and production are JSON at info.
//
// # Attribute Helpers
//
// Helpers give consistent keys across packages. Helpers that receive an empty
// value return an empty slog.Attr, which slog drops, so they can be passed
// without nil checks:
//
//	log.Error("metadata lookup failed",
//		logger.Component("enrich"),
//		logger.Bucket(ref.Bucket),
//		logger.ObjectKey(ref.Key),
//		logger.EventID(ev.ID),
//		logger.Error(err),
//	)
//
// Request logging uses Method, Path, StatusCode, RemoteAddr, Latency and
// BytesOut. Subscriber lifecycle logging uses SubscriberID and Condition.
//
// # Testing
//
// Direct output into a buffer:
//
//	var buf bytes.Buffer
//	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
package logger
