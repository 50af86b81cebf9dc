package endpoint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/rgwnotify/core/filter"
	"github.com/dmitrymomot/rgwnotify/core/handler"
	"github.com/dmitrymomot/rgwnotify/core/health"
	"github.com/dmitrymomot/rgwnotify/core/hub"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

// Publisher accepts raw publish batches.
type Publisher interface {
	Dispatch(ctx context.Context, raw []byte) int
}

// Subscriptions registers subscribers and drains their queues.
type Subscriptions interface {
	Register(p *filter.Predicate, remote string) (*hub.Subscriber, error)
	Serve(ctx context.Context, sub *hub.Subscriber, sink hub.Sink) error
	Unregister(sub *hub.Subscriber)
}

// Recorder counts rejected subscriptions by reason.
type Recorder interface {
	SubscriptionRejected(reason string)
}

type noopRecorder struct{}

func (noopRecorder) SubscriptionRejected(string) {}

// Handler is the HTTP surface of the service. It routes on the exact
// request path.
type Handler struct {
	cfg      Config
	pub      Publisher
	subs     Subscriptions
	logger   *slog.Logger
	recorder Recorder
	upgrader websocket.Upgrader
	checks   []health.Check
	ready    handler.HandlerFunc
	metrics  http.Handler
	remote   func(r *http.Request) string
}

type Option func(*Handler)

func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(h *Handler) {
		if r != nil {
			h.recorder = r
		}
	}
}

// WithReadinessChecks sets the probes behind /health/ready.
func WithReadinessChecks(checks ...health.Check) Option {
	return func(h *Handler) { h.checks = append(h.checks, checks...) }
}

// WithRemoteAddr sets how the client address of a request is resolved for
// logs and subscriber bookkeeping. Defaults to r.RemoteAddr.
func WithRemoteAddr(fn func(r *http.Request) string) Option {
	return func(h *Handler) {
		if fn != nil {
			h.remote = fn
		}
	}
}

// WithMetricsHandler serves m on /metrics.
func WithMetricsHandler(m http.Handler) Option {
	return func(h *Handler) { h.metrics = m }
}

// WithCheckOrigin overrides the websocket origin check. By default every
// origin is accepted.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Handler) { h.upgrader.CheckOrigin = fn }
}

// New creates the handler.
func New(pub Publisher, subs Subscriptions, cfg Config, opts ...Option) *Handler {
	if cfg.Banner == "" {
		cfg.Banner = DefaultBanner
	}
	if cfg.MaxBatchBytes <= 0 {
		cfg.MaxBatchBytes = DefaultConfig().MaxBatchBytes
	}
	h := &Handler{
		cfg:      cfg,
		pub:      pub,
		subs:     subs,
		logger:   slog.Default(),
		recorder: noopRecorder{},
		upgrader: websocket.Upgrader{
			ReadBufferSize:   1024,
			WriteBufferSize:  max(cfg.ChunkSize, 1024),
			HandshakeTimeout: 10 * time.Second,
			CheckOrigin:      func(*http.Request) bool { return true },
		},
		remote: func(r *http.Request) string { return r.RemoteAddr },
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.With(logger.Component("endpoint"))
	h.ready = health.Readiness(h.logger, h.checks...)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rw := handler.NewResponseWriter(w)
	defer h.recover(rw, r)

	switch r.URL.Path {
	case "/publish":
		h.publish(rw, r)
	case "/subscribe":
		h.subscribe(rw, r)
	case "/subscribe/ws":
		h.subscribeWebSocket(rw, r)
	case "/":
		h.render(rw, r, handler.String(h.cfg.Banner))
	case "/health/live":
		h.render(rw, r, health.Liveness(r))
	case "/health/ready":
		h.render(rw, r, h.ready(r))
	case "/metrics":
		if h.metrics != nil {
			h.metrics.ServeHTTP(rw, r)
			return
		}
		h.unsupported(rw, r)
	default:
		h.unsupported(rw, r)
	}
}

// render finishes a non-streaming response. The connection is closed after
// any error status or when the client did not ask for keep-alive.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, resp handler.Response) {
	final := func(w http.ResponseWriter, r *http.Request) error {
		if r.Close {
			w.Header().Set("Connection", "close")
		}
		return resp(w, r)
	}
	handler.Render(w, r, final, h.renderError)
}

func (h *Handler) renderError(_ http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "response write failed",
		logger.Path(r.URL.Path),
		logger.RemoteAddr(h.remote(r)),
		logger.Error(err),
	)
}

func (h *Handler) unsupported(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "unsupported path",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.RemoteAddr(h.remote(r)),
		logger.Error(ErrUnsupportedPath),
	)
	h.render(w, r, handler.Close(handler.Text(http.StatusBadRequest, "Unsupported uri path")))
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request, allow string) {
	h.logger.DebugContext(r.Context(), "method not allowed",
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Error(ErrMethodNotAllowed),
	)
	h.render(w, r, handler.Close(handler.WithHeader("Allow", allow, handler.Status(http.StatusMethodNotAllowed))))
}

func (h *Handler) recover(w *handler.ResponseWriter, r *http.Request) {
	rec := recover()
	if rec == nil {
		return
	}
	if rec == http.ErrAbortHandler {
		panic(rec)
	}

	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", rec)
	}
	h.logger.ErrorContext(r.Context(), "request processing failed",
		logger.RemoteAddr(h.remote(r)),
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Error(err),
		logger.Stack(),
	)

	if w.Written() || w.Hijacked() {
		// Headers are gone; abort the connection instead.
		panic(http.ErrAbortHandler)
	}
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusInternalServerError)
}

func isDisconnect(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, hub.ErrSubscriberClosed)
}
