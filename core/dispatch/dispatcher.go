package dispatch

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/rgwnotify/core/event"
	"github.com/dmitrymomot/rgwnotify/core/logger"
	"github.com/dmitrymomot/rgwnotify/pkg/async"
)

// Enricher accepts created events for asynchronous enrichment.
type Enricher interface {
	Submit(ctx context.Context, ev event.ObjectEvent)
}

// Deleter removes at most one indexed document for an object.
type Deleter interface {
	Delete(ctx context.Context, ref event.ObjectRef) error
}

// Recorder receives dispatcher counters.
type Recorder interface {
	EventReceived(kind string)
	IndexFailed(op string)
}

type noopRecorder struct{}

func (noopRecorder) EventReceived(string) {}
func (noopRecorder) IndexFailed(string)   {}

// Dispatcher routes the events of a publish batch by kind.
// It holds no per-request state and is shared by all connections.
type Dispatcher struct {
	enricher Enricher
	deleter  Deleter
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithRecorder sets the receiver of event and index failure counters.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		if r != nil {
			d.recorder = r
		}
	}
}

// New creates a dispatcher.
func New(e Enricher, del Deleter, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		enricher: e,
		deleter:  del,
		logger:   slog.Default(),
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(logger.Component("dispatch"))
	return d
}

// Dispatch parses raw and starts processing every event in it. It never
// waits for that processing and always returns http.StatusContinue; a
// malformed batch is logged and treated as empty.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) int {
	batch, err := event.ParseBatch(raw)
	if err != nil {
		d.logger.ErrorContext(ctx, "publish batch rejected", logger.Error(err), logger.Count("bytes", len(raw)))
		return http.StatusContinue
	}
	d.DispatchBatch(ctx, batch)
	return http.StatusContinue
}

// DispatchBatch routes already parsed events.
func (d *Dispatcher) DispatchBatch(ctx context.Context, batch event.Batch) {
	for _, ev := range batch {
		d.recorder.EventReceived(ev.Kind.String())

		switch ev.Kind {
		case event.KindCreated:
			d.enricher.Submit(ctx, ev)
		case event.KindDeleted:
			d.delete(ctx, ev)
		default:
			d.logger.InfoContext(ctx, "event ignored",
				logger.EventID(ev.ID),
				logger.EventKind(ev.Kind),
				logger.Bucket(ev.Object.Bucket),
				logger.ObjectKey(ev.Object.Key),
			)
		}
	}
}

func (d *Dispatcher) delete(ctx context.Context, ev event.ObjectEvent) {
	ctx = context.WithoutCancel(ctx)
	async.Exec(ctx, ev.Object, d.deleter.Delete).OnComplete(func(_ struct{}, err error) {
		if err != nil {
			d.recorder.IndexFailed("delete")
			d.logger.ErrorContext(ctx, "index delete failed",
				logger.EventID(ev.ID),
				logger.Bucket(ev.Object.Bucket),
				logger.ObjectKey(ev.Object.Key),
				logger.Error(err),
			)
			return
		}
		d.logger.DebugContext(ctx, "index document deleted",
			logger.Bucket(ev.Object.Bucket),
			logger.ObjectKey(ev.Object.Key),
		)
	})
}
