package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/rgwnotify/core/event"
	"github.com/dmitrymomot/rgwnotify/core/hub"
	"github.com/dmitrymomot/rgwnotify/core/logger"
	"github.com/dmitrymomot/rgwnotify/pkg/async"
)

// MetadataService resolves an object to its metadata.
type MetadataService interface {
	Get(ctx context.Context, ref event.ObjectRef) (event.Metadata, error)
}

// Indexer persists enriched documents.
type Indexer interface {
	Insert(ctx context.Context, id string, doc []byte) error
}

// Broadcaster fans a document out to local subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, doc []byte, root map[string]any) hub.Stats
}

// Relay hands a broadcast to every instance of the service, this one
// included. When set it replaces the local broadcast.
type Relay interface {
	Publish(ctx context.Context, doc []byte, root map[string]any) error
}

// Recorder receives pipeline failure counters.
type Recorder interface {
	LookupFailed()
	IndexFailed(op string)
}

type noopRecorder struct{}

func (noopRecorder) LookupFailed()      {}
func (noopRecorder) IndexFailed(string) {}

// Result describes a created event that made it through the pipeline.
type Result struct {
	Record   event.Record
	Document []byte
	Stats    hub.Stats
}

// Pipeline enriches created events with metadata, indexes them and
// broadcasts them. Failures drop the event; nothing is retried.
type Pipeline struct {
	metadata MetadataService
	indexer  Indexer
	hub      Broadcaster
	relay    Relay
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRecorder sets the receiver of lookup and index failure counters.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.recorder = r
		}
	}
}

// WithRelay routes broadcasts through r. A failed publish falls back to the
// local broadcaster.
func WithRelay(r Relay) Option {
	return func(p *Pipeline) { p.relay = r }
}

// New creates a pipeline.
func New(md MetadataService, idx Indexer, b Broadcaster, opts ...Option) *Pipeline {
	p := &Pipeline{
		metadata: md,
		indexer:  idx,
		hub:      b,
		logger:   slog.Default(),
		recorder: noopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(logger.Component("enrich"))
	return p
}

// Enrich starts processing ev and returns its future. The work outlives
// ctx cancellation, so a finished publish request does not abort it; ctx
// values are kept for logging.
func (p *Pipeline) Enrich(ctx context.Context, ev event.ObjectEvent) *async.Future[Result] {
	ctx = context.WithoutCancel(ctx)

	lookup := async.Run(ctx, ev.Object, p.lookup)
	return async.Then(ctx, lookup, func(ctx context.Context, md event.Metadata) (Result, error) {
		return p.publish(ctx, ev, md)
	})
}

// Submit is Enrich without waiting: failures are logged and dropped.
func (p *Pipeline) Submit(ctx context.Context, ev event.ObjectEvent) {
	p.Enrich(ctx, ev).OnComplete(func(res Result, err error) {
		if err != nil {
			p.logger.ErrorContext(ctx, "event dropped",
				logger.EventID(ev.ID),
				logger.Bucket(ev.Object.Bucket),
				logger.ObjectKey(ev.Object.Key),
				logger.Error(err),
			)
			return
		}
		p.logger.DebugContext(ctx, "event broadcast",
			logger.EventID(ev.ID),
			logger.Bucket(ev.Object.Bucket),
			logger.ObjectKey(ev.Object.Key),
			logger.Count("matched", res.Stats.Matched),
			logger.Count("queued", res.Stats.Queued),
		)
	})
}

func (p *Pipeline) lookup(ctx context.Context, ref event.ObjectRef) (event.Metadata, error) {
	md, err := p.metadata.Get(ctx, ref)
	if err != nil {
		p.recorder.LookupFailed()
		return nil, fmt.Errorf("%w: %s/%s: %w", ErrLookup, ref.Bucket, ref.Key, err)
	}
	if md == nil {
		md = event.Metadata{}
	}
	return md, nil
}

func (p *Pipeline) publish(ctx context.Context, ev event.ObjectEvent, md event.Metadata) (Result, error) {
	rec := event.NewRecord(ev, md)
	doc, err := rec.Document()
	if err != nil {
		return Result{}, err
	}

	p.index(ctx, ev.Object, doc)

	var stats hub.Stats
	if p.relay == nil {
		stats = p.hub.Broadcast(ctx, doc, md)
	} else if err := p.relay.Publish(ctx, doc, md); err != nil {
		p.logger.WarnContext(ctx, "relay publish failed, broadcasting locally",
			logger.EventID(ev.ID),
			logger.Error(err),
		)
		stats = p.hub.Broadcast(ctx, doc, md)
	}
	return Result{Record: rec, Document: doc, Stats: stats}, nil
}

// index submits the insert without waiting for it.
func (p *Pipeline) index(ctx context.Context, ref event.ObjectRef, doc []byte) {
	id := ref.ID()
	async.Exec(ctx, id, func(ctx context.Context, id string) error {
		return p.indexer.Insert(ctx, id, doc)
	}).OnComplete(func(_ struct{}, err error) {
		if err != nil {
			p.recorder.IndexFailed("insert")
			p.logger.ErrorContext(ctx, "index insert failed",
				logger.Key("document_id", id),
				logger.Error(err),
			)
			return
		}
		p.logger.DebugContext(ctx, "document indexed", logger.Key("document_id", id))
	})
}
