package hub

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/rgwnotify/core/filter"
	"github.com/dmitrymomot/rgwnotify/core/frame"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

// Sink writes one chunked frame to a subscriber's connection.
// The hub closes the input after Deliver returns.
type Sink interface {
	Deliver(in *frame.ChunkedInput) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(in *frame.ChunkedInput) error

func (f SinkFunc) Deliver(in *frame.ChunkedInput) error { return f(in) }

// Stats summarises one broadcast.
type Stats struct {
	Subscribers int
	Matched     int
	Queued      int
	Dropped     int
}

// Registry is the set of live subscribers. It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber

	chunkSize   int
	buffer      int
	concurrency int
	logger      *slog.Logger
	recorder    Recorder
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		subs:        make(map[string]*Subscriber),
		chunkSize:   DefaultChunkSize,
		buffer:      DefaultSubscriberBuffer,
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.Default(),
		recorder:    noopRecorder{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With(logger.Component("hub"))
	return r
}

// Register adds a subscriber bound to p. The subscriber receives broadcasts
// from this point on; pair it with Serve to drain them.
func (r *Registry) Register(p *filter.Predicate, remote string) (*Subscriber, error) {
	if p == nil {
		return nil, ErrNilPredicate
	}
	sub := newSubscriber(p, remote, r.buffer)

	r.mu.Lock()
	r.subs[sub.id] = sub
	n := len(r.subs)
	r.mu.Unlock()

	r.recorder.Subscribers(n)
	r.logger.Info("subscriber registered",
		logger.SubscriberID(sub.id),
		logger.RemoteAddr(remote),
		logger.Condition(p.String()),
		logger.Count("subscribers", n),
	)
	return sub, nil
}

// Unregister removes sub and releases its queued frames. It is idempotent.
func (r *Registry) Unregister(sub *Subscriber) {
	r.mu.Lock()
	_, ok := r.subs[sub.id]
	delete(r.subs, sub.id)
	n := len(r.subs)
	r.mu.Unlock()

	sub.close()
	if !ok {
		return
	}
	r.recorder.Subscribers(n)
	r.logger.Info("subscriber removed",
		logger.SubscriberID(sub.id),
		logger.RemoteAddr(sub.remote),
		logger.Duration(time.Since(sub.createdAt)),
		logger.Count("subscribers", n),
	)
}

// Len returns the number of registered subscribers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// CloseAll removes every subscriber. Their Serve loops return ErrSubscriberClosed.
func (r *Registry) CloseAll() {
	for _, sub := range r.snapshot() {
		r.Unregister(sub)
	}
}

func (r *Registry) snapshot() []*Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := make([]*Subscriber, 0, len(r.subs))
	for _, s := range r.subs {
		subs = append(subs, s)
	}
	return subs
}

// Broadcast encodes doc into a single frame and offers it to every
// subscriber whose predicate matches root.
func (r *Registry) Broadcast(ctx context.Context, doc []byte, root map[string]any) Stats {
	f := frame.New(doc)
	defer func() { _ = f.Release() }()
	return r.BroadcastFrame(ctx, f, root)
}

// BroadcastFrame offers f to every matching subscriber. Each queued delivery
// holds its own duplicate; the caller keeps ownership of f.
// Subscribers that register while a broadcast runs may miss it.
func (r *Registry) BroadcastFrame(ctx context.Context, f *frame.Frame, root map[string]any) Stats {
	subs := r.snapshot()
	r.recorder.Broadcast()

	var matched, queued, dropped atomic.Int64
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for _, sub := range subs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if !sub.match(root) {
				return nil
			}
			matched.Add(1)

			dup, err := f.Duplicate()
			if err != nil {
				r.logger.ErrorContext(ctx, "frame duplicate failed", logger.SubscriberID(sub.id), logger.Error(err))
				return nil
			}
			in := frame.NewChunkedInput(dup, r.chunkSize)
			if !sub.offer(in) {
				_ = in.Close()
				dropped.Add(1)
				r.recorder.Delivery(DeliveryDropped)
				r.logger.WarnContext(ctx, "subscriber queue full, frame dropped", logger.SubscriberID(sub.id))
				return nil
			}
			queued.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	return Stats{
		Subscribers: len(subs),
		Matched:     int(matched.Load()),
		Queued:      int(queued.Load()),
		Dropped:     int(dropped.Load()),
	}
}

// Serve drains sub's queue into sink until ctx is done or the subscriber is
// closed, then unregisters it. A failed write is logged and does not end the
// loop; disconnects surface through ctx.
func (r *Registry) Serve(ctx context.Context, sub *Subscriber, sink Sink) error {
	defer r.Unregister(sub)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sub.done:
			return ErrSubscriberClosed
		case in := <-sub.queue:
			r.deliver(ctx, sub, sink, in)
		}
	}
}

func (r *Registry) deliver(ctx context.Context, sub *Subscriber, sink Sink, in *frame.ChunkedInput) {
	defer func() {
		if err := in.Close(); err != nil {
			r.logger.ErrorContext(ctx, "frame release failed", logger.SubscriberID(sub.id), logger.Error(err))
		}
	}()

	if err := sink.Deliver(in); err != nil {
		r.recorder.Delivery(DeliveryFailed)
		r.logger.WarnContext(ctx, "frame delivery failed",
			logger.SubscriberID(sub.id),
			logger.RemoteAddr(sub.remote),
			logger.Error(err),
		)
		return
	}
	r.recorder.Delivery(DeliverySent)
}
