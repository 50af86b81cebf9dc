package hub

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/rgwnotify/core/filter"
	"github.com/dmitrymomot/rgwnotify/core/frame"
)

// Subscriber is one registered streaming connection and its condition.
type Subscriber struct {
	id        string
	remote    string
	predicate *filter.Predicate
	createdAt time.Time

	// scopeMu makes the broadcaster the single writer of scope at any time.
	scopeMu sync.Mutex
	scope   *filter.Scope

	queueMu sync.Mutex
	closed  bool
	queue   chan *frame.ChunkedInput
	done    chan struct{}
}

func newSubscriber(p *filter.Predicate, remote string, buffer int) *Subscriber {
	return &Subscriber{
		id:        uuid.NewString(),
		remote:    remote,
		predicate: p,
		createdAt: time.Now(),
		scope:     filter.NewScope(),
		queue:     make(chan *frame.ChunkedInput, buffer),
		done:      make(chan struct{}),
	}
}

// ID returns the subscriber's unique identifier.
func (s *Subscriber) ID() string { return s.id }

// Remote returns the peer address the subscriber connected from.
func (s *Subscriber) Remote() string { return s.remote }

// Condition returns the source of the subscriber's predicate.
func (s *Subscriber) Condition() string { return s.predicate.String() }

// Done is closed when the subscriber leaves the registry.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Pending returns the number of queued frames awaiting delivery.
func (s *Subscriber) Pending() int { return len(s.queue) }

func (s *Subscriber) match(root map[string]any) bool {
	s.scopeMu.Lock()
	defer s.scopeMu.Unlock()
	s.scope.SetRoot(root)
	return s.predicate.Match(s.scope)
}

// offer queues in without blocking. On false the caller still owns in.
func (s *Subscriber) offer(in *frame.ChunkedInput) bool {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.queue <- in:
		return true
	default:
		return false
	}
}

// close marks the subscriber closed and releases every queued frame.
// It reports whether this call performed the close.
func (s *Subscriber) close() bool {
	s.queueMu.Lock()
	defer s.queueMu.Unlock()
	if s.closed {
		return false
	}
	s.closed = true
	close(s.done)
	for {
		select {
		case in := <-s.queue:
			_ = in.Close()
		default:
			return true
		}
	}
}
