package hub_test

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rgwnotify/core/filter"
	"github.com/dmitrymomot/rgwnotify/core/frame"
	"github.com/dmitrymomot/rgwnotify/core/hub"
)

type recordingSink struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	delivered chan struct{}
	fail      bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{delivered: make(chan struct{}, 16)}
}

func (s *recordingSink) Deliver(in *frame.ChunkedInput) error {
	defer func() { s.delivered <- struct{}{} }()
	if s.fail {
		_, _ = in.ReadChunk()
		return errors.New("connection reset by peer")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := in.WriteTo(&s.buf)
	return err
}

func (s *recordingSink) payloads(t *testing.T) []string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	r := bufio.NewReader(bytes.NewReader(s.buf.Bytes()))
	var out []string
	for {
		p, err := frame.ReadFrame(r)
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, string(p))
	}
}

func (s *recordingSink) wait(t *testing.T, n int) {
	t.Helper()
	for range n {
		select {
		case <-s.delivered:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delivery")
		}
	}
}

type countingRecorder struct {
	broadcasts  atomic.Int64
	sent        atomic.Int64
	dropped     atomic.Int64
	failed      atomic.Int64
	subscribers atomic.Int64
}

func (c *countingRecorder) Broadcast() { c.broadcasts.Add(1) }
func (c *countingRecorder) Subscribers(n int) {
	c.subscribers.Store(int64(n))
}

func (c *countingRecorder) Delivery(r hub.DeliveryResult) {
	switch r {
	case hub.DeliverySent:
		c.sent.Add(1)
	case hub.DeliveryDropped:
		c.dropped.Add(1)
	case hub.DeliveryFailed:
		c.failed.Add(1)
	}
}

func serve(t *testing.T, reg *hub.Registry, sub *hub.Subscriber, sink hub.Sink) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- reg.Serve(ctx, sub, sink) }()
	t.Cleanup(cancel)
	return cancel, errc
}

func TestRegistry_FanOutIsolation(t *testing.T) {
	t.Parallel()

	reg := hub.New()
	always, err := reg.Register(filter.MustCompile("true"), "10.0.0.1:1")
	require.NoError(t, err)
	never, err := reg.Register(filter.MustCompile("false"), "10.0.0.2:1")
	require.NoError(t, err)

	alwaysSink, neverSink := newRecordingSink(), newRecordingSink()
	serve(t, reg, always, alwaysSink)
	serve(t, reg, never, neverSink)

	stats := reg.Broadcast(context.Background(), []byte(`{"n":1}`), map[string]any{"content_type": "text/plain"})
	assert.Equal(t, hub.Stats{Subscribers: 2, Matched: 1, Queued: 1}, stats)

	alwaysSink.wait(t, 1)
	assert.Equal(t, []string{`{"n":1}`}, alwaysSink.payloads(t))
	assert.Empty(t, neverSink.payloads(t))
}

func TestRegistry_MatchesOnMetadata(t *testing.T) {
	t.Parallel()

	reg := hub.New()
	text, err := reg.Register(filter.MustCompile("content_type == 'text/plain'"), "")
	require.NoError(t, err)
	png, err := reg.Register(filter.MustCompile("content_type == 'image/png'"), "")
	require.NoError(t, err)
	broken, err := reg.Register(filter.MustCompile("no_such_key > 3"), "")
	require.NoError(t, err)

	textSink := newRecordingSink()
	serve(t, reg, text, textSink)
	serve(t, reg, png, newRecordingSink())
	serve(t, reg, broken, newRecordingSink())

	stats := reg.Broadcast(context.Background(), []byte("doc"), map[string]any{"content_type": "text/plain"})
	assert.Equal(t, 3, stats.Subscribers)
	assert.Equal(t, 1, stats.Matched)

	textSink.wait(t, 1)
	assert.Equal(t, []string{"doc"}, textSink.payloads(t))
	assert.Zero(t, png.Pending())
	assert.Zero(t, broken.Pending())
}

func TestRegistry_ReferenceBalance(t *testing.T) {
	t.Parallel()

	rec := &countingRecorder{}
	reg := hub.New(hub.WithRecorder(rec), hub.WithChunkSize(4))

	const n = 6
	sinks := make([]*recordingSink, n)
	for i := range n {
		sub, err := reg.Register(filter.MustCompile("true"), "")
		require.NoError(t, err)
		sinks[i] = newRecordingSink()
		sinks[i].fail = i%2 == 1
		serve(t, reg, sub, sinks[i])
	}
	_, err := reg.Register(filter.MustCompile("false"), "")
	require.NoError(t, err)

	var reclaimed atomic.Int32
	f := frame.New([]byte(`{"bucket":"b1","name":"k1"}`), frame.WithReleaseHook(func() { reclaimed.Add(1) }))
	stats := reg.BroadcastFrame(context.Background(), f, nil)
	assert.Equal(t, n, stats.Queued)

	for _, s := range sinks {
		s.wait(t, 1)
	}
	assert.Equal(t, int32(0), reclaimed.Load(), "caller still holds a reference")

	require.NoError(t, f.Release())
	assert.Eventually(t, func() bool { return reclaimed.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), reclaimed.Load())

	assert.Equal(t, int64(n/2), rec.sent.Load())
	assert.Equal(t, int64(n/2), rec.failed.Load())
	assert.Equal(t, int64(1), rec.broadcasts.Load())
	for i, s := range sinks {
		if i%2 == 0 {
			assert.Equal(t, []string{`{"bucket":"b1","name":"k1"}`}, s.payloads(t))
		}
	}
}

func TestRegistry_SlowSubscriberDrops(t *testing.T) {
	t.Parallel()

	rec := &countingRecorder{}
	reg := hub.New(hub.WithSubscriberBuffer(2), hub.WithRecorder(rec))
	sub, err := reg.Register(filter.MustCompile("true"), "")
	require.NoError(t, err)

	var reclaimed atomic.Int32
	for range 5 {
		f := frame.New([]byte("x"), frame.WithReleaseHook(func() { reclaimed.Add(1) }))
		reg.BroadcastFrame(context.Background(), f, nil)
		require.NoError(t, f.Release())
	}
	assert.Equal(t, 2, sub.Pending())
	assert.Equal(t, int64(3), rec.dropped.Load())
	assert.Equal(t, int32(3), reclaimed.Load())

	// removing the subscriber releases what it never delivered
	reg.Unregister(sub)
	assert.Equal(t, int32(5), reclaimed.Load())
	assert.Equal(t, 0, reg.Len())
	assert.Equal(t, int64(0), rec.subscribers.Load())

	select {
	case <-sub.Done():
	default:
		t.Fatal("subscriber not closed")
	}
}

func TestRegistry_ServeEndsOnDisconnect(t *testing.T) {
	t.Parallel()

	reg := hub.New()
	sub, err := reg.Register(filter.MustCompile("true"), "")
	require.NoError(t, err)
	require.Equal(t, 1, reg.Len())

	cancel, errc := serve(t, reg, sub, newRecordingSink())
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("serve did not return")
	}
	assert.Equal(t, 0, reg.Len())

	stats := reg.Broadcast(context.Background(), []byte("late"), nil)
	assert.Zero(t, stats.Subscribers)
}

func TestRegistry_CloseAll(t *testing.T) {
	t.Parallel()

	reg := hub.New()
	var errcs []<-chan error
	for range 3 {
		sub, err := reg.Register(filter.MustCompile("true"), "")
		require.NoError(t, err)
		_, errc := serve(t, reg, sub, newRecordingSink())
		errcs = append(errcs, errc)
	}

	reg.CloseAll()
	for _, errc := range errcs {
		select {
		case err := <-errc:
			assert.ErrorIs(t, err, hub.ErrSubscriberClosed)
		case <-time.After(time.Second):
			t.Fatal("serve did not return")
		}
	}
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_RegisterNilPredicate(t *testing.T) {
	t.Parallel()
	_, err := hub.New().Register(nil, "")
	assert.ErrorIs(t, err, hub.ErrNilPredicate)
}

func TestRegistry_ConcurrentRegisterAndBroadcast(t *testing.T) {
	t.Parallel()

	reg := hub.New(hub.WithSubscriberBuffer(1024))
	p := filter.MustCompile("n >= 0")

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			sub, err := reg.Register(p, "")
			if err == nil && i%2 == 0 {
				reg.Unregister(sub)
			}
		}()
		go func() {
			defer wg.Done()
			reg.Broadcast(context.Background(), []byte("e"), map[string]any{"n": int64(i)})
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, reg.Len())
	reg.CloseAll()
	assert.Equal(t, 0, reg.Len())
}
