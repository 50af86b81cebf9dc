package enrich_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rgwnotify/core/enrich"
	"github.com/dmitrymomot/rgwnotify/core/event"
	"github.com/dmitrymomot/rgwnotify/core/hub"
)

type fakeMetadata struct {
	mu    sync.Mutex
	calls []event.ObjectRef
	md    event.Metadata
	err   error
}

func (f *fakeMetadata) Get(_ context.Context, ref event.ObjectRef) (event.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ref)
	return f.md, f.err
}

type insert struct {
	id  string
	doc string
}

type fakeIndexer struct {
	mu      sync.Mutex
	inserts []insert
	err     error
}

func (f *fakeIndexer) Insert(_ context.Context, id string, doc []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, insert{id: id, doc: string(doc)})
	return f.err
}

func (f *fakeIndexer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserts)
}

type broadcast struct {
	doc  string
	root map[string]any
}

type fakeBroadcaster struct {
	mu    sync.Mutex
	calls []broadcast
}

func (f *fakeBroadcaster) Broadcast(_ context.Context, doc []byte, root map[string]any) hub.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, broadcast{doc: string(doc), root: root})
	return hub.Stats{Subscribers: 1, Matched: 1, Queued: 1}
}

type fakeRelay struct {
	mu   sync.Mutex
	docs []string
	err  error
}

func (f *fakeRelay) Publish(_ context.Context, doc []byte, _ map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs = append(f.docs, string(doc))
	return f.err
}

type fakeRecorder struct {
	mu            sync.Mutex
	lookupsFailed int
	indexFailed   []string
}

func (f *fakeRecorder) LookupFailed() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookupsFailed++
}

func (f *fakeRecorder) IndexFailed(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexFailed = append(f.indexFailed, op)
}

func createdEvent() event.ObjectEvent {
	return event.ObjectEvent{
		ID:        "1",
		Kind:      event.KindCreated,
		Timestamp: time.Date(2020, 5, 29, 9, 0, 0, 0, time.UTC),
		Object:    event.ObjectRef{Bucket: "b1", Key: "k1"},
	}
}

func TestEnrich_Success(t *testing.T) {
	t.Parallel()

	md := &fakeMetadata{md: event.Metadata{"content_type": "text/plain"}}
	idx := &fakeIndexer{}
	b := &fakeBroadcaster{}
	p := enrich.New(md, idx, b)

	res, err := p.Enrich(context.Background(), createdEvent()).AwaitWithTimeout(time.Second)
	require.NoError(t, err)

	wantDoc := `{"bucket":"b1","name":"k1","instance":"1","create_time":"2020-05-29 09:00:00.000","meta":{"content_type":"text/plain"}}`
	assert.JSONEq(t, wantDoc, string(res.Document))
	assert.Equal(t, event.ObjectRef{Bucket: "b1", Key: "k1"}, res.Record.Object)
	assert.Equal(t, 1, res.Stats.Queued)

	assert.Equal(t, []event.ObjectRef{{Bucket: "b1", Key: "k1"}}, md.calls)

	require.Len(t, b.calls, 1)
	assert.Equal(t, string(res.Document), b.calls[0].doc)
	assert.Equal(t, map[string]any{"content_type": "text/plain"}, b.calls[0].root)

	require.Eventually(t, func() bool { return idx.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, insert{id: "b1.k1", doc: string(res.Document)}, idx.inserts[0])
}

func TestEnrich_RelayReplacesLocalBroadcast(t *testing.T) {
	t.Parallel()

	b := &fakeBroadcaster{}
	relay := &fakeRelay{}
	p := enrich.New(&fakeMetadata{md: event.Metadata{"content_type": "text/plain"}}, &fakeIndexer{}, b, enrich.WithRelay(relay))

	res, err := p.Enrich(context.Background(), createdEvent()).AwaitWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{string(res.Document)}, relay.docs)
	assert.Empty(t, b.calls)
	assert.Zero(t, res.Stats)
}

func TestEnrich_LookupFailure(t *testing.T) {
	t.Parallel()

	lookupErr := errors.New("NoSuchKey")
	md := &fakeMetadata{err: lookupErr}
	idx := &fakeIndexer{}
	b := &fakeBroadcaster{}
	rec := &fakeRecorder{}
	p := enrich.New(md, idx, b, enrich.WithRecorder(rec))

	_, err := p.Enrich(context.Background(), createdEvent()).AwaitWithTimeout(time.Second)
	assert.ErrorIs(t, err, enrich.ErrLookup)
	assert.ErrorIs(t, err, lookupErr)

	assert.Len(t, md.calls, 1)
	assert.Empty(t, b.calls)
	assert.Equal(t, 1, rec.lookupsFailed)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, idx.count())
}

func TestEnrich_SerializationFailure(t *testing.T) {
	t.Parallel()

	md := &fakeMetadata{md: event.Metadata{"ratio": math.Inf(1)}}
	idx := &fakeIndexer{}
	b := &fakeBroadcaster{}
	p := enrich.New(md, idx, b)

	_, err := p.Enrich(context.Background(), createdEvent()).AwaitWithTimeout(time.Second)
	assert.ErrorIs(t, err, event.ErrSerialize)
	assert.Empty(t, b.calls)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, idx.count())
}

func TestEnrich_IndexAndRelayFailuresDoNotBlockBroadcast(t *testing.T) {
	t.Parallel()

	md := &fakeMetadata{md: event.Metadata{}}
	idx := &fakeIndexer{err: errors.New("cluster unavailable")}
	b := &fakeBroadcaster{}
	rec := &fakeRecorder{}
	p := enrich.New(md, idx, b, enrich.WithRecorder(rec), enrich.WithRelay(&fakeRelay{err: errors.New("redis down")}))

	_, err := p.Enrich(context.Background(), createdEvent()).AwaitWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Len(t, b.calls, 1)

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.indexFailed) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"insert"}, rec.indexFailed)
}

func TestEnrich_SurvivesRequestCancellation(t *testing.T) {
	t.Parallel()

	md := &fakeMetadata{md: event.Metadata{"content_type": "text/plain"}}
	b := &fakeBroadcaster{}
	p := enrich.New(md, &fakeIndexer{}, b)

	ctx, cancel := context.WithCancel(context.Background())
	f := p.Enrich(ctx, createdEvent())
	cancel()

	_, err := f.AwaitWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Len(t, b.calls, 1)
}

func TestSubmit(t *testing.T) {
	t.Parallel()

	md := &fakeMetadata{md: event.Metadata{}}
	b := &fakeBroadcaster{}
	p := enrich.New(md, &fakeIndexer{}, b)

	p.Submit(context.Background(), createdEvent())
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.calls) == 1
	}, time.Second, 5*time.Millisecond)
}
