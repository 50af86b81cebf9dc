package dispatch_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rgwnotify/core/dispatch"
	"github.com/dmitrymomot/rgwnotify/core/event"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

type fakeEnricher struct {
	mu     sync.Mutex
	events []event.ObjectEvent
}

func (f *fakeEnricher) Submit(_ context.Context, ev event.ObjectEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

type fakeDeleter struct {
	mu    sync.Mutex
	calls []event.ObjectRef
	err   error
}

func (f *fakeDeleter) Delete(_ context.Context, ref event.ObjectRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ref)
	return f.err
}

func (f *fakeDeleter) snapshot() []event.ObjectRef {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]event.ObjectRef(nil), f.calls...)
}

type fakeRecorder struct {
	mu          sync.Mutex
	kinds       []string
	indexFailed []string
}

func (f *fakeRecorder) EventReceived(kind string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.kinds = append(f.kinds, kind)
}

func (f *fakeRecorder) IndexFailed(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexFailed = append(f.indexFailed, op)
}

func TestDispatch_Created(t *testing.T) {
	t.Parallel()

	enr, del := &fakeEnricher{}, &fakeDeleter{}
	d := dispatch.New(enr, del)

	status := d.Dispatch(context.Background(), []byte(`[{"id":"1","event":"OBJECT_CREATE","info":{"bucket":{"name":"b1"},"key":{"name":"k1"}}}]`))
	assert.Equal(t, http.StatusContinue, status)

	require.Len(t, enr.events, 1)
	assert.Equal(t, event.ObjectRef{Bucket: "b1", Key: "k1"}, enr.events[0].Object)
	assert.Equal(t, "1", enr.events[0].ID)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, del.snapshot())
}

func TestDispatch_Deleted(t *testing.T) {
	t.Parallel()

	enr, del := &fakeEnricher{}, &fakeDeleter{}
	d := dispatch.New(enr, del)

	status := d.Dispatch(context.Background(), []byte(`[{"id":"2","event":"OBJECT_DELETE","info":{"bucket":{"name":"b1"},"key":{"name":"k1"}}}]`))
	assert.Equal(t, http.StatusContinue, status)

	require.Eventually(t, func() bool { return len(del.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []event.ObjectRef{{Bucket: "b1", Key: "k1"}}, del.snapshot())
	assert.Empty(t, enr.events)
}

func TestDispatch_IgnoredKinds(t *testing.T) {
	t.Parallel()

	enr, del := &fakeEnricher{}, &fakeDeleter{}
	rec := &fakeRecorder{}
	d := dispatch.New(enr, del, dispatch.WithRecorder(rec))

	status := d.Dispatch(context.Background(), []byte(`[
		{"id":"3","event":"DELETE_MARKER_CREATE","info":{"bucket":{"name":"b"},"key":{"name":"k"}}},
		{"id":"4","event":"OBJECT_RESTORE","info":{"bucket":{"name":"b"},"key":{"name":"k"}}}
	]`))
	assert.Equal(t, http.StatusContinue, status)

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, enr.events)
	assert.Empty(t, del.snapshot())
	assert.Equal(t, []string{"DELETE_MARKER_CREATE", "UNKNOWN_EVENT"}, rec.kinds)
}

func TestDispatch_MixedBatch(t *testing.T) {
	t.Parallel()

	enr, del := &fakeEnricher{}, &fakeDeleter{}
	d := dispatch.New(enr, del)

	d.Dispatch(context.Background(), []byte(`{"events":[
		{"id":"1","event":"OBJECT_CREATE","info":{"bucket":{"name":"b"},"key":{"name":"a"}}},
		{"id":"2","event":"OBJECT_DELETE","info":{"bucket":{"name":"b"},"key":{"name":"b"}}},
		{"id":"3","event":"OBJECT_CREATE","info":{"bucket":{"name":"b"},"key":{"name":"c"}}}
	]}`))

	require.Len(t, enr.events, 2)
	assert.Equal(t, "a", enr.events[0].Object.Key)
	assert.Equal(t, "c", enr.events[1].Object.Key)
	require.Eventually(t, func() bool { return len(del.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "b", del.snapshot()[0].Key)
}

func TestDispatch_Malformed(t *testing.T) {
	t.Parallel()

	enr, del := &fakeEnricher{}, &fakeDeleter{}
	rec := &fakeRecorder{}
	d := dispatch.New(enr, del, dispatch.WithRecorder(rec))

	for _, body := range []string{`{not json`, ``, `[{"id":1}`} {
		assert.Equal(t, http.StatusContinue, d.Dispatch(context.Background(), []byte(body)))
	}

	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, enr.events)
	assert.Empty(t, del.snapshot())
	assert.Empty(t, rec.kinds)
}

func TestDispatch_DeleteFailureIsRecorded(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	d := dispatch.New(&fakeEnricher{}, &fakeDeleter{err: errors.New("index missing")}, dispatch.WithRecorder(rec))

	d.Dispatch(context.Background(), []byte(`[{"id":"2","event":"OBJECT_DELETE","info":{"bucket":{"name":"b1"},"key":{"name":"k1"}}}]`))

	require.Eventually(t, func() bool {
		rec.mu.Lock()
		defer rec.mu.Unlock()
		return len(rec.indexFailed) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestDispatch_MalformedLoggedAsError(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))
	d := dispatch.New(&fakeEnricher{}, &fakeDeleter{}, dispatch.WithLogger(log))

	assert.Equal(t, http.StatusContinue, d.Dispatch(context.Background(), []byte(`{not json`)))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"msg":"publish batch rejected"`)
	assert.Contains(t, buf.String(), `"component":"dispatch"`)
}
