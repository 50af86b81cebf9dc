package frame

import (
	"io"
	"sync"
	"sync/atomic"
)

// maxPooledCap keeps unusually large buffers out of the pool.
const maxPooledCap = 64 << 10

type storage struct {
	buf       []byte
	refs      atomic.Int32
	onRelease func()
}

var storagePool = sync.Pool{
	New: func() any { return new(storage) },
}

func (s *storage) reclaim() {
	if s.onRelease != nil {
		s.onRelease()
	}
	s.onRelease = nil
	if cap(s.buf) > maxPooledCap {
		s.buf = nil
	} else {
		s.buf = s.buf[:0]
	}
	storagePool.Put(s)
}

// Option configures a frame built by New.
type Option func(*storage)

// WithReleaseHook registers fn to run once, when the last handle is released.
func WithReleaseHook(fn func()) Option {
	return func(s *storage) { s.onRelease = fn }
}

// Frame is a handle over shared, reference-counted frame bytes.
// Each handle has its own read cursor and must be released exactly once.
// A handle is owned by one goroutine; the reference count is shared.
type Frame struct {
	st       *storage
	off      int
	released atomic.Bool
}

// New encodes payload once into pooled storage and returns the first handle.
func New(payload []byte, opts ...Option) *Frame {
	st := storagePool.Get().(*storage)
	st.buf = AppendFrame(st.buf[:0], payload)
	st.refs.Store(1)
	for _, opt := range opts {
		opt(st)
	}
	return &Frame{st: st}
}

// Duplicate returns a new handle over the same storage. The duplicate's
// cursor starts at this handle's current position and moves independently.
func (f *Frame) Duplicate() (*Frame, error) {
	if f.released.Load() {
		return nil, ErrReleased
	}
	f.st.refs.Add(1)
	return &Frame{st: f.st, off: f.off}, nil
}

// Release drops this handle's reference. Storage is reclaimed when the
// count reaches zero. A second Release on the same handle returns ErrReleased.
func (f *Frame) Release() error {
	if !f.released.CompareAndSwap(false, true) {
		return ErrReleased
	}
	st := f.st
	if st.refs.Add(-1) == 0 {
		st.reclaim()
	}
	return nil
}

// Released reports whether Release was called on this handle.
func (f *Frame) Released() bool {
	return f.released.Load()
}

// Refs returns the number of live handles sharing this storage.
// It is zero once this handle is released, whatever the state of others.
func (f *Frame) Refs() int {
	if f.released.Load() {
		return 0
	}
	return int(f.st.refs.Load())
}

// Size returns the total wire size of the frame.
func (f *Frame) Size() int {
	if f.released.Load() {
		return 0
	}
	return len(f.st.buf)
}

// Len returns the number of unread bytes for this handle.
func (f *Frame) Len() int {
	if f.released.Load() {
		return 0
	}
	return len(f.st.buf) - f.off
}

// Bytes returns the unread bytes without advancing the cursor.
// The slice aliases shared storage: it must not be modified and is valid
// only until this handle is released.
func (f *Frame) Bytes() []byte {
	if f.released.Load() {
		return nil
	}
	return f.st.buf[f.off:]
}

// Next returns up to n unread bytes and advances the cursor past them.
// The same aliasing rules as Bytes apply.
func (f *Frame) Next(n int) []byte {
	b := f.Bytes()
	if n < len(b) {
		b = b[:n]
	}
	f.off += len(b)
	return b
}

// Read implements io.Reader.
func (f *Frame) Read(p []byte) (int, error) {
	if f.released.Load() {
		return 0, ErrReleased
	}
	if f.off >= len(f.st.buf) {
		return 0, io.EOF
	}
	n := copy(p, f.st.buf[f.off:])
	f.off += n
	return n, nil
}

// WriteTo implements io.WriterTo.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	if f.released.Load() {
		return 0, ErrReleased
	}
	n, err := w.Write(f.st.buf[f.off:])
	f.off += n
	return int64(n), err
}
