package hub

import (
	"log/slog"

	"github.com/dmitrymomot/rgwnotify/core/frame"
)

// Default settings for a Registry.
const (
	DefaultSubscriberBuffer = 64
	DefaultChunkSize        = frame.DefaultChunkSize
)

// Option configures a Registry.
type Option func(*Registry)

// WithChunkSize sets the chunk size of every delivered body.
func WithChunkSize(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.chunkSize = n
		}
	}
}

// WithSubscriberBuffer sets how many frames may wait for a slow subscriber
// before new ones are dropped.
func WithSubscriberBuffer(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.buffer = n
		}
	}
}

// WithConcurrency bounds how many subscribers are matched in parallel per broadcast.
func WithConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRecorder sets the receiver of broadcast and delivery counters.
func WithRecorder(rec Recorder) Option {
	return func(r *Registry) {
		if rec != nil {
			r.recorder = rec
		}
	}
}
