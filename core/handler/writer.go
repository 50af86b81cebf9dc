package handler

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

// ErrHijackNotSupported is returned by Hijack when the wrapped writer
// cannot hand over its connection.
var ErrHijackNotSupported = errors.New("response writer does not support hijacking")

// ResponseWriter tracks the status and size of a response. Informational
// statuses are recorded but do not mark the response as written.
type ResponseWriter struct {
	http.ResponseWriter
	status   int
	written  bool
	hijacked bool
	bytes    int64
}

// NewResponseWriter wraps w. An existing *ResponseWriter is returned as is.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	if rw, ok := w.(*ResponseWriter); ok {
		return rw
	}
	return &ResponseWriter{ResponseWriter: w}
}

func (w *ResponseWriter) WriteHeader(status int) {
	if w.written {
		return
	}
	if w.status == 0 || status >= 200 {
		w.status = status
	}
	if status >= 200 {
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// Status returns the last status written, 0 if none.
func (w *ResponseWriter) Status() int {
	return w.status
}

// Written reports whether a final status has been sent.
func (w *ResponseWriter) Written() bool {
	return w.written
}

// Hijacked reports whether the connection was taken over.
func (w *ResponseWriter) Hijacked() bool {
	return w.hijacked
}

func (w *ResponseWriter) BytesWritten() int64 {
	return w.bytes
}

// Flush implements http.Flusher when the wrapped writer does.
func (w *ResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack implements http.Hijacker for websocket upgrades.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, ErrHijackNotSupported
	}
	conn, rw, err := h.Hijack()
	if err == nil {
		w.hijacked = true
		if w.status == 0 {
			w.status = http.StatusSwitchingProtocols
		}
	}
	return conn, rw, err
}

// Unwrap lets http.ResponseController reach the wrapped writer.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
