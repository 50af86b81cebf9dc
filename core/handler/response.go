package handler

import (
	"io"
	"net/http"
)

// Text writes body as text/plain with status.
func Text(status int, body string) Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		if body == "" {
			return nil
		}
		_, err := io.WriteString(w, body)
		return err
	}
}

// String is Text with 200 OK.
func String(body string) Response {
	return Text(http.StatusOK, body)
}

// Status writes only a status line and headers.
func Status(status int) Response {
	return func(w http.ResponseWriter, _ *http.Request) error {
		w.WriteHeader(status)
		return nil
	}
}

// Close marks resp as the last response on the connection.
func Close(resp Response) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set("Connection", "close")
		return resp(w, r)
	}
}

// WithHeader sets a response header before resp runs.
func WithHeader(key, value string, resp Response) Response {
	return func(w http.ResponseWriter, r *http.Request) error {
		w.Header().Set(key, value)
		return resp(w, r)
	}
}
