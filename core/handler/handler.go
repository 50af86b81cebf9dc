package handler

import "net/http"

// Response renders an HTTP response: headers, status and body.
// Rendering errors are reported to the caller of Render.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc produces the Response for a request.
type HandlerFunc func(r *http.Request) Response

// ErrorHandler is called when a Response fails to render.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Middleware wraps an http.Handler.
type Middleware func(next http.Handler) http.Handler

// Render runs resp, forwarding a rendering error to onError when set.
// A nil resp writes nothing.
func Render(w http.ResponseWriter, r *http.Request, resp Response, onError ErrorHandler) {
	if resp == nil {
		return
	}
	if err := resp(w, r); err != nil && onError != nil {
		onError(w, r, err)
	}
}

// Chain applies middlewares so that the first one is outermost.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
