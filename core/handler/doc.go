// Package handler holds the small set of HTTP building blocks shared by the
// service endpoints.
//
// A Response is a deferred render function; handlers build one and Render
// runs it:
//
//	func banner(text string) handler.HandlerFunc {
//		return func(*http.Request) handler.Response {
//			return handler.String(text)
//		}
//	}
//
//	handler.Render(w, r, banner("hello")(r), onError)
//
// ResponseWriter records the status and byte count of a response for
// request logging. It passes through Flush and Hijack and implements Unwrap,
// so http.ResponseController can set per-write deadlines on streams.
package handler
