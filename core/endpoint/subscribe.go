package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/rgwnotify/core/filter"
	"github.com/dmitrymomot/rgwnotify/core/frame"
	"github.com/dmitrymomot/rgwnotify/core/handler"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

// accept validates the condition query parameter. On rejection it has
// already answered 400 and closed the connection.
func (h *Handler) accept(w http.ResponseWriter, r *http.Request) (*filter.Predicate, bool) {
	if r.Method != http.MethodGet {
		h.methodNotAllowed(w, r, http.MethodGet)
		return nil, false
	}

	p, rej := ParseCondition(r.URL.Query().Get("condition"))
	if rej != nil {
		h.recorder.SubscriptionRejected(rej.Reason)
		h.logger.WarnContext(r.Context(), "subscription rejected",
			logger.RemoteAddr(h.remote(r)),
			logger.Result(rej.Reason),
			logger.Error(rej),
		)
		h.render(w, r, handler.Close(handler.Text(http.StatusBadRequest, rej.Message)))
		return nil, false
	}
	h.logger.DebugContext(r.Context(), "subscription received",
		logger.RemoteAddr(h.remote(r)),
		logger.Condition(p.String()),
	)
	return p, true
}

// subscribe opens a chunked stream of frames for an accepted condition.
func (h *Handler) subscribe(w http.ResponseWriter, r *http.Request) {
	p, ok := h.accept(w, r)
	if !ok {
		return
	}

	sub, err := h.subs.Register(p, h.remote(r))
	if err != nil {
		h.registerFailed(w, r, err)
		return
	}

	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	sink := &streamSink{w: w, rc: rc, timeout: h.cfg.StreamWriteTimeout}
	if err := h.subs.Serve(r.Context(), sub, sink); err != nil && !isDisconnect(err) {
		h.logger.WarnContext(r.Context(), "subscriber stream ended", logger.SubscriberID(sub.ID()), logger.Error(err))
	}
	h.logger.DebugContext(r.Context(), "subscriber disconnected",
		logger.SubscriberID(sub.ID()),
		logger.RemoteAddr(sub.Remote()),
	)
}

func (h *Handler) registerFailed(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "subscriber registration failed", logger.RemoteAddr(h.remote(r)), logger.Error(err))
	h.render(w, r, handler.Close(handler.Status(http.StatusInternalServerError)))
}

// streamSink writes frames to a chunked HTTP response.
type streamSink struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	timeout time.Duration
}

func (s *streamSink) Deliver(in *frame.ChunkedInput) error {
	if s.timeout > 0 {
		// Writers without deadline support report ErrNotSupported; the
		// write then simply has no deadline.
		_ = s.rc.SetWriteDeadline(time.Now().Add(s.timeout))
	}
	if _, err := in.WriteTo(s.w); err != nil {
		return err
	}
	return s.rc.Flush()
}

// subscribeWebSocket delivers each frame as one binary websocket message.
// Validation happens before the upgrade so rejections stay plain 400s.
func (h *Handler) subscribeWebSocket(w http.ResponseWriter, r *http.Request) {
	p, ok := h.accept(w, r)
	if !ok {
		return
	}

	sub, err := h.subs.Register(p, h.remote(r))
	if err != nil {
		h.registerFailed(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the client.
		h.subs.Unregister(sub)
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", logger.RemoteAddr(h.remote(r)), logger.Error(err))
		return
	}
	defer conn.Close()
	// Clear deadlines inherited from the HTTP server.
	_ = conn.NetConn().SetDeadline(time.Time{})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	sink := &wsSink{conn: conn, timeout: h.cfg.StreamWriteTimeout}
	if err := h.subs.Serve(ctx, sub, sink); err != nil && !isDisconnect(err) {
		h.logger.WarnContext(ctx, "websocket stream ended", logger.SubscriberID(sub.ID()), logger.Error(err))
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	h.logger.DebugContext(r.Context(), "websocket subscriber disconnected",
		logger.SubscriberID(sub.ID()),
		logger.RemoteAddr(sub.Remote()),
	)
}

type wsSink struct {
	conn    *websocket.Conn
	timeout time.Duration
}

func (s *wsSink) Deliver(in *frame.ChunkedInput) error {
	if s.timeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.timeout))
	}
	mw, err := s.conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if _, err := in.WriteTo(mw); err != nil {
		_ = mw.Close()
		return err
	}
	return mw.Close()
}
