package endpoint

import (
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrymomot/rgwnotify/core/event"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

// publish hands the batch to the dispatcher and answers 100 Continue on
// every outcome, including a body that cannot be read.
func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.methodNotAllowed(w, r, http.MethodPost)
		return
	}

	status := http.StatusContinue
	defer func() {
		if r.Close {
			w.Header().Set("Connection", "close")
		}
		w.WriteHeader(status)
	}()

	raw, err := h.readBatch(r)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "publish batch dropped",
			logger.RemoteAddr(h.remote(r)),
			logger.Error(fmt.Errorf("%w: %v", event.ErrParse, err)),
		)
		return
	}
	status = h.pub.Dispatch(r.Context(), raw)
}

func (h *Handler) readBatch(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	var body io.Reader = r.Body
	switch enc := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
	case "gzip", "x-gzip":
		zr, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		body = zr
	default:
		return nil, fmt.Errorf("%w: %s", ErrBodyEncoding, enc)
	}

	raw, err := io.ReadAll(io.LimitReader(body, h.cfg.MaxBatchBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > h.cfg.MaxBatchBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBatchTooLarge, h.cfg.MaxBatchBytes)
	}
	return raw, nil
}
