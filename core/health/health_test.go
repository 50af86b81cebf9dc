package health_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/rgwnotify/core/handler"
	"github.com/dmitrymomot/rgwnotify/core/health"
	"github.com/dmitrymomot/rgwnotify/core/logger"
)

func serve(h handler.HandlerFunc) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	handler.Render(rec, req, h(req), nil)
	return rec
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	rec := serve(health.Liveness)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ALIVE", rec.Body.String())
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("opensearch unreachable") }

	t.Run("all checks pass", func(t *testing.T) {
		rec := serve(health.Readiness(nil, ok, nil, ok))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "READY", rec.Body.String())
	})

	t.Run("no checks", func(t *testing.T) {
		rec := serve(health.Readiness(nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("failing check", func(t *testing.T) {
		var buf bytes.Buffer
		log := logger.New(logger.WithJSONFormatter(), logger.WithOutput(&buf))

		called := false
		after := func(context.Context) error { called = true; return nil }

		rec := serve(health.Readiness(log, ok, fail, after))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.False(t, called, "checks after a failure are skipped")
		assert.Contains(t, buf.String(), "opensearch unreachable")
	})
}
