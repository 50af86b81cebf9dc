package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rgwnotify/core/logger"
)

func TestNew_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithJSONFormatter(),
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("service", "rgwnotify")),
	)
	log.Info("event received", logger.Bucket("b1"))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "event received", rec["msg"])
	assert.Equal(t, "rgwnotify", rec["service"])
	assert.Equal(t, "b1", rec["bucket"])
}

func TestNew_Level(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelWarn))
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_ContextValue(t *testing.T) {
	t.Parallel()

	type ctxKey struct{}
	var buf bytes.Buffer
	log := logger.New(
		logger.WithJSONFormatter(),
		logger.WithOutput(&buf),
		logger.WithContextValue("request_id", ctxKey{}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.With("component", "test").InfoContext(ctx, "with id")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"component":"test"`)

	buf.Reset()
	log.InfoContext(context.Background(), "without id")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestForEnv(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.ForEnv("production", "rgwnotify"), logger.WithOutput(&buf))
	log.Debug("hidden")
	log.Info("visible")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "production", rec["env"])

	buf.Reset()
	dev := logger.New(logger.ForEnv("", "rgwnotify"), logger.WithOutput(&buf))
	dev.Debug("debug line")
	assert.Contains(t, buf.String(), "debug line")
	assert.Contains(t, buf.String(), "env=development")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	l, ok := logger.ParseLevel("debug")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelDebug, l)

	l, ok = logger.ParseLevel(" WARN ")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, l)

	_, ok = logger.ParseLevel("loud")
	assert.False(t, ok)
}
