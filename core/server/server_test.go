package server_test

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/rgwnotify/core/server"
)

func waitListening(t *testing.T, srv *server.Server) string {
	t.Helper()
	var addr string
	require.Eventually(t, func() bool {
		addr = srv.Addr()
		return !strings.HasSuffix(addr, ":0")
	}, 2*time.Second, 10*time.Millisecond)
	return "http://" + addr
}

func TestServer_StartStop(t *testing.T) {
	t.Parallel()

	srv := server.New("127.0.0.1:0", server.WithShutdownTimeout(2*time.Second))
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(ctx, handler) }()

	url := waitListening(t, srv)
	resp, err := http.Get(url)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	assert.ErrorIs(t, srv.Start(ctx, handler), server.ErrServerAlreadyRunning)

	require.NoError(t, srv.Stop())
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.NoError(t, srv.Stop(), "second stop is a no-op")
}

func TestServer_StopCancelsStreams(t *testing.T) {
	t.Parallel()

	var hookCalled atomic.Bool
	srv := server.New("127.0.0.1:0",
		server.WithShutdownTimeout(5*time.Second),
		server.WithOnShutdown(func(context.Context) { hookCalled.Store(true) }),
	)

	streamClosed := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ready\n")
		http.NewResponseController(w).Flush()
		<-r.Context().Done()
		close(streamClosed)
	})

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(gctx, handler))

	url := waitListening(t, srv)
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "ready\n", line)

	start := time.Now()
	cancel()
	require.NoError(t, g.Wait())

	select {
	case <-streamClosed:
	case <-time.After(time.Second):
		t.Fatal("stream handler was not cancelled")
	}
	assert.Less(t, time.Since(start), 4*time.Second)
	assert.True(t, hookCalled.Load())
}

func TestServer_ListenError(t *testing.T) {
	t.Parallel()

	srv := server.New("127.0.0.1:-1")
	err := srv.Start(context.Background(), http.NotFoundHandler())
	assert.ErrorIs(t, err, server.ErrHTTPServer)
}

func TestServer_StartCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	srv := server.New("127.0.0.1:0")
	assert.ErrorIs(t, srv.Start(ctx, http.NotFoundHandler()), context.Canceled)
}
