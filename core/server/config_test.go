package server_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/rgwnotify/core/server"
)

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	t.Run("creates server from config with defaults", func(t *testing.T) {
		srv, err := server.NewFromConfig(server.DefaultConfig())
		require.NoError(t, err)
		assert.Equal(t, ":8080", srv.Addr())
	})

	t.Run("applies custom config values", func(t *testing.T) {
		cfg := server.Config{
			Addr:              "127.0.0.1:9000",
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       30 * time.Second,
			ShutdownTimeout:   5 * time.Second,
			MaxHeaderBytes:    2 << 20,
		}
		srv, err := server.NewFromConfig(cfg, server.WithShutdownTimeout(time.Second))
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9000", srv.Addr())
	})

	t.Run("requires an address", func(t *testing.T) {
		_, err := server.NewFromConfig(server.Config{})
		assert.ErrorIs(t, err, server.ErrMissingAddress)
	})

	t.Run("fails on unreadable certificate files", func(t *testing.T) {
		dir := t.TempDir()
		cert := filepath.Join(dir, "cert.pem")
		key := filepath.Join(dir, "key.pem")
		require.NoError(t, os.WriteFile(cert, []byte("not a cert"), 0o600))
		require.NoError(t, os.WriteFile(key, []byte("not a key"), 0o600))

		_, err := server.NewFromConfig(server.Config{Addr: ":0", TLSCertFile: cert, TLSKeyFile: key})
		assert.ErrorIs(t, err, server.ErrFailedLoadCert)
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := server.DefaultConfig()
	assert.Equal(t, server.DefaultReadHeaderTimeout, cfg.ReadHeaderTimeout)
	assert.Zero(t, cfg.ReadTimeout)
	assert.Zero(t, cfg.WriteTimeout)
	assert.Equal(t, server.DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, server.DefaultMaxHeaderBytes, cfg.MaxHeaderBytes)
}
