package server

import "time"

const (
	// DefaultReadHeaderTimeout bounds reading request headers. Bodies and
	// responses are not bounded by the server because subscriber streams
	// stay open indefinitely.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout is the default timeout for idle keep-alive connections.
	DefaultIdleTimeout = 60 * time.Second

	// DefaultShutdownTimeout is the default timeout for graceful shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// DefaultMaxHeaderBytes is the default maximum size of request headers.
	DefaultMaxHeaderBytes = 1 << 20 // 1 MB
)
