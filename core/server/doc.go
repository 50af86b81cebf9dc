// Package server wraps http.Server with graceful shutdown suited to
// long-lived streaming responses.
//
// # Basic Usage
//
//	srv, err := server.NewFromConfig(cfg,
//		server.WithLogger(log),
//		server.WithOnShutdown(func(context.Context) { registry.CloseAll() }),
//	)
//	if err != nil {
//		return err
//	}
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(srv.Run(ctx, handler))
//	return g.Wait()
//
// Run serves until the context is cancelled and then calls Stop.
//
// # Streams and Shutdown
//
// Subscriber streams never finish on their own, so the server does not set
// read or write timeouts by default; only request headers are bounded
// (SERVER_READ_HEADER_TIMEOUT). Every request context derives from a base
// context that Stop cancels before waiting for active connections, which
// lets streaming handlers unwind instead of holding shutdown until
// SERVER_SHUTDOWN_TIMEOUT expires. Shutdown hooks run first.
//
// # Configuration
//
// Config is parsed from the environment:
//
//	SERVER_ADDR                 listen address, default ":8080"
//	SERVER_READ_HEADER_TIMEOUT  default 10s
//	SERVER_READ_TIMEOUT         default 0 (disabled)
//	SERVER_WRITE_TIMEOUT        default 0 (disabled)
//	SERVER_IDLE_TIMEOUT         default 60s
//	SERVER_SHUTDOWN_TIMEOUT     default 30s
//	SERVER_MAX_HEADER_BYTES     default 1MB
//	SERVER_TLS_CERT_FILE        with SERVER_TLS_KEY_FILE enables HTTPS
package server
