package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/rgwnotify/core/config"
	"github.com/dmitrymomot/rgwnotify/core/dispatch"
	"github.com/dmitrymomot/rgwnotify/core/endpoint"
	"github.com/dmitrymomot/rgwnotify/core/enrich"
	"github.com/dmitrymomot/rgwnotify/core/handler"
	"github.com/dmitrymomot/rgwnotify/core/health"
	"github.com/dmitrymomot/rgwnotify/core/hub"
	"github.com/dmitrymomot/rgwnotify/core/logger"
	"github.com/dmitrymomot/rgwnotify/core/metrics"
	"github.com/dmitrymomot/rgwnotify/core/server"
	"github.com/dmitrymomot/rgwnotify/integration/database/opensearch"
	"github.com/dmitrymomot/rgwnotify/integration/database/redis"
	"github.com/dmitrymomot/rgwnotify/integration/storage/s3"
	"github.com/dmitrymomot/rgwnotify/middleware"
)

const serviceName = "rgwnotify"

type appConfig struct {
	Env       string `env:"APP_ENV" envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	LogFormat string `env:"LOG_FORMAT"`

	Server     server.Config
	Hub        endpoint.Config
	S3         s3.Config
	OpenSearch opensearch.Config
	Redis      redis.Config
}

func newServeCmd() *cobra.Command {
	var (
		envFile  string
		addr     string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the notification hub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if envFile != "" {
				if err := config.LoadEnvFile(envFile); err != nil {
					return err
				}
			}

			var cfg appConfig
			if err := config.Load(&cfg); err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}

			log, err := newLogger(cfg)
			if err != nil {
				return err
			}
			logger.SetAsDefault(log)

			return serve(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides SERVER_ADDR")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error; overrides LOG_LEVEL")
	return cmd
}

func newLogger(cfg appConfig) (*slog.Logger, error) {
	opts := []logger.Option{
		logger.ForEnv(cfg.Env, serviceName),
		logger.WithAttr(logger.Version(version)),
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	}
	if cfg.LogLevel != "" {
		level, ok := logger.ParseLevel(cfg.LogLevel)
		if !ok {
			return nil, fmt.Errorf("invalid log level %q", cfg.LogLevel)
		}
		opts = append(opts, logger.WithLevel(level))
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "":
	case "json":
		opts = append(opts, logger.WithJSONFormatter())
	case "text":
		opts = append(opts, logger.WithTextFormatter())
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	return logger.New(opts...), nil
}

func serve(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	m := metrics.New()

	registry := hub.New(
		hub.WithChunkSize(cfg.Hub.ChunkSize),
		hub.WithSubscriberBuffer(cfg.Hub.SubscriberBuffer),
		hub.WithConcurrency(cfg.Hub.MatchConcurrency),
		hub.WithLogger(log),
		hub.WithRecorder(m),
	)

	osClient, err := opensearch.New(ctx, cfg.OpenSearch)
	if err != nil {
		return err
	}
	indexer, err := opensearch.NewIndexer(osClient, cfg.OpenSearch.Index,
		opensearch.WithLogger(log),
		opensearch.WithShards(cfg.OpenSearch.Shards),
	)
	if err != nil {
		return err
	}
	if cfg.OpenSearch.CreateIndex {
		if err := indexer.EnsureIndex(ctx); err != nil {
			return err
		}
	}

	md, err := s3.New(ctx, cfg.S3)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	checks := []health.Check{opensearch.Healthcheck(osClient)}
	pipelineOpts := []enrich.Option{enrich.WithLogger(log), enrich.WithRecorder(m)}

	if cfg.Redis.Enabled() {
		rc, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rc.Close()

		relay := redis.NewRelay(rc, cfg.Redis.Channel, registry, redis.WithLogger(log))
		pipelineOpts = append(pipelineOpts, enrich.WithRelay(relay))
		checks = append(checks, redis.Healthcheck(rc))
		g.Go(func() error { return relay.Run(gctx) })
	}

	pipeline := enrich.New(md, indexer, registry, pipelineOpts...)
	dispatcher := dispatch.New(pipeline, indexer, dispatch.WithLogger(log), dispatch.WithRecorder(m))

	h := endpoint.New(dispatcher, registry, cfg.Hub,
		endpoint.WithLogger(log),
		endpoint.WithRecorder(m),
		endpoint.WithReadinessChecks(checks...),
		endpoint.WithMetricsHandler(m.Handler()),
		endpoint.WithRemoteAddr(middleware.RemoteAddr),
	)

	root := handler.Chain(h,
		middleware.RequestID(),
		middleware.ClientIP(),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger:   log,
			LogStart: true,
			Skip:     skipAccessLog,
		}),
	)

	srv, err := server.NewFromConfig(cfg.Server,
		server.WithLogger(log),
		server.WithOnShutdown(func(context.Context) { registry.CloseAll() }),
	)
	if err != nil {
		return err
	}
	g.Go(srv.Run(gctx, root))

	log.InfoContext(ctx, "rgwnotify started",
		slog.String("addr", cfg.Server.Addr),
		slog.String("index", indexer.Index()),
		slog.Bool("relay", cfg.Redis.Enabled()),
	)
	return g.Wait()
}

func skipAccessLog(r *http.Request) bool {
	switch r.URL.Path {
	case "/health/live", "/health/ready", "/metrics":
		return true
	}
	return false
}
