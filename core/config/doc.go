// Package config loads environment configuration into tagged structs.
//
// Load parses the environment with caarlos0/env. The first call also loads a
// .env file from the working directory when present; variables already set in
// the process win over the file. Each struct type is parsed once and cached,
// so later calls for the same type return the first result.
//
//	import "github.com/dmitrymomot/rgwnotify/core/config"
//
//	type appConfig struct {
//		Env        string `env:"APP_ENV" envDefault:"development"`
//		Server     server.Config
//		Hub        endpoint.Config   // HUB_CHUNK_SIZE, HUB_SUBSCRIBER_BUFFER, HUB_MAX_BATCH_BYTES ...
//		S3         s3.Config         // S3_ENDPOINT, S3_REGION, S3_ACCESS_KEY_ID ...
//		OpenSearch opensearch.Config // OPENSEARCH_ADDRESSES, OPENSEARCH_INDEX ...
//		Redis      redis.Config      // REDIS_URL, REDIS_CHANNEL
//	}
//
//	var cfg appConfig
//	if err := config.Load(&cfg); err != nil {
//		// errors.Is(err, config.ErrParsingConfig)
//	}
//
// MustLoad panics instead of returning the error.
//
// # Env Files
//
// LoadEnvFile loads extra dotenv files before the first Load, for example the
// path passed to "rgwnotify serve --env-file". Missing files are skipped and
// existing variables are not overridden:
//
//	if err := config.LoadEnvFile("/etc/rgwnotify/env"); err != nil {
//		return err
//	}
package config
