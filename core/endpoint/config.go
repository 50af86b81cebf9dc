package endpoint

import "time"

// DefaultBanner is the body served on "/".
const DefaultBanner = "Rados gateway notification broadcasting service."

// Config holds the hub settings read from the environment.
type Config struct {
	ChunkSize          int           `env:"HUB_CHUNK_SIZE" envDefault:"8192"`
	SubscriberBuffer   int           `env:"HUB_SUBSCRIBER_BUFFER" envDefault:"64"`
	MatchConcurrency   int           `env:"HUB_MATCH_CONCURRENCY"`
	MaxBatchBytes      int64         `env:"HUB_MAX_BATCH_BYTES" envDefault:"65536"`
	StreamWriteTimeout time.Duration `env:"HUB_STREAM_WRITE_TIMEOUT" envDefault:"10s"`
	Banner             string        `env:"HUB_BANNER" envDefault:"Rados gateway notification broadcasting service."`
}

// DefaultConfig mirrors the env defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:          8192,
		SubscriberBuffer:   64,
		MaxBatchBytes:      64 << 10,
		StreamWriteTimeout: 10 * time.Second,
		Banner:             DefaultBanner,
	}
}
