package opensearch

// Config configures the OpenSearch client and the event index.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES,required" envSeparator:","`
	Username     string   `env:"OPENSEARCH_USERNAME"`
	Password     string   `env:"OPENSEARCH_PASSWORD"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`

	Index       string `env:"OPENSEARCH_INDEX,required"`
	CreateIndex bool   `env:"OPENSEARCH_CREATE_INDEX" envDefault:"true"`
	Shards      int    `env:"OPENSEARCH_SHARDS" envDefault:"5"`
}
