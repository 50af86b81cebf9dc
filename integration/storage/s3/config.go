package s3

import "time"

// Config configures the S3 metadata client. Ceph RGW and other S3-compatible
// gateways are addressed through Endpoint with path-style requests.
type Config struct {
	Endpoint        string        `env:"S3_ENDPOINT"`
	Region          string        `env:"S3_REGION" envDefault:"us-east-1"`
	AccessKeyID     string        `env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"S3_SECRET_ACCESS_KEY"`
	ForcePathStyle  bool          `env:"S3_FORCE_PATH_STYLE" envDefault:"true"`
	LookupTimeout   time.Duration `env:"S3_LOOKUP_TIMEOUT"`
}
