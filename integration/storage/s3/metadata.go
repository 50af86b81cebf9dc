package s3

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrymomot/rgwnotify/core/event"
)

// UserMetadataPrefix is prepended to user-defined metadata keys.
const UserMetadataPrefix = "meta_"

// Client is the subset of the S3 API used for metadata lookups.
type Client interface {
	HeadObject(ctx context.Context, params *s3aws.HeadObjectInput, optFns ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error)
}

// MetadataService resolves objects to their metadata with HeadObject.
// It is safe for concurrent use.
type MetadataService struct {
	client  Client
	timeout time.Duration
}

// Option configures a MetadataService.
type Option func(*options)

type options struct {
	client          Client
	httpClient      *http.Client
	configOptions   []func(*config.LoadOptions) error
	clientOptions   []func(*s3aws.Options)
	timeoutOverride *time.Duration
}

// WithS3Client sets a pre-configured client, typically a test double.
func WithS3Client(c Client) Option {
	return func(o *options) { o.client = c }
}

// WithHTTPClient sets the HTTP client used for S3 requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithConfigOption adds an AWS config load option.
func WithConfigOption(opt func(*config.LoadOptions) error) Option {
	return func(o *options) { o.configOptions = append(o.configOptions, opt) }
}

// WithClientOption adds an S3 client option.
func WithClientOption(opt func(*s3aws.Options)) Option {
	return func(o *options) { o.clientOptions = append(o.clientOptions, opt) }
}

// WithLookupTimeout overrides Config.LookupTimeout. Zero disables the timeout.
func WithLookupTimeout(d time.Duration) Option {
	return func(o *options) { o.timeoutOverride = &d }
}

// New creates a metadata service. Static credentials are used when both keys
// are set; otherwise the default AWS credential chain applies.
func New(ctx context.Context, cfg Config, opts ...Option) (*MetadataService, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	timeout := cfg.LookupTimeout
	if o.timeoutOverride != nil {
		timeout = *o.timeoutOverride
	}
	if timeout < 0 {
		return nil, fmt.Errorf("%w: negative lookup timeout", ErrInvalidConfig)
	}

	if o.client != nil {
		return &MetadataService{client: o.client, timeout: timeout}, nil
	}
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required", ErrInvalidConfig)
	}

	awsOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsOpts = append(awsOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	if o.httpClient != nil {
		awsOpts = append(awsOpts, config.WithHTTPClient(o.httpClient))
	}
	awsOpts = append(awsOpts, o.configOptions...)

	awsCfg, err := config.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3aws.NewFromConfig(awsCfg, func(so *s3aws.Options) {
		if cfg.Endpoint != "" {
			so.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		so.UsePathStyle = cfg.ForcePathStyle
		for _, opt := range o.clientOptions {
			opt(so)
		}
	})
	return &MetadataService{client: client, timeout: timeout}, nil
}

// Get returns the flat metadata of ref.
func (s *MetadataService) Get(ctx context.Context, ref event.ObjectRef) (event.Metadata, error) {
	if ref.Bucket == "" || ref.Key == "" {
		return nil, fmt.Errorf("%w: empty bucket or key", ErrObjectNotFound)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out, err := s.client.HeadObject(ctx, &s3aws.HeadObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, classifyS3Error(err, "head object")
	}
	return metadataFromHead(out), nil
}

func metadataFromHead(out *s3aws.HeadObjectOutput) event.Metadata {
	md := event.Metadata{}
	if out == nil {
		return md
	}

	putString := func(key string, v *string) {
		if s := aws.ToString(v); s != "" {
			md[key] = s
		}
	}
	putTime := func(key string, v *time.Time) {
		if v != nil && !v.IsZero() {
			md[key] = v.UTC().Format(time.RFC3339)
		}
	}

	putString("content_type", out.ContentType)
	putString("content_encoding", out.ContentEncoding)
	putString("content_language", out.ContentLanguage)
	putString("content_disposition", out.ContentDisposition)
	putString("cache_control", out.CacheControl)
	putString("etag", out.ETag)
	putString("version_id", out.VersionId)
	putTime("last_modified", out.LastModified)

	if out.ContentLength != nil {
		md["content_length"] = *out.ContentLength
	}
	if etag := strings.Trim(aws.ToString(out.ETag), `"`); etag != "" && !strings.Contains(etag, "-") {
		md["md5"] = etag
	}
	if exp := aws.ToString(out.ExpiresString); exp != "" {
		if t, err := http.ParseTime(exp); err == nil {
			putTime("expires", &t)
		} else {
			md["expires"] = exp
		}
	}
	if sc := string(out.StorageClass); sc != "" {
		md["storage_class"] = sc
	}
	for k, v := range out.Metadata {
		md[userMetadataKey(k)] = v
	}
	return md
}

func userMetadataKey(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "x-amz-meta-")
	return UserMetadataPrefix + strings.ReplaceAll(name, "-", "_")
}
