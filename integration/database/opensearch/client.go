package opensearch

import (
	"context"
	"fmt"

	osgo "github.com/opensearch-project/opensearch-go/v2"
)

// New creates a client and verifies the cluster answers before returning it.
func New(ctx context.Context, cfg Config) (*osgo.Client, error) {
	client, err := osgo.NewClient(osgo.Config{
		Addresses:    cfg.Addresses,
		Username:     cfg.Username,
		Password:     cfg.Password,
		MaxRetries:   cfg.MaxRetries,
		DisableRetry: cfg.DisableRetry,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectionFailed, err)
	}
	if err := Healthcheck(client)(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// Healthcheck returns a probe that calls the cluster info endpoint.
func Healthcheck(client *osgo.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		res, err := client.Info(client.Info.WithContext(ctx))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrHealthcheckFailed, err)
		}
		defer func() { _ = res.Body.Close() }()
		if res.IsError() {
			return fmt.Errorf("%w: %s", ErrHealthcheckFailed, res.Status())
		}
		return nil
	}
}
