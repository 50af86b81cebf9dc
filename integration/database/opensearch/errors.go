package opensearch

import "errors"

var (
	ErrConnectionFailed  = errors.New("opensearch: connection failed")
	ErrHealthcheckFailed = errors.New("opensearch: healthcheck failed")
	ErrIndexRequired     = errors.New("opensearch: index name is required")
	ErrRequestFailed     = errors.New("opensearch: request failed")
)
