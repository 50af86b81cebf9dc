package endpoint

import "errors"

var (
	ErrUnsupportedPath  = errors.New("unsupported uri path")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrEmptyCondition   = errors.New("condition cannot be empty string")
	ErrBatchTooLarge    = errors.New("publish batch too large")
	ErrBodyEncoding     = errors.New("unsupported content encoding")
)
