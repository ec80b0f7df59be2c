package api

import "errors"

var (
	// ErrInvalidConfig means the client was configured with an unusable base URL.
	ErrInvalidConfig = errors.New("invalid API client configuration")
	// ErrConnectivity means the reachability probe failed.
	ErrConnectivity = errors.New("API target unreachable")
	// ErrMalformedBody means a response that must be JSON was not.
	ErrMalformedBody = errors.New("malformed response body")
)
