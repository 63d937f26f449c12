package observability

import "errors"

// Configuration errors returned by Validate and NewProvider.
var (
	ErrNilConfig          = errors.New("observability: config is nil")
	ErrMissingServiceName = errors.New("observability: service name is required when enabled")
	ErrInvalidSampleRate  = errors.New("observability: trace sample rate must be between 0.0 and 1.0")
	ErrInvalidProtocol    = errors.New("observability: protocol must be either 'http' or 'grpc'")
	// ErrInvalidEndpointFormat: gRPC takes host:port, HTTP needs an http:// or https:// URL
	ErrInvalidEndpointFormat = errors.New("observability: invalid endpoint format for protocol")
)
