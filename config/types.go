package config

import (
	"time"

	"github.com/knadh/koanf/v2"

	"github.com/pulsesend/pulsesend-go/observability"
)

// Config is the complete SDK configuration. The embedded koanf instance keeps
// every loaded key, so application-specific settings can live next to the
// SDK's own and be read with the Get accessors.
type Config struct {
	API   APIConfig   `koanf:"api" json:"api" yaml:"api"`
	HTTP  HTTPConfig  `koanf:"http" json:"http" yaml:"http"`
	Retry RetryConfig `koanf:"retry" json:"retry" yaml:"retry"`
	Log   LogConfig   `koanf:"log" json:"log" yaml:"log"`

	Observability observability.Config `koanf:"observability" json:"observability" yaml:"observability"`

	k *koanf.Koanf `json:"-" yaml:"-"`
}

// APIConfig identifies the account and the API endpoint.
type APIConfig struct {
	// Key is the secret API key, always prefixed with pk_
	Key     string `koanf:"key" json:"-" yaml:"key" validate:"required,startswith=pk_"`
	BaseURL string `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"required,http_url"`
}

// HTTPConfig holds transport settings.
type HTTPConfig struct {
	// Timeout bounds each attempt, not the whole call
	Timeout   time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gt=0"`
	UserAgent string        `koanf:"useragent" json:"useragent" yaml:"useragent"`

	// RateLimit throttles outgoing requests per second. Zero disables it.
	RateLimit float64 `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit" validate:"gte=0"`
	Burst     int     `koanf:"burst" json:"burst" yaml:"burst" validate:"gte=0"`

	LogPayloads        bool `koanf:"logpayloads" json:"logpayloads" yaml:"logpayloads"`
	MaxPayloadLogBytes int  `koanf:"maxpayloadlogbytes" json:"maxpayloadlogbytes" yaml:"maxpayloadlogbytes" validate:"gte=0"`

	// TraceContext sends a W3C traceparent header with every request
	TraceContext bool `koanf:"tracecontext" json:"tracecontext" yaml:"tracecontext"`
}

// RetryConfig controls the retry policy.
type RetryConfig struct {
	// Max is the number of retries after the first attempt
	Max   int           `koanf:"max" json:"max" yaml:"max" validate:"gte=0"`
	Delay time.Duration `koanf:"delay" json:"delay" yaml:"delay" validate:"gt=0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
}
