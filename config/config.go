// Package config loads PulseSend SDK settings from defaults, an optional YAML
// file and PULSESEND_* environment variables, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/pulsesend/pulsesend-go/observability"
)

const (
	// EnvPrefix is stripped from environment variables before mapping them to keys
	EnvPrefix = "PULSESEND_"

	// DefaultFile is read by Load when present in the working directory
	DefaultFile = "pulsesend.yaml"

	DefaultBaseURL            = "https://api.pulsesend.com/v1"
	DefaultTimeout            = 10 * time.Second
	DefaultMaxRetries         = 3
	DefaultRetryDelay         = time.Second
	DefaultMaxPayloadLogBytes = 1024
	DefaultLogLevel           = "warn"
)

// envAliases maps the variable names used by the other PulseSend SDKs onto
// configuration keys. Keys are already stripped of the prefix and dotted.
var envAliases = map[string]string{
	"base.url": "api.baseurl",
	"timeout":  "http.timeout",
	"retries":  "retry.max",
}

// durationKeys accept bare numbers, read as seconds
var durationKeys = []string{"http.timeout", "retry.delay", "observability.metrics.interval"}

func defaults() map[string]any {
	return map[string]any{
		"api.key":     "",
		"api.baseurl": DefaultBaseURL,

		"http.timeout":            DefaultTimeout.String(),
		"http.useragent":          "",
		"http.ratelimit":          0,
		"http.burst":              0,
		"http.logpayloads":        false,
		"http.tracecontext":       false,
		"http.maxpayloadlogbytes": DefaultMaxPayloadLogBytes,

		"retry.max":   DefaultMaxRetries,
		"retry.delay": DefaultRetryDelay.String(),

		"log.level":  DefaultLogLevel,
		"log.pretty": false,

		"observability.enabled":          false,
		"observability.service.name":     observability.DefaultServiceName,
		"observability.trace.endpoint":   observability.EndpointStdout,
		"observability.trace.protocol":   observability.ProtocolHTTP,
		"observability.metrics.endpoint": observability.EndpointStdout,
		"observability.metrics.interval": observability.DefaultMetricsInterval.String(),
	}
}

// Default returns the built-in defaults without reading any source. The
// result has no API key and does not pass Validate on its own.
func Default() *Config {
	k := koanf.New(".")
	// confmap over a literal map cannot fail
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	cfg, _ := finish(k, false)
	return cfg
}

// Load reads defaults, DefaultFile if it exists, then the environment.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	if _, err := os.Stat(DefaultFile); err == nil {
		if err := k.Load(file.Provider(DefaultFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", DefaultFile, err)
		}
	}

	return loadEnvAndFinish(k)
}

// LoadFile reads defaults, the YAML file at path, then the environment.
// Unlike Load, a missing file is an error.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return loadEnvAndFinish(k)
}

// LoadBytes reads defaults, the given YAML document, then the environment.
func LoadBytes(data []byte) (*Config, error) {
	k := koanf.New(".")
	if err := loadDefaults(k); err != nil {
		return nil, err
	}

	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	return loadEnvAndFinish(k)
}

func loadDefaults(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	return nil
}

func loadEnvAndFinish(k *koanf.Koanf) (*Config, error) {
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: envKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	return finish(k, true)
}

// envKey converts PULSESEND_HTTP_TIMEOUT into http.timeout, applying aliases
func envKey(key, value string) (string, any) {
	key = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(key, EnvPrefix)), "_", ".")
	if alias, ok := envAliases[key]; ok {
		key = alias
	}
	return key, value
}

func finish(k *koanf.Koanf, validate bool) (*Config, error) {
	if err := normalizeDurations(k); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if validate {
		if err := Validate(&cfg); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	return &cfg, nil
}

// normalizeDurations rewrites bare numbers under durationKeys as seconds so
// "timeout: 30" and PULSESEND_TIMEOUT=30 mean thirty seconds.
func normalizeDurations(k *koanf.Koanf) error {
	for _, key := range durationKeys {
		if !k.Exists(key) {
			continue
		}
		secs, ok, err := bareSeconds(k.Get(key))
		if err != nil {
			return NewInvalidFieldError(key, err.Error(), nil)
		}
		if ok {
			if err := k.Set(key, (time.Duration(secs * float64(time.Second))).String()); err != nil {
				return fmt.Errorf("failed to set %s: %w", key, err)
			}
		}
	}
	return nil
}

func bareSeconds(v any) (float64, bool, error) {
	switch val := v.(type) {
	case int:
		return float64(val), true, nil
	case int64:
		return float64(val), true, nil
	case float64:
		return val, true, nil
	case string:
		s := strings.TrimSpace(val)
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true, nil
		}
		if _, err := time.ParseDuration(s); err != nil {
			return 0, false, fmt.Errorf("invalid duration %q", val)
		}
		return 0, false, nil
	default:
		return 0, false, nil
	}
}
