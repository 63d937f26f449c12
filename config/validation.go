package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their koanf key rather than the Go field name
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
		validate = v
	})
	return validate
}

// Validate checks cfg and returns every problem found, each as a *ConfigError.
func Validate(cfg *Config) error {
	if cfg == nil {
		return NewInvalidFieldError("", "configuration is nil", nil)
	}

	var errs []error
	if err := getValidator().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, toConfigError(fe))
		}
	}

	obs := cfg.Observability
	obs.ApplyDefaults()
	if err := obs.Validate(); err != nil {
		errs = append(errs, NewInvalidFieldError("observability", err.Error(), nil))
	}
	return errors.Join(errs...)
}

func toConfigError(fe validator.FieldError) *ConfigError {
	field := keyPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return NewMissingFieldError(field, envVarFor(field), field)
	case "startswith":
		return NewInvalidFieldError(field, fmt.Sprintf("must start with %q", fe.Param()), nil)
	case "http_url":
		err := NewInvalidFieldError(field, "must be an absolute http or https URL", nil)
		err.Details = []string{"e.g. " + DefaultBaseURL}
		return err
	case "gt":
		return NewInvalidFieldError(field, "must be greater than zero", nil)
	case "gte":
		return NewInvalidFieldError(field, "must not be negative", nil)
	case "oneof":
		return NewInvalidFieldError(field, fmt.Sprintf("unsupported value %q", fmt.Sprint(fe.Value())), strings.Fields(fe.Param()))
	default:
		return NewInvalidFieldError(field, fmt.Sprintf("failed %s validation", fe.Tag()), nil)
	}
}

// keyPath turns "Config.api.key" into "api.key"
func keyPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}

// envVarFor returns the environment variable that sets key
func envVarFor(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
