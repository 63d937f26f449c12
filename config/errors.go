package config

import (
	"fmt"
	"strings"
)

// Error categories
const (
	CategoryMissing = "missing"
	CategoryInvalid = "invalid"
)

// ConfigError points at one bad configuration key and says how to fix it.
//
//nolint:revive // config.ConfigError reads better than config.Error at call sites
type ConfigError struct {
	Category string
	// Field is the dotted key, e.g. retry.delay
	Field   string
	Message string
	Action  string
	// Details are examples or extra hints, joined with "; "
	Details []string
}

// Error renders "config_<category>: <field> <message> <action> <details>",
// skipping empty parts.
func (e *ConfigError) Error() string {
	var b strings.Builder
	add := func(s string) {
		if s == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}

	if e.Category != "" {
		add("config_" + e.Category + ":")
	}
	add(e.Field)
	add(e.Message)
	add(e.Action)
	add(strings.Join(e.Details, "; "))
	return b.String()
}

// NewMissingFieldError reports a required key that no source set.
func NewMissingFieldError(field, envVar, yamlPath string) *ConfigError {
	return &ConfigError{
		Category: CategoryMissing,
		Field:    field,
		Message:  "required",
		Action:   fmt.Sprintf("set %s env var or add %s to the config file", envVar, yamlPath),
	}
}

// NewInvalidFieldError reports a key whose value was rejected. validOptions,
// when given, are listed in the action.
func NewInvalidFieldError(field, message string, validOptions []string) *ConfigError {
	err := &ConfigError{
		Category: CategoryInvalid,
		Field:    field,
		Message:  message,
	}
	if len(validOptions) > 0 {
		err.Action = "must be one of: " + strings.Join(validOptions, ", ")
	}
	return err
}
