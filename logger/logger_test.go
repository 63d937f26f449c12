package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessage = "test message"

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	return entry
}

func TestNewWithWriterLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		emitDebug bool
		emitInfo  bool
		emitWarn  bool
	}{
		{name: "debug", level: "debug", emitDebug: true, emitInfo: true, emitWarn: true},
		{name: "info", level: "info", emitInfo: true, emitWarn: true},
		{name: "warn", level: "warn", emitWarn: true},
		{name: "invalid_defaults_to_info", level: "loud", emitInfo: true, emitWarn: true},
		{name: "empty_defaults_to_info", level: "", emitInfo: true, emitWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(&buf, tt.level, false)

			l.Debug().Msg("debug")
			assert.Equal(t, tt.emitDebug, strings.Contains(buf.String(), `"message":"debug"`))
			buf.Reset()

			l.Info().Msg("info")
			assert.Equal(t, tt.emitInfo, strings.Contains(buf.String(), `"message":"info"`))
			buf.Reset()

			l.Warn().Msg("warn")
			assert.Equal(t, tt.emitWarn, strings.Contains(buf.String(), `"message":"warn"`))
		})
	}
}

func TestStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "debug", false)

	l.Warn().
		Str("error_kind", "server_error").
		Int("attempt", 2).
		Int64("call_count", 7).
		Dur("delay", 1500*time.Millisecond).
		Err(errors.New("boom")).
		Msg(testMessage)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, testMessage, entry["message"])
	assert.Equal(t, "pulsesend", entry["component"])
	assert.Equal(t, "server_error", entry["error_kind"])
	assert.EqualValues(t, 2, entry["attempt"])
	assert.EqualValues(t, 7, entry["call_count"])
	assert.EqualValues(t, 1500, entry["delay"])
	assert.Equal(t, "boom", entry["error"])
}

func TestSensitiveValuesAreMasked(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", false)

	l.Info().
		Str("api_key", "pk_live_123").
		Interface("headers", map[string]string{
			"Authorization": "Bearer pk_live_123",
			"Content-Type":  "application/json",
		}).
		Msg(testMessage)

	out := buf.String()
	assert.NotContains(t, out, "pk_live_123")

	entry := decodeLine(t, &buf)
	assert.Equal(t, DefaultMaskValue, entry["api_key"])
	headers, ok := entry["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DefaultMaskValue, headers["Authorization"])
	assert.Equal(t, "application/json", headers["Content-Type"])
}

func TestWithFieldsFiltersAndAttaches(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", false).WithFields(map[string]any{
		"sdk_version": "1.0.0",
		"token":       "secret-token",
	})

	l.Info().Msg(testMessage)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "1.0.0", entry["sdk_version"])
	assert.Equal(t, DefaultMaskValue, entry["token"])
}

func TestPrettyOutput(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "info", true)
	l.Info().Str("method", "GET").Msg(testMessage)

	assert.Contains(t, buf.String(), testMessage)
	assert.Contains(t, buf.String(), "method=")
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	assert.NotPanics(t, func() {
		l.Debug().Str("a", "b").Msg("ignored")
		l.Error().Err(errors.New("x")).Msg("ignored")
		l.WithFields(map[string]any{"a": 1}).Info().Msg("ignored")
	})
}
