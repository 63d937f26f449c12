package testutil

import (
	"maps"
	"sync"
	"time"

	"github.com/pulsesend/pulsesend-go/logger"
)

// LoggedEvent is one entry captured by RecordingLogger
type LoggedEvent struct {
	Level   string
	Fields  map[string]any
	Message string
}

// RecordingLogger implements logger.Logger and keeps every entry in memory.
type RecordingLogger struct {
	mu     sync.Mutex
	events []LoggedEvent
}

var _ logger.Logger = (*RecordingLogger)(nil)

func (l *RecordingLogger) newEvent(level string) logger.LogEvent {
	return &recordingEvent{logger: l, level: level, fields: make(map[string]any)}
}

func (l *RecordingLogger) Debug() logger.LogEvent { return l.newEvent("debug") }
func (l *RecordingLogger) Info() logger.LogEvent  { return l.newEvent("info") }
func (l *RecordingLogger) Warn() logger.LogEvent  { return l.newEvent("warn") }
func (l *RecordingLogger) Error() logger.LogEvent { return l.newEvent("error") }

// WithFields returns the same logger; attached fields are not tracked.
func (l *RecordingLogger) WithFields(_ map[string]any) logger.Logger { return l }

// Events returns a copy of every captured entry
func (l *RecordingLogger) Events() []LoggedEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LoggedEvent(nil), l.events...)
}

// EventsByLevel returns captured entries with the given level
func (l *RecordingLogger) EventsByLevel(level string) []LoggedEvent {
	var out []LoggedEvent
	for _, e := range l.Events() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// EventsByMessage returns captured entries with the given message
func (l *RecordingLogger) EventsByMessage(msg string) []LoggedEvent {
	var out []LoggedEvent
	for _, e := range l.Events() {
		if e.Message == msg {
			out = append(out, e)
		}
	}
	return out
}

type recordingEvent struct {
	logger *RecordingLogger
	level  string
	fields map[string]any
}

func (e *recordingEvent) Msg(msg string) {
	e.logger.mu.Lock()
	defer e.logger.mu.Unlock()
	e.logger.events = append(e.logger.events, LoggedEvent{
		Level:   e.level,
		Fields:  maps.Clone(e.fields),
		Message: msg,
	})
}

// Msgf records the format string as the message
func (e *recordingEvent) Msgf(format string, _ ...any) { e.Msg(format) }

func (e *recordingEvent) set(key string, value any) logger.LogEvent {
	e.fields[key] = value
	return e
}

func (e *recordingEvent) Err(err error) logger.LogEvent { return e.set("error", err) }
func (e *recordingEvent) Str(key, value string) logger.LogEvent {
	return e.set(key, value)
}
func (e *recordingEvent) Int(key string, value int) logger.LogEvent   { return e.set(key, value) }
func (e *recordingEvent) Bool(key string, value bool) logger.LogEvent { return e.set(key, value) }
func (e *recordingEvent) Int64(key string, value int64) logger.LogEvent {
	return e.set(key, value)
}
func (e *recordingEvent) Dur(key string, d time.Duration) logger.LogEvent { return e.set(key, d) }
func (e *recordingEvent) Interface(key string, i any) logger.LogEvent     { return e.set(key, i) }
func (e *recordingEvent) Bytes(key string, val []byte) logger.LogEvent    { return e.set(key, val) }
