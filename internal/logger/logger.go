package logger

import (
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	defaultLogger zerolog.Logger
	once          sync.Once
)

// Init initializes the default logger with a console writer on stderr.
// It ensures that the logger is initialized only once.
func Init() {
	once.Do(func() {
		defaultLogger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Logger()
	})
}

// Configure applies the logging section of the configuration: level and
// output format ("console" or "json"). Unknown values are ignored.
func Configure(level, format string) {
	Init()
	if level != "" {
		if lvl, err := zerolog.ParseLevel(level); err == nil {
			zerolog.SetGlobalLevel(lvl)
		}
	}
	if format == "json" {
		defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
}

// Get returns the initialized default logger.
// It calls Init() to ensure the logger is ready before returning it.
func Get() *zerolog.Logger {
	Init()
	return &defaultLogger
}

// Info logs an informational message with alternating key/value pairs.
func Info(msg string, keyvals ...any) {
	withFields(Get().Info(), keyvals).Msg(msg)
}

// Warn logs a warning message with alternating key/value pairs.
func Warn(msg string, keyvals ...any) {
	withFields(Get().Warn(), keyvals).Msg(msg)
}

// Error logs an error message with the given error attached.
func Error(msg string, err error, keyvals ...any) {
	withFields(Get().Error().Err(err), keyvals).Msg(msg)
}

// Debug logs a debug message with alternating key/value pairs.
func Debug(msg string, keyvals ...any) {
	withFields(Get().Debug(), keyvals).Msg(msg)
}

func withFields(event *zerolog.Event, keyvals []any) *zerolog.Event {
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		event = event.Interface(key, keyvals[i+1])
	}
	return event
}
