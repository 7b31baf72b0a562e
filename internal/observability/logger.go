package observability

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger zerolog.Logger
	initOnce     sync.Once
)

// LogOptions controls where and how the global logger writes.
type LogOptions struct {
	Level     string
	Pretty    bool
	File      string // rotating log file, disabled when empty
	MaxSizeMB int
}

// InitLogger initializes the global structured logger. Only the first call has effect.
func InitLogger(opts LogOptions) {
	initOnce.Do(func() {
		zerolog.SetGlobalLevel(ParseLevel(opts.Level))

		var out io.Writer = os.Stdout
		if opts.Pretty {
			// Pretty console output for development
			out = zerolog.ConsoleWriter{
				Out:        os.Stdout,
				TimeFormat: time.RFC3339,
			}
		}

		if opts.File != "" {
			maxSize := opts.MaxSizeMB
			if maxSize <= 0 {
				maxSize = 100
			}
			out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
				Filename:   opts.File,
				MaxSize:    maxSize,
				MaxAge:     7,
				MaxBackups: 3,
				LocalTime:  true,
				Compress:   true,
			})
		}

		globalLogger = zerolog.New(out).With().Timestamp().Logger()
		log.Logger = globalLogger
	})
}

// ParseLevel maps a configured level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	default:
		return zerolog.InfoLevel
	}
}

// GetLogger returns the global logger
func GetLogger() zerolog.Logger {
	InitLogger(LogOptions{Level: "info"})
	return globalLogger
}

// WithCorrelationID creates a logger with a correlation ID
func WithCorrelationID(correlationID string) zerolog.Logger {
	if correlationID == "" {
		correlationID = NewCorrelationID()
	}
	return GetLogger().With().Str("correlation_id", correlationID).Logger()
}

// NewCorrelationID generates a new correlation ID
func NewCorrelationID() string {
	return uuid.New().String()
}
