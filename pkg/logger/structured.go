package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog zerolog.Logger

// InitStructured initializes the structured zerolog logger.
// LOG_LEVEL overrides the default level (debug in dev, info elsewhere).
func InitStructured(env string) {
	var w io.Writer
	level := zerolog.InfoLevel

	if env == "development" || env == "dev" || env == "local" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
		level = zerolog.DebugLevel
	} else {
		// JSON output for production (machine-readable)
		w = os.Stdout
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}

	zlog = zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", "agendly-backend").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithRequestID returns a logger with request_id field
func WithRequestID(requestID string) zerolog.Logger {
	return zlog.With().Str("request_id", requestID).Logger()
}

// WithTenantID returns a child of l with a tenant_id field, so it can
// stack on other contextual loggers such as WithRequestID
func WithTenantID(l zerolog.Logger, tenantID string) zerolog.Logger {
	return l.With().Str("tenant_id", tenantID).Logger()
}
