package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestInitStructured_DefaultLevels(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")

	InitStructured("development")
	assert.Equal(t, zerolog.DebugLevel, GetLogger().GetLevel())

	InitStructured("production")
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
}

func TestInitStructured_LogLevelOverride(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	InitStructured("production")
	assert.Equal(t, zerolog.WarnLevel, GetLogger().GetLevel())

	// Garbage values fall back to the env default
	t.Setenv("LOG_LEVEL", "nonsense")
	InitStructured("production")
	assert.Equal(t, zerolog.InfoLevel, GetLogger().GetLevel())
}

func TestWithTenantID_ChainsOnBase(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf).With().Str("request_id", "req-1").Logger()

	l := WithTenantID(base, "ten-1")
	l.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"tenant_id":"ten-1"`)
}
