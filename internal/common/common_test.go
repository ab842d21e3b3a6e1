package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg := LoadConfig()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, ":5000", cfg.Server.HTTPAddr)
	assert.Equal(t, 60*time.Second, cfg.Server.TurnTimeout)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 16, cfg.Media.MaxMB)
	assert.Equal(t, "/webhooks/telegram", cfg.Telegram.WebhookPath)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("DB_URL", "postgres://u:p@localhost/billbot")
	t.Setenv("PUBLIC_BASE_URL", "https://bot.example.com/")
	t.Setenv("TURN_TIMEOUT", "15s")
	t.Setenv("MEDIA_MAX_MB", "not-a-number")
	t.Setenv("OCR_ENABLED", "true")
	t.Setenv("OPENAI_TEMPERATURE", "0.2")

	cfg := LoadConfig()
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "https://bot.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, 15*time.Second, cfg.Server.TurnTimeout)
	assert.Equal(t, 16, cfg.Media.MaxMB)
	assert.True(t, cfg.OCR.Enabled)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-6)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate_Failures(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LOG_FORMAT", "xml")
	t.Setenv("PUBLIC_BASE_URL", "bot.example.com")
	t.Setenv("DB_DRIVER", "mongo")

	err := LoadConfig().Validate()
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeConfig))
	assert.ErrorIs(t, err, ErrInvalidInput)
	for _, field := range []string{"OPENAI_API_KEY", "LOG_FORMAT", "PUBLIC_BASE_URL", "DB_DRIVER"} {
		assert.Contains(t, err.Error(), field)
	}
}

func TestConfigValidate_MemoryNeedsNoDSN(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk")
	cfg := LoadConfig()
	cfg.Database.Driver = "memory"
	cfg.Database.DSN = ""
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
}

func TestConfigValidate_RedisLockOutlivesTurn(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk")
	cfg := LoadConfig()
	cfg.Database.Driver = "memory"
	cfg.Server.TurnTimeout = 60 * time.Second
	cfg.Redis.LockTTL = 30 * time.Second
	cfg.Redis.URL = ""

	assert.NoError(t, cfg.Validate())

	cfg.Redis.URL = "redis://localhost:6379/0"
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, HasCode(err, CodeConfig))
	assert.Contains(t, err.Error(), "REDIS_LOCK_TTL")

	cfg.Redis.LockTTL = 60 * time.Second
	assert.Error(t, cfg.Validate())

	cfg.Redis.LockTTL = 90 * time.Second
	assert.NoError(t, cfg.Validate())
}

func TestValidatorRules(t *testing.T) {
	name := "  "
	v := NewValidator().
		Field("name", &name, Required).
		Field("qty", -1.0, Positive).
		Field("note", "abcdef", MaxLength(3)).
		Field("kind", "TEXT", OneOf("TEXT", "IMAGE")).
		Field("url", "https://x.example", AbsoluteURL)

	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)
	assert.True(t, IsValidationError(v.Error()))
	assert.Nil(t, NewValidator().Error())
}

func TestAppError(t *testing.T) {
	cause := errors.New("timeout")
	err := ExtractionFailed(cause)
	assert.Equal(t, "EXTRACTION_FAILED: could not extract order: timeout", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(WrapError(err, "turn"), CodeExtractionFailed))
	assert.False(t, HasCode(cause, CodeExtractionFailed))
	assert.Nil(t, WrapError(nil, "x"))
}

func TestContextValues(t *testing.T) {
	ctx := WithIdentity(WithRequestID(context.Background(), "req-1"), "whatsapp:+1")
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "whatsapp:+1", IdentityFromContext(ctx))
	assert.Empty(t, RequestIDFromContext(context.Background()))

	c, cancel := WithTimeout(ctx, 0)
	defer cancel()
	_, ok := c.Deadline()
	assert.False(t, ok)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	NewLogger("warn", "json", &buf).Info("dropped")
	assert.Empty(t, buf.String())

	NewLogger("debug", "json", &buf).Debug("turn.ok", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"turn.ok"`)

	buf.Reset()
	NewLogger("info", "text", &buf).Info("turn.ok")
	assert.Contains(t, buf.String(), "msg=turn.ok")

	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}
