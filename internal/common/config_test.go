package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout)
	assert.True(t, cfg.LLM.Lenient)
	assert.Equal(t, 3, cfg.KB.TopK)
	assert.Equal(t, 2, cfg.Worker.Workers)
	assert.Equal(t, 1, cfg.Worker.EvalConcurrency)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/lawcheck")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("OPENAI_MODEL", "gpt-4o")
	t.Setenv("OPENAI_TIMEOUT", "90s")
	t.Setenv("EVAL_CONCURRENCY", "4")
	t.Setenv("OPENAI_LENIENT_JUDGMENT", "false")

	cfg := LoadConfig()
	assert.Equal(t, "postgres://u:p@localhost:5432/lawcheck", cfg.Database.DSN)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, 90*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 4, cfg.Worker.EvalConcurrency)
	assert.False(t, cfg.LLM.Lenient)
}

func TestValidate(t *testing.T) {
	t.Setenv("DB_URL", "postgres://u:p@localhost:5432/lawcheck")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := LoadConfig()
	require.NoError(t, cfg.Validate())

	cfg.Database.DSN = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_URL")
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_INT", "42")
	t.Setenv("X_BAD_INT", "nope")
	t.Setenv("X_DUR", "2m")

	assert.Equal(t, 42, getEnvAsInt("X_INT", 7))
	assert.Equal(t, 7, getEnvAsInt("X_BAD_INT", 7))
	assert.Equal(t, 7, getEnvAsInt("X_MISSING", 7))
	assert.Equal(t, 2*time.Minute, getEnvAsDuration("X_DUR", time.Second))
	assert.Equal(t, "fallback", getEnv("X_MISSING", "fallback"))
}
