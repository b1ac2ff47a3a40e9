package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "deterministic")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 2, cfg.EncodeWorkers)
	assert.Equal(t, 0.70, cfg.SocialThreshold)
	assert.Equal(t, 0.60, cfg.MetaThreshold)
	assert.Equal(t, 0.55, cfg.AcademicThreshold)
	assert.Equal(t, 5, cfg.ContextKeywords)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("PORT", "9000")
	t.Setenv("ENCODE_WORKERS", "4")
	t.Setenv("CONTEXT_TTL", "1h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 4, cfg.EncodeWorkers)
	assert.Equal(t, time.Hour, cfg.ContextTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestValidate_MissingProviderKey(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "deterministic")
	t.Setenv("ENCODE_WORKERS", "0")
	t.Setenv("SOCIAL_THRESHOLD", "1.5")
	t.Setenv("CONTEXT_KEYWORDS", "0")

	_, err := Load()
	require.Error(t, err)
	for _, fragment := range []string{"ENCODE_WORKERS", "SOCIAL_THRESHOLD", "CONTEXT_KEYWORDS"} {
		assert.Contains(t, err.Error(), fragment)
	}
}

func TestLoad_ZeroBurstDisablesRateLimiting(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "deterministic")
	t.Setenv("RATE_LIMIT_BURST", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RateLimitBurst)
}

func TestValidate_RateLimitIntervalOnlyCheckedWhenEnabled(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "deterministic")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_INTERVAL", "0s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RATE_LIMIT_INTERVAL")

	t.Setenv("RATE_LIMIT_BURST", "-1")
	_, err = Load()
	require.NoError(t, err)
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "deterministic")
	t.Setenv("ACADEMIC_THRESHOLD", "0.9")
	t.Setenv("META_THRESHOLD", "0.6")
	t.Setenv("SOCIAL_THRESHOLD", "0.7")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thresholds")
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/chatbot", SQLiteDBName: "embeddings.db"}
	assert.Equal(t, "/var/lib/chatbot/embeddings.db", cfg.SQLitePath())
}

func TestValidate_MetricsCredentialsPaired(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "deterministic")
	t.Setenv("METRICS_USERNAME", "admin")
	t.Setenv("METRICS_PASSWORD", "")

	_, err := Load()
	require.Error(t, err)
}
