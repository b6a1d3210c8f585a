package config

import (
	"testing"
	"time"

	"symposium/internal/tester"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "APP_ENV", "LLM_PROVIDER", "LLM_MODEL", "GEMINI_API_KEY", "GOOGLE_API_KEY",
		"GROQ_API_KEY", "LLM_RPS", "LLM_BURST", "DISCUSSION_REQUIRE_MODERATOR",
		"DISCUSSION_MAX_ATTEMPTS", "DISCUSSION_RETRY_DELAY", "ROSTER_PATH", "ROSTER_PG_DSN",
		"AVATAR_MINIO_ENDPOINT", "AVATAR_S3_ENDPOINT", "AVATAR_S3_USE_SSL", "SESSION_CAPACITY", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadArgs(nil)
	tester.NoErr(t, err)
	tester.Eq(t, cfg.Port, ":8081")
	tester.Eq(t, cfg.Env, "local")
	tester.Eq(t, cfg.LLM.Provider, "fake")
	tester.Eq(t, cfg.Discussion.MaxAttempts, 3)
	tester.Eq(t, cfg.Discussion.RetryDelay, 2*time.Second)
	tester.False(t, cfg.Discussion.RequireModerator)
	tester.False(t, cfg.Avatar.Enabled)
	tester.Eq(t, cfg.SessionCapacity, 256)
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("DISCUSSION_REQUIRE_MODERATOR", "true")
	t.Setenv("DISCUSSION_RETRY_DELAY", "250")
	t.Setenv("LLM_RPS", "1.5")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("AVATAR_S3_ENDPOINT", "s3.example.com")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, ,https://b.test")

	cfg, err := LoadArgs(nil)
	tester.NoErr(t, err)
	tester.Eq(t, cfg.Port, ":9090")
	tester.Eq(t, cfg.LLM.Provider, "gemini")
	tester.Eq(t, cfg.LLM.APIKey, "g-key")
	tester.Eq(t, cfg.LLM.RPS, 1.5)
	tester.True(t, cfg.Discussion.RequireModerator)
	tester.Eq(t, cfg.Discussion.RetryDelay, 250*time.Millisecond)
	tester.True(t, cfg.Avatar.Enabled)
	tester.True(t, cfg.Avatar.UseSSL)
	tester.Eq(t, cfg.AllowedOrigins, []string{"https://a.test", "https://b.test"})
}

func TestLoadPortFlag(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadArgs([]string{"-port", ":7000"})
	tester.NoErr(t, err)
	tester.Eq(t, cfg.Port, ":7000")
}

func TestEnvDurationFormats(t *testing.T) {
	t.Setenv("X_DELAY", "1s")
	tester.Eq(t, envDuration("X_DELAY", 0), time.Second)
	t.Setenv("X_DELAY", "junk")
	tester.Eq(t, envDuration("X_DELAY", time.Minute), time.Minute)
}
