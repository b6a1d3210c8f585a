package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	llmclient "symposium/internal/llmClient"
)

type Config struct {
	Port            string
	Env             string
	SessionCapacity int
	AllowedOrigins  []string
	LLM             LLMConfig
	Discussion      DiscussionConfig
	Roster          RosterConfig
	Avatar          AvatarConfig
}

type LLMConfig struct {
	Provider string
	Model    string
	APIKey   string
	RPS      float64
	Burst    int
}

type DiscussionConfig struct {
	RequireModerator bool
	MaxAttempts      int
	RetryDelay       time.Duration
}

type RosterConfig struct {
	Path        string
	PostgresDSN string
}

type AvatarConfig struct {
	Enabled   bool
	BaseURL   string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
	CacheSize int
}

// CanUseS3 reports whether enough settings are present to presign from S3.
func (c AvatarConfig) CanUseS3() bool {
	return c.Enabled &&
		strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

// Load reads .env, the -port flag and the environment.
func Load() (*Config, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if envPort := os.Getenv("PORT"); envPort != "" {
		if strings.HasPrefix(envPort, ":") {
			*port = envPort
		} else {
			*port = ":" + envPort
		}
	}

	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	if env == "" {
		env = "local"
	}

	return &Config{
		Port:            *port,
		Env:             env,
		SessionCapacity: envInt("SESSION_CAPACITY", 256),
		AllowedOrigins:  envList("CORS_ALLOWED_ORIGINS"),
		LLM:             loadLLMConfig(),
		Discussion: DiscussionConfig{
			RequireModerator: envBool("DISCUSSION_REQUIRE_MODERATOR", false),
			MaxAttempts:      envInt("DISCUSSION_MAX_ATTEMPTS", 3),
			RetryDelay:       envDuration("DISCUSSION_RETRY_DELAY", 2*time.Second),
		},
		Roster: RosterConfig{
			Path:        strings.TrimSpace(os.Getenv("ROSTER_PATH")),
			PostgresDSN: strings.TrimSpace(os.Getenv("ROSTER_PG_DSN")),
		},
		Avatar: loadAvatarConfig(env),
	}, nil
}

func loadLLMConfig() LLMConfig {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if provider == "" {
		switch {
		case strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) != "":
			provider = llmclient.ProviderGemini
		case strings.TrimSpace(os.Getenv("GROQ_API_KEY")) != "":
			provider = llmclient.ProviderGroq
		default:
			provider = llmclient.ProviderFake
		}
	}
	var key string
	switch provider {
	case llmclient.ProviderGemini:
		key = firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")))
	case llmclient.ProviderGroq:
		key = strings.TrimSpace(os.Getenv("GROQ_API_KEY"))
	}
	return LLMConfig{
		Provider: provider,
		Model:    strings.TrimSpace(os.Getenv("LLM_MODEL")),
		APIKey:   key,
		RPS:      envFloat("LLM_RPS", 0),
		Burst:    envInt("LLM_BURST", 1),
	}
}

func loadAvatarConfig(env string) AvatarConfig {
	endpoint := resolveAvatarEndpoint(env)
	return AvatarConfig{
		Enabled:   endpoint != "",
		BaseURL:   strings.TrimSpace(os.Getenv("AVATAR_BASE_URL")),
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("AVATAR_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("AVATAR_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("AVATAR_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("AVATAR_S3_BUCKET")), "symposium-avatars"),
		Prefix:    strings.TrimSpace(os.Getenv("AVATAR_S3_PREFIX")),
		UseSSL:    resolveAvatarUseSSL(env),
		CacheSize: envInt("AVATAR_CACHE_SIZE", 256),
	}
}

func resolveAvatarEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("AVATAR_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("AVATAR_S3_ENDPOINT"))
}

func resolveAvatarUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	return envBool("AVATAR_S3_USE_SSL", true)
}

func envList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func envBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return def
	}
	return v
}

func envFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return def
	}
	return v
}

// envDuration accepts Go durations ("1500ms") or plain milliseconds.
func envDuration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
		return d
	}
	if ms, err := strconv.Atoi(raw); err == nil && ms >= 0 {
		return time.Duration(ms) * time.Millisecond
	}
	return def
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
