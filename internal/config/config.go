package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full runtime configuration tree.
type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Google      GoogleConfig
	OpenAI      OpenAIConfig
	Generation  GenerationConfig
	Storage     StorageConfig
	RateLimit   RateLimitConfig
	Cors        CORSConfig
	Monitoring  MonitoringConfig
	Diagnostics DiagnosticsConfig
}

// AppConfig captures application-level settings.
type AppConfig struct {
	Name    string
	Env     string
	Version string
	Port    string
	BaseURL string
}

// DatabaseConfig stores episode store connectivity info.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// RedisConfig stores redis connectivity info. An empty Addr disables redis;
// rate limiting falls back to memory and document text is not cached.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	TLS      bool
	TextTTL  time.Duration
}

// GoogleConfig holds the OAuth client setup for the Docs integration.
type GoogleConfig struct {
	CredentialsPath string
	TokenPath       string
	RedirectURL     string
	StateSecret     string
	StateTTL        time.Duration
}

// OpenAIConfig holds models and credentials for dialogue + speech.
type OpenAIConfig struct {
	APIKey           string
	BaseURL          string
	ChatModel        string
	SpeechModel      string
	DialogueAttempts int
}

// GenerationConfig tunes the episode pipeline.
type GenerationConfig struct {
	Concurrency int
	TTSPacing   time.Duration
	Timeout     time.Duration
}

// StorageConfig governs audio files on disk.
type StorageConfig struct {
	AudioDir       string
	AudioRetention time.Duration
	MaxPDFBytes    int64
}

// RateLimitConfig manages throttling parameters.
type RateLimitConfig struct {
	Enabled            bool
	RequestsPerMinute  int
	GenerationsPerHour int
	Burst              int
	RedisPrefix        string
}

// CORSConfig declares cross-origin policy.
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	AllowCredentials bool
}

// MonitoringConfig adds observability tunables.
type MonitoringConfig struct {
	PrometheusEnabled bool
	SentryDSN         string
	SentrySampleRate  float64
}

// DiagnosticsConfig governs debug helpers.
type DiagnosticsConfig struct {
	EnableDebugLogs bool
	MaxLogLines     int
	OperatorToken   string
}

// Load reads from environment (optionally .env) and builds Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	baseURL := getenv("BASE_URL", "http://localhost:7860")

	cfg := &Config{
		App: AppConfig{
			Name:    getenv("APP_NAME", "slash-podcast"),
			Env:     getenv("APP_ENV", "development"),
			Version: getenv("APP_VERSION", "0.1.0"),
			Port:    getenv("PORT", "7860"),
			BaseURL: baseURL,
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getenv("DB_DRIVER", "sqlite")),
			DSN:             getenv("DB_DSN", "file:podcasts.db?_pragma=busy_timeout(5000)"),
			MaxOpenConns:    getInt("DB_MAX_OPEN", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE", 5),
			ConnMaxLifetime: time.Duration(getInt("DB_CONN_MAX_LIFETIME_MIN", 30)) * time.Minute,
			AutoMigrate:     getBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getenv("REDIS_ADDR", ""),
			Username: getenv("REDIS_USER", ""),
			Password: getenv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			TLS:      getBool("REDIS_TLS", false),
			TextTTL:  time.Duration(getInt("REDIS_TEXT_TTL_MIN", 60)) * time.Minute,
		},
		Google: GoogleConfig{
			CredentialsPath: getenv("GOOGLE_CREDENTIALS_PATH", "credentials.json"),
			TokenPath:       getenv("GOOGLE_TOKEN_PATH", "token.json"),
			RedirectURL:     getenv("GOOGLE_REDIRECT_URL", baseURL+"/api/oauth2callback"),
			StateSecret:     getenv("OAUTH_STATE_SECRET", "change-me"),
			StateTTL:        time.Duration(getInt("OAUTH_STATE_TTL_MIN", 10)) * time.Minute,
		},
		OpenAI: OpenAIConfig{
			APIKey:           getenv("OPENAI_API_KEY", ""),
			BaseURL:          getenv("OPENAI_BASE_URL", ""),
			ChatModel:        getenv("OPENAI_CHAT_MODEL", "gpt-4o"),
			SpeechModel:      getenv("OPENAI_SPEECH_MODEL", "tts-1"),
			DialogueAttempts: getInt("OPENAI_DIALOGUE_ATTEMPTS", 3),
		},
		Generation: GenerationConfig{
			Concurrency: getInt("GENERATION_CONCURRENCY", 20),
			TTSPacing:   time.Duration(getInt("TTS_PACING_MS", 200)) * time.Millisecond,
			Timeout:     time.Duration(getInt("GENERATION_TIMEOUT_MIN", 15)) * time.Minute,
		},
		Storage: StorageConfig{
			AudioDir:       getenv("AUDIO_DIR", "./data/audio"),
			AudioRetention: time.Duration(getInt("AUDIO_RETENTION_HOURS", 24)) * time.Hour,
			MaxPDFBytes:    int64(getInt("MAX_PDF_MB", 25)) * 1024 * 1024,
		},
		RateLimit: RateLimitConfig{
			Enabled:            getBool("RATE_LIMIT_ENABLED", true),
			RequestsPerMinute:  getInt("RATE_LIMIT_PER_MIN", 60),
			GenerationsPerHour: getInt("RATE_LIMIT_GENERATIONS_PER_HOUR", 10),
			Burst:              getInt("RATE_LIMIT_BURST", 5),
			RedisPrefix:        getenv("RATE_LIMIT_PREFIX", "ratelimit"),
		},
		Cors: CORSConfig{
			AllowedOrigins:   splitAndTrim(getenv("CORS_ORIGINS", "http://localhost:3000,http://localhost:7860")),
			AllowedMethods:   splitAndTrim(getenv("CORS_METHODS", "GET,POST,DELETE,OPTIONS")),
			AllowedHeaders:   splitAndTrim(getenv("CORS_HEADERS", "Authorization,Content-Type,Accept,X-Requested-With")),
			AllowCredentials: getBool("CORS_ALLOW_CREDENTIALS", true),
		},
		Monitoring: MonitoringConfig{
			PrometheusEnabled: getBool("PROMETHEUS_ENABLED", true),
			SentryDSN:         getenv("SENTRY_DSN", ""),
			SentrySampleRate:  getFloat("SENTRY_SAMPLE_RATE", 0.2),
		},
		Diagnostics: DiagnosticsConfig{
			EnableDebugLogs: getBool("ENABLE_DEBUG_LOGS", false),
			MaxLogLines:     getInt("DEBUG_LOG_LIMIT", 200),
			OperatorToken:   getenv("OPERATOR_TOKEN", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported db driver %s", c.Database.Driver)
	}
	if c.Google.StateSecret == "" {
		return fmt.Errorf("oauth state secret must be provided")
	}
	if c.Generation.Concurrency <= 0 {
		return fmt.Errorf("generation concurrency must be positive")
	}
	if c.Storage.MaxPDFBytes <= 0 {
		return fmt.Errorf("max pdf size must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func getFloat(key string, def float64) float64 {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
