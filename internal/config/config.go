package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the task bot service.
type Config struct {
	BindAddr         string
	MetricsNamespace string
	ShutdownTimeout  time.Duration

	TelegramBotToken    string
	TelegramAPIBaseURL  string
	TelegramPollTimeout time.Duration

	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	TasksAPIBaseURL string

	AssemblyAIAPIKey string

	DatabaseURL string

	FuzzyMatchThreshold int

	ExternalCallTimeout time.Duration
}

// Load reads environment variables, applies defaults and fails fast on
// missing credentials.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:            envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:    envOrDefault("APP_METRICS_NAMESPACE", "taskpal"),
		TelegramBotToken:    stringFromEnv("TELEGRAM_BOT_TOKEN"),
		TelegramAPIBaseURL:  envOrDefault("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
		GeminiAPIKey:        stringFromEnv("GEMINI_API_KEY"),
		GeminiBaseURL:       envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiModel:         envOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		TasksAPIBaseURL:     envOrDefault("TASKS_API_BASE_URL", "http://localhost:3000/api"),
		AssemblyAIAPIKey:    stringFromEnv("ASSEMBLYAI_API_KEY"),
		DatabaseURL:         stringFromEnv("DATABASE_URL"),
		FuzzyMatchThreshold: 82,
		ShutdownTimeout:     15 * time.Second,
		ExternalCallTimeout: 30 * time.Second,
		TelegramPollTimeout: 50 * time.Second,
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.ExternalCallTimeout, err = durationFromEnv("EXTERNAL_CALL_TIMEOUT", cfg.ExternalCallTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TelegramPollTimeout, err = durationFromEnv("TELEGRAM_POLL_TIMEOUT", cfg.TelegramPollTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.FuzzyMatchThreshold, err = intFromEnv("FUZZY_MATCH_THRESHOLD", cfg.FuzzyMatchThreshold)
	if err != nil {
		return Config{}, err
	}

	if cfg.TelegramBotToken == "" {
		return Config{}, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY is not set")
	}
	if cfg.FuzzyMatchThreshold < 0 || cfg.FuzzyMatchThreshold > 100 {
		return Config{}, fmt.Errorf("FUZZY_MATCH_THRESHOLD must be within 0..100")
	}
	if cfg.ExternalCallTimeout < time.Second {
		return Config{}, fmt.Errorf("EXTERNAL_CALL_TIMEOUT must be at least 1s")
	}
	if cfg.TelegramPollTimeout < time.Second {
		return Config{}, fmt.Errorf("TELEGRAM_POLL_TIMEOUT must be at least 1s")
	}

	return cfg, nil
}

// HistoryEnabled reports whether the postgres conversation log is configured.
func (c Config) HistoryEnabled() bool { return c.DatabaseURL != "" }

// VoiceEnabled reports whether voice transcription is configured.
func (c Config) VoiceEnabled() bool { return c.AssemblyAIAPIKey != "" }

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func stringFromEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringFromEnv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringFromEnv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}
