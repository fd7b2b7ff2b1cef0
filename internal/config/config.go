package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendREST = "rest"
	BackendSDK  = "sdk"
)

type Config struct {
	GeminiAPIKey     string
	GeminiBackend    string
	GeminiBaseURL    string
	GeminiAPIVersion string

	TelegramToken string
	WebAddr       string

	LogLevel string
	Debug    bool

	PreferIPv4            bool
	HTTPTimeout           time.Duration
	MaxConcurrent         int
	SessionTTL            time.Duration
	ScriptDebounce        time.Duration
	GenerateRatePerMinute int

	FormDefaults FormDefaults
}

// StartupError means the process must not start serving.
type StartupError struct {
	Missing string
	Err     error
}

func (e *StartupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("startup configuration: %v", e.Err)
	}
	return e.Missing + " is required"
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// Load reads the environment. The Gemini credential is mandatory;
// GEMINI_API_KEY wins over API_KEY.
func Load() (Config, error) {
	cfg := Config{
		GeminiBackend:         strings.ToLower(getEnv("GEMINI_BACKEND", BackendREST)),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		GeminiAPIVersion:      getEnv("GEMINI_API_VERSION", "v1beta"),
		WebAddr:               getEnv("WEB_ADDR", ":8080"),
		LogLevel:              strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Debug:                 getEnvBool("DEBUG", false),
		PreferIPv4:            getEnvBool("PREFER_IPV4", true),
		HTTPTimeout:           time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,
		MaxConcurrent:         getEnvInt("MAX_CONCURRENT", 4),
		SessionTTL:            time.Duration(getEnvInt("SESSION_TTL_MINUTES", 60)) * time.Minute,
		ScriptDebounce:        time.Duration(getEnvInt("SCRIPT_DEBOUNCE_MS", 1200)) * time.Millisecond,
		GenerateRatePerMinute: getEnvInt("GENERATE_RATE_PER_MINUTE", 10),
	}

	cfg.GeminiAPIKey = getEnv("GEMINI_API_KEY", strings.TrimSpace(os.Getenv("API_KEY")))
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))

	if cfg.GeminiAPIKey == "" {
		return Config{}, &StartupError{Missing: "GEMINI_API_KEY"}
	}

	switch cfg.GeminiBackend {
	case BackendREST, BackendSDK:
	default:
		return Config{}, &StartupError{Err: fmt.Errorf("unknown GEMINI_BACKEND %q", cfg.GeminiBackend)}
	}

	defaults, err := LoadFormDefaults(strings.TrimSpace(os.Getenv("FORM_DEFAULTS_FILE")))
	if err != nil {
		return Config{}, &StartupError{Err: err}
	}
	cfg.FormDefaults = defaults

	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.ScriptDebounce <= 0 {
		cfg.ScriptDebounce = 1200 * time.Millisecond
	}
	if cfg.GenerateRatePerMinute < 1 {
		cfg.GenerateRatePerMinute = 1
	}

	return cfg, nil
}

// RequireTelegram is checked by the bot only.
func (c Config) RequireTelegram() error {
	if c.TelegramToken == "" {
		return &StartupError{Missing: "TELEGRAM_BOT_TOKEN"}
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
