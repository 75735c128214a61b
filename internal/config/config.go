package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Server settings
	Port        string
	SecretKey   string
	BaseURL     string // public base URL for share links; empty = derive from request
	FrontendURL string // where OAuth callbacks redirect after login

	// News API settings
	NewsAPIKey  string
	NewsPageSize int

	// Gemini settings
	GeminiAPIKey      string
	GeminiModel       string
	MaxGeminiRequests int // maximum Gemini requests per day (0 = unlimited)

	// Translation settings
	GoogleTranslateKey string
	OpenAIAPIKey       string

	// OAuth settings
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string

	// Share store settings
	ShareDBPath string // empty = in-memory store

	// RSS fallback settings
	SourcesConfigPath string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	NewsCacheTTL   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		Port:              "8080",
		GeminiModel:       "gemini-1.5-flash",
		NewsPageSize:      20,
		MaxGeminiRequests: 200,
		SourcesConfigPath: "configs/sources.yaml",
		RequestTimeout:    30 * time.Second,
		RetryAttempts:     2,
		RetryDelay:        2 * time.Second,
		NewsCacheTTL:      5 * time.Minute,
	}

	// Load from environment
	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.SecretKey = getEnvOrDefault("SECRET_KEY", "dev-secret-key")
	cfg.BaseURL = os.Getenv("BASE_URL")
	cfg.FrontendURL = getEnvOrDefault("FRONTEND_URL", "http://localhost:3000")

	cfg.NewsAPIKey = os.Getenv("NEWS_API_KEY")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GoogleTranslateKey = os.Getenv("GOOGLE_TRANSLATE_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.GitHubClientID = os.Getenv("GITHUB_CLIENT_ID")
	cfg.GitHubClientSecret = os.Getenv("GITHUB_CLIENT_SECRET")

	cfg.ShareDBPath = os.Getenv("SHARE_DB_PATH")
	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}

	cfg.NewsPageSize = getEnvIntOrDefault("NEWS_PAGE_SIZE", cfg.NewsPageSize)
	cfg.MaxGeminiRequests = getEnvIntOrDefault("MAX_GEMINI_REQUESTS", cfg.MaxGeminiRequests)
	cfg.RetryAttempts = getEnvIntOrDefault("RETRY_ATTEMPTS", cfg.RetryAttempts)

	if v := getEnvIntOrDefault("REQUEST_TIMEOUT_SECONDS", 0); v > 0 {
		cfg.RequestTimeout = time.Duration(v) * time.Second
	}
	if v := getEnvIntOrDefault("NEWS_CACHE_TTL_SECONDS", 0); v > 0 {
		cfg.NewsCacheTTL = time.Duration(v) * time.Second
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.NewsPageSize <= 0 || c.NewsPageSize > 100 {
		return fmt.Errorf("NEWS_PAGE_SIZE must be between 1 and 100")
	}
	// All external API keys are optional: the service degrades feature by
	// feature (no summaries, no translation, RSS fallback) instead of failing
	// to start.
	return nil
}

// SummarizeEnabled reports whether the Gemini summarizer is configured.
func (c *Config) SummarizeEnabled() bool {
	return c.GeminiAPIKey != ""
}

// TranslateEnabled reports whether a translation backend is configured.
func (c *Config) TranslateEnabled() bool {
	return c.GoogleTranslateKey != ""
}
