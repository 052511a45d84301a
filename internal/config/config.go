// Package config loads runtime settings from the environment and an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Feed settings
	FeedSource      string // "newsapi" or "rss"
	NewsAPIKey      string
	NewsAPIBaseURL  string
	FeedsConfigPath string
	PageSize        int

	// Summarizer settings
	Provider     string // "openai", "gemini" or "cohere"
	OpenAIAPIKey string
	OpenAIModel  string
	GeminiAPIKey string
	GeminiModel  string
	CohereAPIKey string
	CohereModel  string

	// Processing policy
	MinContentLength int
	MinSummaryLength int
	MaxInputChars    int
	CacheCapacity    int
	MaxConcurrency   int // 0 = one task per article
	WarmUp           bool

	// AI budget
	AIRequestsPerSecond float64
	MaxAIRequests       int // daily budget, 0 = unlimited

	// Scraper settings
	ScrapeMissing     bool
	ScrapeConcurrency int

	// Telegram settings
	TelegramToken  string
	TelegramChatID string

	// App settings
	HTTPAddr       string
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
}

// Load reads .env when present, then the process environment. It fails only
// on malformed values; missing secrets are reported by Warnings.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		FeedSource:      strings.ToLower(getEnvOrDefault("FEED_SOURCE", "newsapi")),
		NewsAPIKey:      os.Getenv("NEWSAPI_KEY"),
		NewsAPIBaseURL:  getEnvOrDefault("NEWSAPI_BASE_URL", "https://newsapi.org/v2"),
		FeedsConfigPath: getEnvOrDefault("FEEDS_CONFIG_PATH", "configs/feeds.yaml"),
		PageSize:        getEnvIntOrDefault("PAGE_SIZE", 10),

		Provider:     strings.ToLower(getEnvOrDefault("SUMMARIZER_PROVIDER", "openai")),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  getEnvOrDefault("OPENAI_MODEL", "gpt-4"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnvOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		CohereAPIKey: os.Getenv("COHERE_API_KEY"),
		CohereModel:  getEnvOrDefault("COHERE_MODEL", "command-r"),

		MinContentLength: getEnvIntOrDefault("MIN_CONTENT_LENGTH", 50),
		MinSummaryLength: getEnvIntOrDefault("MIN_SUMMARY_LENGTH", 50),
		MaxInputChars:    getEnvIntOrDefault("MAX_INPUT_CHARS", 1000),
		CacheCapacity:    getEnvIntOrDefault("CACHE_CAPACITY", 100),
		MaxConcurrency:   getEnvIntOrDefault("MAX_CONCURRENCY", 0),
		WarmUp:           getEnvBoolOrDefault("WARM_UP", true),

		AIRequestsPerSecond: getEnvFloatOrDefault("AI_REQUESTS_PER_SECOND", 0),
		MaxAIRequests:       getEnvIntOrDefault("MAX_AI_REQUESTS", 0),

		ScrapeMissing:     getEnvBoolOrDefault("SCRAPE_MISSING", false),
		ScrapeConcurrency: getEnvIntOrDefault("SCRAPE_CONCURRENCY", 4),

		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: os.Getenv("TELEGRAM_CHAT_ID"),

		HTTPAddr:       getEnvOrDefault("HTTP_ADDR", ":8080"),
		Debug:          getEnvBoolOrDefault("DEBUG", false),
		RequestTimeout: getEnvDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		RetryAttempts:  getEnvIntOrDefault("RETRY_ATTEMPTS", 3),
		RetryDelay:     getEnvDurationOrDefault("RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Provider {
	case "openai", "gemini", "cohere":
	default:
		return &ConfigError{Field: "SUMMARIZER_PROVIDER", Message: fmt.Sprintf("unknown provider %q", c.Provider)}
	}
	switch c.FeedSource {
	case "newsapi", "rss":
	default:
		return &ConfigError{Field: "FEED_SOURCE", Message: fmt.Sprintf("unknown feed source %q", c.FeedSource)}
	}

	positive := []struct {
		field string
		value int
	}{
		{"PAGE_SIZE", c.PageSize},
		{"MIN_CONTENT_LENGTH", c.MinContentLength},
		{"MIN_SUMMARY_LENGTH", c.MinSummaryLength},
		{"MAX_INPUT_CHARS", c.MaxInputChars},
		{"CACHE_CAPACITY", c.CacheCapacity},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return &ConfigError{Field: p.field, Message: "must be positive"}
		}
	}

	if c.MaxConcurrency < 0 {
		return &ConfigError{Field: "MAX_CONCURRENCY", Message: "must not be negative"}
	}
	if c.MaxAIRequests < 0 {
		return &ConfigError{Field: "MAX_AI_REQUESTS", Message: "must not be negative"}
	}
	if c.AIRequestsPerSecond < 0 {
		return &ConfigError{Field: "AI_REQUESTS_PER_SECOND", Message: "must not be negative"}
	}
	if c.RequestTimeout <= 0 {
		return &ConfigError{Field: "REQUEST_TIMEOUT", Message: "must be positive"}
	}
	return nil
}

// Warnings lists missing secrets. Requests depending on them fail per call.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.FeedSource == "newsapi" && c.NewsAPIKey == "" {
		warnings = append(warnings, "NEWSAPI_KEY is not set, news requests will return no articles")
	}
	if c.providerAPIKey() == "" {
		warnings = append(warnings, c.ProviderAPIKeyVar()+" is not set, summaries will fail")
	}
	if (c.TelegramToken == "") != (c.TelegramChatID == "") {
		warnings = append(warnings, "TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must both be set to publish digests")
	}
	return warnings
}

// ProviderAPIKeyVar names the environment variable holding the selected provider's key.
func (c *Config) ProviderAPIKeyVar() string {
	switch c.Provider {
	case "gemini":
		return "GEMINI_API_KEY"
	case "cohere":
		return "COHERE_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func (c *Config) providerAPIKey() string {
	switch c.Provider {
	case "gemini":
		return c.GeminiAPIKey
	case "cohere":
		return c.CohereAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// TelegramEnabled reports whether digests can be published.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != ""
}

type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
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

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
