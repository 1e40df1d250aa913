package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every tunable of the service. All values come from the
// environment (optionally seeded from a .env file) and carry defaults
// that work out of the box.
type Config struct {
	Port     string
	GinMode  string
	DevMode  bool
	DataDir  string
	Database string
	LogLevel string

	// Fetcher
	FetchTimeout      time.Duration
	FetchMaxRetries   int
	FetchBackoffBase  time.Duration
	FetchBackoffMax   time.Duration
	FetchMaxBodyBytes int64
	FetchPerSecond    float64 // outbound politeness limit, 0 disables

	// Caches
	FetchCacheTTL     time.Duration
	FetchCacheSize    int
	ResearchCacheTTL  time.Duration
	ResearchCacheSize int

	// Keyword research
	KeywordDefaultLimit int
	KeywordMaxLimit     int

	SuggestBaseURL  string
	SuggestTimeout  time.Duration
	SuggestMaxCalls int
	SuggestWindow   time.Duration

	PremiumAPIBaseURL string
	PremiumAPIKey     string
	PremiumMaxCalls   int
	PremiumWindow     time.Duration

	FreemiumAPIBaseURL string
	FreemiumAPIKey     string
	FreemiumMaxCalls   int
	FreemiumWindow     time.Duration

	ProviderTimeout time.Duration

	// Inbound rate limiting
	RateLimitPerSecond float64
	RateLimitBurst     float64
}

// Default returns the configuration used when no environment overrides
// are present.
func Default() *Config {
	return &Config{
		Port:     "8082",
		GinMode:  "release",
		DevMode:  false,
		DataDir:  "data",
		Database: "data/seo.db",
		LogLevel: "info",

		FetchTimeout:      15 * time.Second,
		FetchMaxRetries:   3,
		FetchBackoffBase:  time.Second,
		FetchBackoffMax:   8 * time.Second,
		FetchMaxBodyBytes: 10 << 20,
		FetchPerSecond:    4,

		FetchCacheTTL:     30 * time.Minute,
		FetchCacheSize:    1000,
		ResearchCacheTTL:  time.Hour,
		ResearchCacheSize: 500,

		KeywordDefaultLimit: 10,
		KeywordMaxLimit:     50,

		SuggestBaseURL:  "https://suggestqueries.google.com/complete/search",
		SuggestTimeout:  5 * time.Second,
		SuggestMaxCalls: 30,
		SuggestWindow:   time.Minute,

		PremiumMaxCalls: 10,
		PremiumWindow:   time.Minute,

		FreemiumMaxCalls: 20,
		FreemiumWindow:   time.Minute,

		ProviderTimeout: 10 * time.Second,

		RateLimitPerSecond: 2,
		RateLimitBurst:     5,
	}
}

// Load reads the .env files the way local development expects, applies
// environment overrides on top of the defaults and validates the result.
func Load() (*Config, error) {
	loadEnvFiles()

	cfg := Default()
	cfg.Port = envString("PORT", cfg.Port)
	cfg.GinMode = envString("GIN_MODE", cfg.GinMode)
	cfg.DevMode = envBool("DEV_MODE", cfg.DevMode)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.Database = envString("DATABASE_PATH", cfg.Database)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)

	cfg.FetchTimeout = envDuration("FETCH_TIMEOUT", cfg.FetchTimeout)
	cfg.FetchMaxRetries = envInt("FETCH_MAX_RETRIES", cfg.FetchMaxRetries)
	cfg.FetchBackoffBase = envDuration("FETCH_BACKOFF_BASE", cfg.FetchBackoffBase)
	cfg.FetchBackoffMax = envDuration("FETCH_BACKOFF_MAX", cfg.FetchBackoffMax)
	cfg.FetchMaxBodyBytes = int64(envInt("FETCH_MAX_BODY_BYTES", int(cfg.FetchMaxBodyBytes)))
	cfg.FetchPerSecond = envFloat("FETCH_PER_SECOND", cfg.FetchPerSecond)

	cfg.FetchCacheTTL = envDuration("FETCH_CACHE_TTL", cfg.FetchCacheTTL)
	cfg.FetchCacheSize = envInt("FETCH_CACHE_SIZE", cfg.FetchCacheSize)
	cfg.ResearchCacheTTL = envDuration("RESEARCH_CACHE_TTL", cfg.ResearchCacheTTL)
	cfg.ResearchCacheSize = envInt("RESEARCH_CACHE_SIZE", cfg.ResearchCacheSize)

	cfg.KeywordDefaultLimit = envInt("KEYWORD_DEFAULT_LIMIT", cfg.KeywordDefaultLimit)
	cfg.KeywordMaxLimit = envInt("KEYWORD_MAX_LIMIT", cfg.KeywordMaxLimit)

	cfg.SuggestBaseURL = envString("SUGGEST_BASE_URL", cfg.SuggestBaseURL)
	cfg.SuggestTimeout = envDuration("SUGGEST_TIMEOUT", cfg.SuggestTimeout)
	cfg.SuggestMaxCalls = envInt("SUGGEST_MAX_CALLS", cfg.SuggestMaxCalls)
	cfg.SuggestWindow = envDuration("SUGGEST_WINDOW", cfg.SuggestWindow)

	cfg.PremiumAPIBaseURL = envString("PREMIUM_API_BASE_URL", cfg.PremiumAPIBaseURL)
	cfg.PremiumAPIKey = envString("PREMIUM_API_KEY", cfg.PremiumAPIKey)
	cfg.PremiumMaxCalls = envInt("PREMIUM_MAX_CALLS", cfg.PremiumMaxCalls)
	cfg.PremiumWindow = envDuration("PREMIUM_WINDOW", cfg.PremiumWindow)

	cfg.FreemiumAPIBaseURL = envString("FREEMIUM_API_BASE_URL", cfg.FreemiumAPIBaseURL)
	cfg.FreemiumAPIKey = envString("FREEMIUM_API_KEY", cfg.FreemiumAPIKey)
	cfg.FreemiumMaxCalls = envInt("FREEMIUM_MAX_CALLS", cfg.FreemiumMaxCalls)
	cfg.FreemiumWindow = envDuration("FREEMIUM_WINDOW", cfg.FreemiumWindow)

	cfg.ProviderTimeout = envDuration("PROVIDER_TIMEOUT", cfg.ProviderTimeout)

	cfg.RateLimitPerSecond = envFloat("RATE_LIMIT_PER_SECOND", cfg.RateLimitPerSecond)
	cfg.RateLimitBurst = envFloat("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles tries .env.development first (local development), then
// the regular .env. Missing files are fine, the environment wins anyway.
func loadEnvFiles() {
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found, using environment variables")
		}
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port cannot be empty")
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}
	if c.Database == "" {
		return fmt.Errorf("database path cannot be empty")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if c.FetchMaxRetries < 0 {
		return fmt.Errorf("fetch max retries cannot be negative")
	}
	if c.FetchBackoffBase <= 0 {
		return fmt.Errorf("fetch backoff base must be positive")
	}
	if c.FetchBackoffMax > 0 && c.FetchBackoffBase > c.FetchBackoffMax {
		return fmt.Errorf("fetch backoff base (%s) cannot exceed backoff max (%s)", c.FetchBackoffBase, c.FetchBackoffMax)
	}
	if c.FetchMaxBodyBytes <= 0 {
		return fmt.Errorf("fetch max body bytes must be positive")
	}
	if c.FetchPerSecond < 0 {
		return fmt.Errorf("fetch rate cannot be negative")
	}
	if c.FetchCacheSize <= 0 || c.ResearchCacheSize <= 0 {
		return fmt.Errorf("cache sizes must be positive")
	}
	if c.FetchCacheTTL <= 0 || c.ResearchCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be positive")
	}
	if c.KeywordDefaultLimit <= 0 {
		return fmt.Errorf("keyword default limit must be positive")
	}
	if c.KeywordMaxLimit < c.KeywordDefaultLimit {
		return fmt.Errorf("keyword max limit (%d) cannot be below the default limit (%d)", c.KeywordMaxLimit, c.KeywordDefaultLimit)
	}
	if c.SuggestBaseURL != "" {
		parsed, err := url.Parse(c.SuggestBaseURL)
		if err != nil {
			return fmt.Errorf("invalid suggest base URL: %w", err)
		}
		if parsed.Host == "" {
			return fmt.Errorf("suggest base URL must include a host")
		}
	}
	if c.SuggestMaxCalls <= 0 || c.PremiumMaxCalls <= 0 || c.FreemiumMaxCalls <= 0 {
		return fmt.Errorf("provider budgets must be positive")
	}
	if c.SuggestWindow <= 0 || c.PremiumWindow <= 0 || c.FreemiumWindow <= 0 {
		return fmt.Errorf("provider budget windows must be positive")
	}
	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("provider timeout must be positive")
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("rate limit burst must be at least 1")
	}
	return nil
}

func envString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using %g", key, value, fallback)
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %t", key, value, fallback)
		return fallback
	}
	return parsed
}

func envDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return parsed
}
