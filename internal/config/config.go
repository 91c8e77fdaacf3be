package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DB        DBConfig
	Server    ServerConfig
	Backend   BackendConfig
	Search    SearchConfig
	RateLimit RateLimitConfig
	Drafts    DraftConfig
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeMemory     DBType = "memory"
)

const (
	defaultBackendURL = "http://localhost:9000"
	defaultProvider   = "econt_econt"
	// shortest query the courier search accepts
	minSearchQueryLength = 2
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	if c.Type == DBTypeMemory {
		// SQLite in-memory database
		if c.Name != "" && c.Name != "checkout" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// BackendConfig points at the commerce backend that owns carts and the
// courier search endpoints.
type BackendConfig struct {
	URL             string
	PublishableKey  string
	DefaultProvider string
}

// SearchConfig tunes the autocomplete fields.
type SearchConfig struct {
	Debounce       time.Duration
	MinQueryLength int
}

// RateLimitConfig limits API requests per client IP.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	// TrustProxies keys clients by X-Forwarded-For; only safe behind a proxy that sets it
	TrustProxies bool
	// IdleTTL is how long an unseen client's limiter is kept
	IdleTTL time.Duration
}

// DraftConfig controls how long unsubmitted forms are kept
type DraftConfig struct {
	TTL time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "memory"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory {
		dbType = DBTypeMemory
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "checkout"),
			Password: getEnv("DB_PASSWORD", "checkout_password"),
			Name:     getEnv("DB_NAME", "checkout"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Backend: BackendConfig{
			URL:             strings.TrimRight(getEnv("MEDUSA_BACKEND_URL", defaultBackendURL), "/"),
			PublishableKey:  getEnv("MEDUSA_PUBLISHABLE_KEY", ""),
			DefaultProvider: getEnv("SHIPPING_DEFAULT_PROVIDER", defaultProvider),
		},
		Search: SearchConfig{
			Debounce:       time.Duration(getEnvAsInt("SEARCH_DEBOUNCE_MS", 300)) * time.Millisecond,
			MinQueryLength: max(getEnvAsInt("SEARCH_MIN_QUERY_LENGTH", minSearchQueryLength), minSearchQueryLength),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 20),
			TrustProxies:      getEnvAsBool("RATE_LIMIT_TRUST_PROXY", false),
			IdleTTL:           time.Duration(getEnvAsInt("RATE_LIMIT_IDLE_MINUTES", 10)) * time.Minute,
		},
		Drafts: DraftConfig{
			TTL: time.Duration(getEnvAsInt("DRAFT_TTL_HOURS", 72)) * time.Hour,
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}
