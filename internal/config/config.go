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
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL        string
	DBMaxOpenConns     int
	DBMaxIdleConns     int
	DBStatementTimeout time.Duration

	// Redis (비어 있으면 캐시와 시그니처 락 비활성)
	RedisURL string

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Ingestion
	SignatureWindowHours int
	IngestLockEnabled    bool
	IngestRateLimit      int64
	IngestRateRefill     int64

	// Grouping
	GroupingMinMatches int

	// Profile service
	ProfileServiceURL   string
	ProfileServiceToken string
	ProfileCacheTTL     time.Duration

	// Alerts
	AlertWebhookURL string

	// Neo4j (spiderctl export-graph)
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	Neo4jDatabase string
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		Env:                  getEnv("ENV", "development"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		DBMaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 30),
		DBMaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
		DBStatementTimeout:   parseDuration(getEnv("DB_STATEMENT_TIMEOUT", "660s"), 660*time.Second),
		RedisURL:             getEnv("REDIS_URL", ""),
		JWTSecret:            getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:        parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		CORSAllowedOrigins:   splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		SignatureWindowHours: getEnvInt("SIGNATURE_WINDOW_HOURS", 1),
		IngestLockEnabled:    getEnvBool("INGEST_LOCK_ENABLED", false),
		IngestRateLimit:      int64(getEnvInt("INGEST_RATE_LIMIT", 30)),
		IngestRateRefill:     int64(getEnvInt("INGEST_RATE_REFILL", 1)),
		GroupingMinMatches:   getEnvInt("GROUPING_MIN_MATCHES", 3),
		ProfileServiceURL:    getEnv("PROFILE_SERVICE_URL", ""),
		ProfileServiceToken:  getEnv("PROFILE_SERVICE_TOKEN", ""),
		ProfileCacheTTL:      parseDuration(getEnv("PROFILE_CACHE_TTL", "15m"), 15*time.Minute),
		AlertWebhookURL:      getEnv("ALERT_WEBHOOK_URL", ""),
		Neo4jURI:             getEnv("NEO4J_URI", ""),
		Neo4jUsername:        getEnv("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword:        getEnv("NEO4J_PASSWORD", ""),
		Neo4jDatabase:        getEnv("NEO4J_DATABASE", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 필수 값과 범위 확인
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.IsProduction() && c.JWTSecret == "your-secret-key" {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}
	if c.SignatureWindowHours < 1 {
		return fmt.Errorf("SIGNATURE_WINDOW_HOURS must be >= 1, got %d", c.SignatureWindowHours)
	}
	if c.GroupingMinMatches < 1 {
		return fmt.Errorf("GROUPING_MIN_MATCHES must be >= 1, got %d", c.GroupingMinMatches)
	}
	if c.IngestRateLimit < 1 || c.IngestRateRefill < 1 {
		return fmt.Errorf("INGEST_RATE_LIMIT and INGEST_RATE_REFILL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
