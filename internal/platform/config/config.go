// Package config builds service configuration from the environment so main
// stays lean.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "github.com/sullis/logging-log4j-audit/pkg/platform/strings"
)

// Config captures everything the audit service reads from the environment.
type Config struct {
	Addr string

	// AuthToken is the shared secret audit clients present. Empty disables
	// authentication, for local development only.
	AuthToken string
	// JWTSigningKey enables HS256 bearer tokens as an alternative to the
	// shared secret when set.
	JWTSigningKey string

	// CatalogPath points at the YAML catalog file. CatalogDSN selects the
	// postgres-backed catalog instead when set.
	CatalogPath string
	CatalogDSN  string

	// ContextHeaderPrefix marks request headers imported into the ambient
	// request context.
	ContextHeaderPrefix string

	// Sink selects the emission target: memory, stdout, kafka, or postgres.
	// SinkFallback optionally names a second sink that takes over when the
	// primary trips its circuit breaker.
	Sink         string
	SinkFallback string
	// SinkBuffer > 0 makes emission asynchronous through a bounded queue of
	// that capacity. Zero keeps emission synchronous so sink failures reach
	// the failure handler per message.
	SinkBuffer   int
	KafkaBrokers []string
	KafkaTopic   string
	SinkDSN      string

	MaxNameLength int

	Redis RedisConfig
}

// RedisConfig configures the optional catalog cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CatalogTTL   time.Duration
}

// FromEnv builds a Config from environment variables, applying defaults
// suitable for local development.
func FromEnv() Config {
	return Config{
		Addr:                getEnv("AUDIT_ADDR", ":8080"),
		AuthToken:           os.Getenv("AUDIT_AUTH_TOKEN"),
		JWTSigningKey:       os.Getenv("AUDIT_JWT_SIGNING_KEY"),
		CatalogPath:         getEnv("AUDIT_CATALOG_PATH", "catalog.yaml"),
		CatalogDSN:          os.Getenv("AUDIT_CATALOG_DSN"),
		ContextHeaderPrefix: getEnv("AUDIT_CONTEXT_HEADER_PREFIX", "Audit-"),
		Sink:                getEnv("AUDIT_SINK", "stdout"),
		SinkFallback:        os.Getenv("AUDIT_SINK_FALLBACK"),
		SinkBuffer:          getEnvInt("AUDIT_SINK_BUFFER", 0),
		KafkaBrokers:        splitList(os.Getenv("AUDIT_KAFKA_BROKERS")),
		KafkaTopic:          getEnv("AUDIT_KAFKA_TOPIC", "audit-events"),
		SinkDSN:             os.Getenv("AUDIT_SINK_DSN"),
		MaxNameLength:       getEnvInt("AUDIT_MAX_NAME_LENGTH", 32),
		Redis: RedisConfig{
			URL:          os.Getenv("AUDIT_REDIS_URL"),
			PoolSize:     getEnvInt("AUDIT_REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("AUDIT_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("AUDIT_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("AUDIT_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("AUDIT_REDIS_WRITE_TIMEOUT", 3*time.Second),
			CatalogTTL:   getEnvDuration("AUDIT_REDIS_CATALOG_TTL", 5*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}
