// Package config builds runtime configuration from environment variables so
// main stays lean. Every value has a development default; production
// deployments override through the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything the server reads from the environment.
type Config struct {
	Addr string

	// DatabaseURL enables Postgres persistence. Empty means in-memory
	// stores and rulesets loaded from RulesetDir only.
	DatabaseURL string
	RulesetDir  string

	Redis RedisConfig
	Kafka KafkaConfig
	JWT   JWTConfig

	DecisionCacheTTL time.Duration
	RateLimit        RateLimitConfig

	LogLevel  string
	LogFormat string
}

// RedisConfig holds connection settings for the decision cache and the
// rate limiter. An empty URL disables both.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds broker settings for the audit trail. No brokers means
// audit events stay in the outbox until a relay is configured.
type KafkaConfig struct {
	Brokers  []string
	ClientID string
}

// JWTConfig holds token signing settings for API client authentication.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// RateLimitConfig is the per-client fixed window applied to eligibility
// endpoints. Limit 0 disables limiting.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		// Development default - must be overridden in production.
		jwtSecret = "dev-secret-change-in-production"
	}

	return Config{
		Addr:        envString("ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RulesetDir:  envString("RULESET_DIR", "rulesets"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:  envList("KAFKA_BROKERS"),
			ClientID: envString("KAFKA_CLIENT_ID", "patra"),
		},
		JWT: JWTConfig{
			Secret:   jwtSecret,
			Issuer:   envString("JWT_ISSUER", "patra"),
			Audience: envString("JWT_AUDIENCE", "patra-api"),
			TTL:      envDuration("JWT_TTL", time.Hour),
		},
		DecisionCacheTTL: envDuration("DECISION_CACHE_TTL", 5*time.Minute),
		RateLimit: RateLimitConfig{
			Limit:  envInt("RATE_LIMIT_REQUESTS", 100),
			Window: envDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		LogLevel:  envString("LOG_LEVEL", "info"),
		LogFormat: envString("LOG_FORMAT", "json"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// envList splits a comma-separated variable, dropping empty entries.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
