package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	PostgresDSN     string
	Redis           RedisConfig
	CaseTokenKey    string
	CaseTokenTTL    time.Duration
	RulepackDir     string
	PaidEditWindow  time.Duration
	ShutdownTimeout time.Duration

	// CreateRateLimit throttles anonymous case creation per client IP.
	CreateRateLimit  int
	CreateRateWindow time.Duration
}

// RedisConfig tunes the optional Redis decision cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	DecisionTTL  time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CASEFLOW_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	tokenKey := os.Getenv("CASE_TOKEN_SIGNING_KEY")
	if tokenKey == "" {
		// Use a default for development - should be overridden in production
		tokenKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:            addr,
		LogLevel:        os.Getenv("CASEFLOW_LOG_LEVEL"),
		PostgresDSN:     os.Getenv("CASEFLOW_POSTGRES_DSN"),
		CaseTokenKey:    tokenKey,
		CaseTokenTTL:    durationEnv("CASE_TOKEN_TTL", 72*time.Hour),
		RulepackDir:     os.Getenv("CASEFLOW_RULEPACK_DIR"),
		PaidEditWindow:  durationEnv("CASEFLOW_PAID_EDIT_WINDOW", 24*time.Hour),
		ShutdownTimeout: durationEnv("CASEFLOW_SHUTDOWN_TIMEOUT", 10*time.Second),

		CreateRateLimit:  intEnv("CASEFLOW_CREATE_RATE_LIMIT", 20),
		CreateRateWindow: durationEnv("CASEFLOW_CREATE_RATE_WINDOW", time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("CASEFLOW_REDIS_URL"),
			PoolSize:     intEnv("CASEFLOW_REDIS_POOL_SIZE", 10),
			MinIdleConns: intEnv("CASEFLOW_REDIS_MIN_IDLE", 2),
			DialTimeout:  durationEnv("CASEFLOW_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  durationEnv("CASEFLOW_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: durationEnv("CASEFLOW_REDIS_WRITE_TIMEOUT", 3*time.Second),
			DecisionTTL:  durationEnv("CASEFLOW_DECISION_CACHE_TTL", 15*time.Minute),
		},
	}
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			return d
		}
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return fallback
}
