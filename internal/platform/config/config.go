package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       string
	RequestTimeout time.Duration

	// LedgerBackend selects the attempt ledger: memory, postgres or redis.
	LedgerBackend string
	Database      DatabaseConfig
	Redis         RedisConfig
	Breaker       BreakerConfig

	Lockout LockoutConfig
	Audit   AuditConfig
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Retention is how long an expired lock record lingers before Redis evicts it.
	Retention time.Duration
}

type BreakerConfig struct {
	FailureThreshold int
	Cooldown         time.Duration
}

// LockoutConfig is the raw env form of the lockout settings. Overrides use
// "op=max/duration" pairs separated by commas.
type LockoutConfig struct {
	MaxAttempts        int
	Duration           time.Duration
	Overrides          string
	FailMode           string
	DiscloseRemaining  bool
	CompactionInterval time.Duration
	CompactionGrace    time.Duration
}

type AuditConfig struct {
	// Sink is log, postgres or kafka.
	Sink           string
	FingerprintKey string
	Async          bool
	BufferSize     int
	KafkaBrokers   string
	KafkaTopic     string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Unparseable values fall back to their defaults.
func FromEnv() Server {
	return Server{
		Addr:           getString("AUTHGUARD_ADDR", ":8080"),
		Environment:    getString("AUTHGUARD_ENV", "development"),
		LogLevel:       getString("LOG_LEVEL", "info"),
		RequestTimeout: getDuration("REQUEST_TIMEOUT", 2*time.Second),
		LedgerBackend:  strings.ToLower(getString("LEDGER_BACKEND", "memory")),
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 20),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
			Retention:    getDuration("REDIS_LEDGER_RETENTION", 24*time.Hour),
		},
		Breaker: BreakerConfig{
			FailureThreshold: getInt("LEDGER_BREAKER_THRESHOLD", 5),
			Cooldown:         getDuration("LEDGER_BREAKER_COOLDOWN", 10*time.Second),
		},
		Lockout: LockoutConfig{
			MaxAttempts:        getInt("LOCKOUT_MAX_ATTEMPTS", 5),
			Duration:           getDuration("LOCKOUT_DURATION", 15*time.Minute),
			Overrides:          os.Getenv("LOCKOUT_OVERRIDES"),
			FailMode:           getString("LOCKOUT_FAIL_MODE", "closed"),
			DiscloseRemaining:  getBool("LOCKOUT_DISCLOSE_REMAINING", true),
			CompactionInterval: getDuration("LOCKOUT_COMPACTION_INTERVAL", 15*time.Minute),
			CompactionGrace:    getDuration("LOCKOUT_COMPACTION_GRACE", 24*time.Hour),
		},
		Audit: AuditConfig{
			Sink:           strings.ToLower(getString("AUDIT_SINK", "log")),
			FingerprintKey: os.Getenv("IDENTITY_FINGERPRINT_KEY"),
			Async:          getBool("AUDIT_ASYNC", true),
			BufferSize:     getInt("AUDIT_BUFFER_SIZE", 1000),
			KafkaBrokers:   getString("KAFKA_BROKERS", "localhost:9092"),
			KafkaTopic:     getString("KAFKA_AUDIT_TOPIC", "authguard.audit"),
		},
	}
}

func getString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
