package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "DLADMIN_"

// Server captures HTTP server level configuration.
type Server struct {
	Addr      string
	LogLevel  string
	LogFormat string
	// AdminToken guards the /admin endpoints; empty disables them.
	AdminToken string
	Auth       Auth
	Redis      RedisConfig
	Postgres   PostgresConfig
	Kafka      KafkaConfig
	Backend    BackendConfig
	Wizard     WizardConfig
	Lookup     LookupConfig
	Audit      AuditConfig
}

// Auth configures officer bearer tokens.
type Auth struct {
	JWTSigningKey string
	JWTIssuer     string
	JWTAudience   string
}

// RedisConfig configures the shared session store and lookup cache.
// An empty URL keeps both in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the audit event store. An empty DSN keeps
// audit events in memory.
type PostgresConfig struct {
	DSN string
}

// KafkaConfig configures audit event streaming. No brokers disables it.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// BackendConfig configures the licensing backend client.
type BackendConfig struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	RetryMax int
}

// WizardConfig configures wizard sessions.
type WizardConfig struct {
	SessionTTL time.Duration
	// AlreadyHeldPolicy is "warn" or "block".
	AlreadyHeldPolicy string
}

// LookupConfig configures reference data caching.
type LookupConfig struct {
	CacheTTL time.Duration
}

// AuditConfig configures audit publishing.
type AuditConfig struct {
	// AsyncBuffer > 0 publishes through a buffered worker.
	AsyncBuffer int
}

// FromEnv builds a Server config from DLADMIN_* environment variables.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Server{}, fmt.Errorf("load .env: %w", err)
	}
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Server, error) {
	e := env{lookup: lookup}
	cfg := Server{
		Addr:       e.str("ADDR", ":8080"),
		LogLevel:   e.str("LOG_LEVEL", "info"),
		LogFormat:  e.str("LOG_FORMAT", "json"),
		AdminToken: e.str("ADMIN_TOKEN", ""),
		Auth: Auth{
			JWTSigningKey: e.str("JWT_SIGNING_KEY", ""),
			JWTIssuer:     e.str("JWT_ISSUER", "dladmin"),
			JWTAudience:   e.str("JWT_AUDIENCE", "dladmin-officers"),
		},
		Redis: RedisConfig{
			URL:          e.str("REDIS_URL", ""),
			PoolSize:     e.int("REDIS_POOL_SIZE", 10),
			MinIdleConns: e.int("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{DSN: e.str("POSTGRES_DSN", "")},
		Kafka: KafkaConfig{
			Brokers:    e.list("KAFKA_BROKERS"),
			AuditTopic: e.str("KAFKA_AUDIT_TOPIC", "dladmin.audit"),
		},
		Backend: BackendConfig{
			BaseURL:  e.str("BACKEND_URL", ""),
			APIKey:   e.str("BACKEND_API_KEY", ""),
			Timeout:  e.duration("BACKEND_TIMEOUT", 10*time.Second),
			RetryMax: e.int("BACKEND_RETRY_MAX", 3),
		},
		Wizard: WizardConfig{
			SessionTTL:        e.duration("WIZARD_SESSION_TTL", 2*time.Hour),
			AlreadyHeldPolicy: e.str("ALREADY_HELD_POLICY", "warn"),
		},
		Lookup: LookupConfig{CacheTTL: e.duration("LOOKUP_CACHE_TTL", 15*time.Minute)},
		Audit:  AuditConfig{AsyncBuffer: e.int("AUDIT_ASYNC_BUFFER", 0)},
	}
	if e.err != nil {
		return Server{}, e.err
	}
	return cfg, cfg.validate()
}

func (c Server) validate() error {
	var errs []error
	if c.Auth.JWTSigningKey == "" {
		errs = append(errs, errors.New(envPrefix+"JWT_SIGNING_KEY is required"))
	}
	if c.Backend.BaseURL == "" {
		errs = append(errs, errors.New(envPrefix+"BACKEND_URL is required"))
	}
	if c.Wizard.SessionTTL <= 0 {
		errs = append(errs, errors.New(envPrefix+"WIZARD_SESSION_TTL must be positive"))
	}
	if c.Lookup.CacheTTL <= 0 {
		errs = append(errs, errors.New(envPrefix+"LOOKUP_CACHE_TTL must be positive"))
	}
	if c.Backend.RetryMax < 0 {
		errs = append(errs, errors.New(envPrefix+"BACKEND_RETRY_MAX cannot be negative"))
	}
	switch strings.ToLower(c.Wizard.AlreadyHeldPolicy) {
	case "warn", "block":
	default:
		errs = append(errs, errors.New(envPrefix+"ALREADY_HELD_POLICY must be warn or block"))
	}
	return errors.Join(errs...)
}

// env reads prefixed variables and keeps the first parse error.
type env struct {
	lookup func(string) (string, bool)
	err    error
}

func (e *env) raw(key string) (string, bool) {
	v, ok := e.lookup(envPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (e *env) str(key, def string) string {
	if v, ok := e.raw(key); ok {
		return v
	}
	return def
}

func (e *env) int(key string, def int) int {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return n
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.raw(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil && e.err == nil {
		e.err = fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return d
}

func (e *env) list(key string) []string {
	v, ok := e.raw(key)
	if !ok {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
