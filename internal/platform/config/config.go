package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the full runtime configuration, read from the environment.
type Config struct {
	Server     Server
	Log        Log
	Session    Session
	Database   Database
	Redis      RedisConfig
	Registry   Registry
	RateLimit  RateLimit
	Audit      Audit
	SuperAdmin SuperAdmin
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

type Log struct {
	Level  string
	Format string
}

// Session configures the signed session cookie.
type Session struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
}

// Database is empty when listings and users live in memory.
type Database struct {
	URL string
}

// RedisConfig is empty when sessions live in memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Registry configures the licence registry lookup.
type Registry struct {
	BaseURL          string
	Timeout          time.Duration
	FailureThreshold int
	Cooldown         time.Duration
}

// RateLimit bounds licence verification attempts per user and login
// attempts per client.
type RateLimit struct {
	Disabled     bool
	VerifyLimit  int
	VerifyWindow time.Duration
	LoginLimit   int
	LoginWindow  time.Duration
}

// Audit configures optional Kafka fan-out of audit events.
type Audit struct {
	KafkaBrokers []string
	TopicPrefix  string
}

// SuperAdmin is the account ensured by the seed-superadmin command.
type SuperAdmin struct {
	Username string
	Email    string
	Password string
}

const (
	defaultSessionSecret = "dev-session-secret-change-in-production"
	defaultRegistryURL   = "https://www.bcfsa.ca/re-licencee"
)

// LoadDotEnv loads variables from path if it exists. Variables already set in
// the process environment win.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() (Config, error) {
	e := &envReader{}
	cfg := Config{
		Server: Server{
			Addr:            e.str("PRESALE_ADDR", ":8080"),
			ShutdownTimeout: e.duration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: Log{
			Level:  e.str("LOG_LEVEL", "info"),
			Format: e.str("LOG_FORMAT", "json"),
		},
		Session: Session{
			Secret:       e.str("SESSION_SECRET", defaultSessionSecret),
			TTL:          e.duration("SESSION_TTL", 24*time.Hour),
			CookieName:   e.str("SESSION_COOKIE_NAME", "presale_session"),
			CookieSecure: e.boolean("COOKIE_SECURE", false),
		},
		Database: Database{
			URL: e.str("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			URL:          e.str("REDIS_URL", ""),
			PoolSize:     e.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: e.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  e.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  e.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: e.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Registry: Registry{
			BaseURL:          strings.TrimRight(e.str("REGISTRY_BASE_URL", defaultRegistryURL), "/"),
			Timeout:          e.duration("REGISTRY_TIMEOUT", 10*time.Second),
			FailureThreshold: e.integer("REGISTRY_BREAKER_FAILURES", 5),
			Cooldown:         e.duration("REGISTRY_BREAKER_COOLDOWN", 30*time.Second),
		},
		RateLimit: RateLimit{
			Disabled:     e.boolean("RATE_LIMIT_DISABLED", false),
			VerifyLimit:  e.integer("VERIFY_RATE_LIMIT", 5),
			VerifyWindow: e.duration("VERIFY_RATE_WINDOW", 15*time.Minute),
			LoginLimit:   e.integer("LOGIN_RATE_LIMIT", 10),
			LoginWindow:  e.duration("LOGIN_RATE_WINDOW", 15*time.Minute),
		},
		Audit: Audit{
			KafkaBrokers: e.list("KAFKA_BROKERS"),
			TopicPrefix:  e.str("AUDIT_TOPIC", "presale.audit"),
		},
		SuperAdmin: SuperAdmin{
			Username: e.str("SUPERADMIN_USERNAME", "superadmin"),
			Email:    e.str("SUPERADMIN_EMAIL", "superadmin@presale.local"),
			Password: e.str("SUPERADMIN_PASSWORD", ""),
		},
	}
	if e.err != nil {
		return Config{}, e.err
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, errors.New("SESSION_TTL must be positive")
	}
	if cfg.RateLimit.VerifyLimit <= 0 || cfg.RateLimit.VerifyWindow <= 0 {
		return Config{}, errors.New("VERIFY_RATE_LIMIT and VERIFY_RATE_WINDOW must be positive")
	}
	if cfg.RateLimit.LoginLimit <= 0 || cfg.RateLimit.LoginWindow <= 0 {
		return Config{}, errors.New("LOGIN_RATE_LIMIT and LOGIN_RATE_WINDOW must be positive")
	}
	return cfg, nil
}

// UsesDefaultSessionSecret reports whether the development secret is in use.
func (c Config) UsesDefaultSessionSecret() bool {
	return c.Session.Secret == defaultSessionSecret
}

// envReader collects the first parse error so FromEnv reads linearly.
type envReader struct {
	err error
}

func (e *envReader) str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func (e *envReader) duration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func (e *envReader) integer(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return n
}

func (e *envReader) boolean(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return b
}

func (e *envReader) list(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
