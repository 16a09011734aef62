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

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMongo  = "mongo"
	DriverMemory = "memory"

	devJWTSecret = "dev-only-secret-change-me"
)

type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	PublicURL string

	StorageDriver string
	MongoURI      string
	MongoDB       string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret     string
	JWTExpiration time.Duration

	FeedMaxLimit   int64
	StaticDir      string
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// UsingDevSecret reports whether the built-in development secret is in use.
func (c *Config) UsingDevSecret() bool {
	return c.JWTSecret == devJWTSecret
}

// String masks secrets.
func (c *Config) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "port=%s env=%s storage=%s mongo_db=%s", c.Port, c.AppEnv, c.StorageDriver, c.MongoDB)
	if c.RedisAddr != "" {
		fmt.Fprintf(&sb, " redis=%s", c.RedisAddr)
	} else {
		sb.WriteString(" redis=(disabled)")
	}
	fmt.Fprintf(&sb, " jwt_ttl=%s feed_max_limit=%d", c.JWTExpiration, c.FeedMaxLimit)
	return sb.String()
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	cfg := &Config{
		Port:          port(getenv("PORT", "8080")),
		AppEnv:        getenv("APP_ENV", EnvDevelopment),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		PublicURL:     strings.TrimRight(getenv("PUBLIC_URL", "http://localhost:8080"), "/"),
		StorageDriver: getenv("STORAGE_DRIVER", DriverMongo),
		MongoURI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:       getenv("MONGO_DB", "recipehub"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		StaticDir:     getenv("STATIC_DIR", "static"),
		CORSOrigins:   splitList(getenv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.RedisDB, err = intEnv("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.JWTExpiration, err = durationEnv("JWT_EXPIRATION", time.Hour); err != nil {
		return nil, err
	}
	limit, err := intEnv("FEED_MAX_LIMIT", 100)
	if err != nil {
		return nil, err
	}
	cfg.FeedMaxLimit = int64(limit)
	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", 10); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = floatEnv("RATE_LIMIT_RPS", 5); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", DriverMongo, DriverMemory, c.StorageDriver)
	}
	if c.JWTSecret == "" {
		if c.IsProduction() {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = devJWTSecret
	}
	if c.JWTExpiration <= 0 {
		return errors.New("JWT_EXPIRATION must be positive")
	}
	if c.FeedMaxLimit <= 0 {
		return errors.New("FEED_MAX_LIMIT must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func port(p string) string {
	if p[0] != ':' {
		return ":" + p
	}
	return p
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
