// Package config assembles the service configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// EnvTest marks a test process. Seeding is skipped under it unless forced.
const EnvTest = "test"

// Defaults.
const (
	DefaultPort            = 3000
	DefaultCORSOrigin      = "http://localhost:5174"
	DefaultPostgresHost    = "localhost"
	DefaultPostgresPort    = 5432
	DefaultPostgresUser    = "postgres"
	DefaultPostgresPass    = "postgres"
	DefaultPostgresDB      = "inventory"
	DefaultSQLitePath      = "./inventory.db"
	DefaultSeedCount       = 75
	DefaultCacheTTL        = time.Minute
	DefaultCachePrefix     = "inventory:"
	DefaultShutdownTimeout = 30 * time.Second
)

// Config holds every setting the service reads from its environment.
type Config struct {
	AppEnv          string
	HTTPPort        int
	CORSOrigins     []string
	ShutdownTimeout time.Duration
	LogLevel        string

	Database DatabaseConfig
	Seed     SeedConfig
	Cache    CacheConfig
}

// DatabaseConfig selects and locates the product store.
type DatabaseConfig struct {
	Driver      string
	URL         string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SQLitePath  string
	AutoMigrate bool
	LogLevel    string
}

// SeedConfig controls the one-time synthetic data seed.
type SeedConfig struct {
	Enabled bool
	Count   int
	Force   bool
}

// CacheConfig configures the optional Redis list cache.
// The cache is disabled when RedisAddr is empty.
type CacheConfig struct {
	RedisAddr string
	TTL       time.Duration
	Prefix    string
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a Config from the current environment without touching .env files.
func FromEnv() *Config {
	port := getEnvInt("BACKEND_PORT", 0)
	if port == 0 {
		port = getEnvInt("PORT", DefaultPort)
	}

	return &Config{
		AppEnv:          getEnv("APP_ENV", "development"),
		HTTPPort:        port,
		CORSOrigins:     splitList(getEnv("CORS_ORIGIN", DefaultCORSOrigin)),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", DefaultShutdownTimeout),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			URL:         getEnv("DATABASE_URL", ""),
			Host:        getEnv("POSTGRES_HOST", DefaultPostgresHost),
			Port:        getEnvInt("POSTGRES_PORT", DefaultPostgresPort),
			User:        getEnv("POSTGRES_USER", DefaultPostgresUser),
			Password:    getEnv("POSTGRES_PASSWORD", DefaultPostgresPass),
			Name:        getEnv("POSTGRES_DB", DefaultPostgresDB),
			SQLitePath:  getEnv("SQLITE_PATH", DefaultSQLitePath),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
			LogLevel:    strings.ToLower(getEnv("DB_LOG_LEVEL", "warn")),
		},
		Seed: SeedConfig{
			Enabled: getEnvBool("SEED_ENABLED", true),
			Count:   ParseSeedCount(os.Getenv("SEED_COUNT")),
			Force:   getEnvBool("SEED_FORCE", false),
		},
		Cache: CacheConfig{
			RedisAddr: getEnv("REDIS_ADDR", ""),
			TTL:       getEnvDuration("CACHE_TTL", DefaultCacheTTL),
			Prefix:    getEnv("CACHE_PREFIX", DefaultCachePrefix),
		},
	}
}

// Validate reports settings the service cannot run with.
func (c *Config) Validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %q or %q)", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if len(c.CORSOrigins) == 0 {
		return errors.New("CORS_ORIGIN must list at least one origin")
	}
	return nil
}

// IsTest reports whether the process is marked as a test process.
func (c *Config) IsTest() bool {
	return c.AppEnv == EnvTest
}

// ShouldSeed reports whether the seed routine should run at startup.
func (c *Config) ShouldSeed() bool {
	if !c.Seed.Enabled {
		return false
	}
	if c.IsTest() && !c.Seed.Force {
		return false
	}
	return true
}

// DSN returns the PostgreSQL connection string.
// DATABASE_URL wins over the individual POSTGRES_* settings.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// ParseSeedCount interprets SEED_COUNT. Fractions are truncated; empty,
// non-numeric and non-positive values fall back to DefaultSeedCount.
func ParseSeedCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSeedCount
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 1 || f > float64(1<<31-1) {
		return DefaultSeedCount
	}
	return int(f)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnv returns environment variable value or default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns environment variable as int or default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Printf("Warning: invalid int value for %s: %s, using default: %d", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvBool returns environment variable as bool or default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		log.Printf("Warning: invalid bool value for %s: %s, using default: %t", key, value, defaultValue)
	}
	return defaultValue
}

// getEnvDuration returns environment variable as duration or default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		log.Printf("Warning: invalid duration value for %s: %s, using default: %s", key, value, defaultValue)
	}
	return defaultValue
}
