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
	RestockNone    = "none"
	RestockRestore = "restore"
)

type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Redis    RedisConfig
	Orders   OrdersConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
	AdminEmails []string
}

type ServerConfig struct {
	Port           string
	RequestTimeout time.Duration
	AllowOrigins   []string
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LockTimeout     time.Duration
	AutoMigrate     bool
}

type JWTConfig struct {
	SecretKey string
	TTL       time.Duration
}

type RedisConfig struct {
	Enabled       bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	PoolSize      int
	DialTimeout   time.Duration
}

type OrdersConfig struct {
	// RestockPolicy is "none" (stock is never returned) or "restore"
	// (deleting, cancelling or re-itemizing an order returns its quantities).
	RestockPolicy string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var errs []error
	intVal := func(key string, def int) int {
		n, err := getEnvInt(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return n
	}
	durationVal := func(key string, def time.Duration) time.Duration {
		d, err := getEnvDuration(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return d
	}
	boolVal := func(key string, def bool) bool {
		b, err := getEnvBool(key, def)
		if err != nil {
			errs = append(errs, err)
		}
		return b
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Supply Store API"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			AdminEmails: splitList(getEnv("APP_ADMIN_EMAILS", "")),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			RequestTimeout: durationVal("SERVER_REQUEST_TIMEOUT", 10*time.Second),
			AllowOrigins:   splitList(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000,http://localhost:8080")),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_NAME", "supply_store"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns:    intVal("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    intVal("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: durationVal("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			LockTimeout:     durationVal("DB_LOCK_TIMEOUT", 5*time.Second),
			AutoMigrate:     boolVal("DB_AUTO_MIGRATE", true),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
			TTL:       durationVal("JWT_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			Enabled:       boolVal("REDIS_ENABLED", false),
			RedisHost:     getEnv("REDIS_HOST", "localhost"),
			RedisPort:     getEnv("REDIS_PORT", "6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       intVal("REDIS_DB", 0),
			PoolSize:      intVal("REDIS_POOL_SIZE", 10),
			DialTimeout:   durationVal("REDIS_DIAL_TIMEOUT", 5*time.Second),
		},
		Orders: OrdersConfig{
			RestockPolicy: strings.ToLower(getEnv("ORDER_RESTOCK_POLICY", RestockNone)),
		},
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	if cfg.JWT.SecretKey == "" {
		return nil, errors.New("missing jwt secret")
	}

	if cfg.Database.Password == "" {
		return nil, errors.New("missing database password")
	}

	if cfg.Orders.RestockPolicy != RestockNone && cfg.Orders.RestockPolicy != RestockRestore {
		return nil, fmt.Errorf("invalid ORDER_RESTOCK_POLICY %q", cfg.Orders.RestockPolicy)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// DSN builds the postgres connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisAddr returns host:port for the redis client.
func (c RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
