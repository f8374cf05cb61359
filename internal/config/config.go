package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	StoreDriver string
	// Database pool sizing
	DBMaxConns int32
	DBMinConns int32
	// Auth
	JWKSURL       string
	DevUserHeader bool // Trust X-User-ID instead of a bearer token (never in prod)
	// Identity provider admin API, used by cmd/seed only
	AuthAdminURL   string
	AuthServiceKey string
	CORSOrigins    string
	TablePrefix    string
	// Logging
	LogDir      string // Empty disables the file sink
	LogMaxFiles int
	// Debug flags
	Debug bool // Enables debug-level logging
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	tablePrefix := getTablePrefix(env)

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		StoreDriver:    strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		DBMaxConns:     int32(getEnvInt("DB_MAX_CONNS", 25)),
		DBMinConns:     int32(getEnvInt("DB_MIN_CONNS", 5)),
		JWKSURL:        getEnv("AUTH_JWKS_URL", ""),
		DevUserHeader:  getEnv("AUTH_DEV_USER_HEADER", "false") == "true",
		AuthAdminURL:   strings.TrimRight(getEnv("AUTH_ADMIN_URL", ""), "/"),
		AuthServiceKey: getEnv("AUTH_SERVICE_KEY", ""),
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:    tablePrefix,
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// IsProd reports whether the config targets production
func (c *Config) IsProd() bool {
	return c.Environment == "prod"
}

// Validate checks the combination of settings the server needs to start
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, is.Port),
		validation.Field(&c.Environment, validation.Required, validation.In("dev", "test", "prod")),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(StoreDriverPostgres, StoreDriverMemory)),
		validation.Field(&c.DatabaseURL,
			validation.When(c.StoreDriver == StoreDriverPostgres, validation.Required),
		),
		validation.Field(&c.JWKSURL,
			validation.When(!c.DevUserHeader, validation.Required.Error("is required unless AUTH_DEV_USER_HEADER is enabled")),
			is.RequestURL,
		),
		validation.Field(&c.LogMaxFiles, validation.Min(1)),
	)
	if err != nil {
		return err
	}

	if c.IsProd() && c.StoreDriver == StoreDriverMemory {
		return errors.New("STORE_DRIVER=memory is not allowed in prod")
	}
	if c.IsProd() && c.DevUserHeader {
		return errors.New("AUTH_DEV_USER_HEADER is not allowed in prod")
	}
	if c.DBMinConns > c.DBMaxConns {
		return errors.New("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}

	return nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true" // Enable DEBUG in dev/test by default
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
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
