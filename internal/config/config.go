package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	DefaultYearlyPaidLeaveLimit = 18
	DefaultMinDailyWorkMinutes  = 480

	minDailyWorkMinutesFloor   = 60
	minDailyWorkMinutesCeiling = 1440
)

type Config struct {
	Database DatabaseConfig
	Storage  StorageConfig
	JWT      JWTConfig
	App      AppConfig
	Policy   PolicyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver     string // "postgres" or "sqlite"
	SQLitePath string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port              int
	Env               string
	LogLevel          string
	FrontendURL       string
	SeedDemoDirectory bool
}

// PolicyConfig holds the leave and attendance accounting constants. It is
// loaded once at startup and passed by value into the services that need it.
type PolicyConfig struct {
	YearlyPaidLeaveLimit int
	MinDailyWorkMinutes  int
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() PolicyConfig {
	return PolicyConfig{
		YearlyPaidLeaveLimit: DefaultYearlyPaidLeaveLimit,
		MinDailyWorkMinutes:  DefaultMinDailyWorkMinutes,
	}
}

func Load() (*Config, error) {
	// .env is optional; real deployments inject the environment directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "hris-leave"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	config.Storage = StorageConfig{
		Driver:     getEnv("STORAGE_DRIVER", "postgres"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/hris.db"),
	}

	// Application configuration
	appPort, err := getEnvInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	seedDemo, err := getEnvBool("SEED_DEMO_DIRECTORY", false)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Port:              appPort,
		Env:               getEnv("APP_ENV", "development"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:3000"),
		SeedDemoDirectory: seedDemo,
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Policy configuration
	limit, err := getEnvInt("YEARLY_PAID_LEAVE_LIMIT", DefaultYearlyPaidLeaveLimit)
	if err != nil {
		return nil, err
	}
	minMinutes, err := getEnvInt("MIN_DAILY_WORK_MINUTES", DefaultMinDailyWorkMinutes)
	if err != nil {
		return nil, err
	}
	config.Policy = NewPolicy(limit, minMinutes)

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// NewPolicy builds a PolicyConfig, clamping the minimum daily work minutes
// into [60, 1440].
func NewPolicy(yearlyPaidLeaveLimit, minDailyWorkMinutes int) PolicyConfig {
	if minDailyWorkMinutes < minDailyWorkMinutesFloor {
		minDailyWorkMinutes = minDailyWorkMinutesFloor
	}
	if minDailyWorkMinutes > minDailyWorkMinutesCeiling {
		minDailyWorkMinutes = minDailyWorkMinutesCeiling
	}
	return PolicyConfig{
		YearlyPaidLeaveLimit: yearlyPaidLeaveLimit,
		MinDailyWorkMinutes:  minDailyWorkMinutes,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Policy.YearlyPaidLeaveLimit < 0 {
		return fmt.Errorf("YEARLY_PAID_LEAVE_LIMIT must not be negative")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
