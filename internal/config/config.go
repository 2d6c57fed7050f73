package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Work     WorkConfig
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	MaxConns   int32 // postgres pool size
	MinConns   int32
	SQLitePath string
}

// JWTConfig holds service-token configuration for the command-layer client
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port     int
	Env      string
	LogLevel string
}

// WorkConfig holds the attendance policy: the civil timezone and the
// standard working day used for overtime, lateness and early-departure
// calculations.
type WorkConfig struct {
	Timezone      string
	StandardHours float64
	StartTime     string // HH:MM
	EndTime       string // HH:MM
	GraceMinutes  int
}

func Load() (*Config, error) {
	// A missing .env file is fine in production; variables come from the
	// environment there.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	minConns, err := strconv.Atoi(getEnv("DB_MIN_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MIN_CONNS: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     getEnv("DB_DRIVER", "sqlite"),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "workbot"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		MaxConns:   int32(maxConns),
		MinConns:   int32(minConns),
		SQLitePath: getEnv("SQLITE_PATH", "workbot.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:     appPort,
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "24h"),
	}

	// Attendance policy configuration
	standardHours, err := strconv.ParseFloat(getEnv("STANDARD_WORK_HOURS", "8.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STANDARD_WORK_HOURS: %w", err)
	}
	graceMinutes, err := strconv.Atoi(getEnv("LATE_GRACE_MINUTES", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid LATE_GRACE_MINUTES: %w", err)
	}

	config.Work = WorkConfig{
		Timezone:      getEnv("TIMEZONE", "Asia/Tokyo"),
		StandardHours: standardHours,
		StartTime:     getEnv("WORK_START", "09:00"),
		EndTime:       getEnv("WORK_END", "18:00"),
		GraceMinutes:  graceMinutes,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
		if c.Database.MaxConns < 1 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
			return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS must satisfy 0 <= min <= max and max >= 1")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.Database.Driver)
	}
	if c.Work.StandardHours <= 0 || c.Work.StandardHours > 24 {
		return fmt.Errorf("STANDARD_WORK_HOURS must be in (0, 24]")
	}
	if c.Work.GraceMinutes < 0 {
		return fmt.Errorf("LATE_GRACE_MINUTES must not be negative")
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
