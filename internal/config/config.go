package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Auth     AuthConfig
	Cookie   CookieConfig
	Report   ReportConfig
	Email    EmailConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxOpen  int
	MaxIdle  int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	PrivateKeyPath string
	PublicKeyPath  string
	SessionExpiry  time.Duration
	Issuer         string
}

type AuthConfig struct {
	MaxFailedLogins int
	LockDuration    time.Duration
	Argon2Memory    uint32
	Argon2Time      uint32
}

// CookieConfig controls the browser cookie carrying the session token.
type CookieConfig struct {
	Name   string
	Secure bool
	Domain string
}

type ReportConfig struct {
	LookbackDays   int
	RequireSession bool
}

type EmailConfig struct {
	Enabled   bool
	APIKey    string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

type LogConfig struct {
	Level  string
	Pretty bool
}

func Load() (*Config, error) {
	// .env is optional outside development
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "propertyhub"),
			Password: getEnv("DB_PASSWORD", "propertyhub"),
			DBName:   getEnv("DB_NAME", "propertyhub"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxOpen:  getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdle:  getIntEnv("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			PrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./keys/private.pem"),
			PublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./keys/public.pem"),
			SessionExpiry:  getDurationEnv("SESSION_EXPIRY", 12*time.Hour),
			Issuer:         getEnv("JWT_ISSUER", "propertyhub"),
		},
		Auth: AuthConfig{
			MaxFailedLogins: getIntEnv("AUTH_MAX_FAILED_LOGINS", 5),
			LockDuration:    getDurationEnv("AUTH_LOCK_DURATION", 15*time.Minute),
			Argon2Memory:    uint32(getIntEnv("AUTH_ARGON2_MEMORY_KB", 64*1024)),
			Argon2Time:      uint32(getIntEnv("AUTH_ARGON2_ITERATIONS", 3)),
		},
		Cookie: CookieConfig{
			Name:   getEnv("SESSION_COOKIE_NAME", "propertyhub_session"),
			Secure: getBoolEnv("SESSION_COOKIE_SECURE", false),
			Domain: getEnv("SESSION_COOKIE_DOMAIN", ""),
		},
		Report: ReportConfig{
			LookbackDays:   getIntEnv("REPORT_LOOKBACK_DAYS", 365),
			RequireSession: getBoolEnv("REPORT_REQUIRE_SESSION", false),
		},
		Email: EmailConfig{
			Enabled:   getBoolEnv("EMAIL_ENABLED", false),
			APIKey:    getEnv("RESEND_API_KEY", ""),
			FromEmail: getEnv("EMAIL_FROM", "no-reply@propertyhub.local"),
			FromName:  getEnv("EMAIL_FROM_NAME", "PropertyHub"),
			Timeout:   getDurationEnv("EMAIL_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getBoolEnv("LOG_PRETTY", false),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Report.LookbackDays <= 0 {
		return fmt.Errorf("REPORT_LOOKBACK_DAYS must be positive, got %d", c.Report.LookbackDays)
	}
	if c.JWT.SessionExpiry <= 0 {
		return fmt.Errorf("SESSION_EXPIRY must be positive")
	}
	if c.Email.Enabled && c.Email.APIKey == "" {
		return fmt.Errorf("RESEND_API_KEY is required when EMAIL_ENABLED=true")
	}
	return nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
