package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database     DatabaseConfig
	JWT          JWTConfig
	App          AppConfig
	Session      SessionConfig
	OAuth2Google OAuth2GoogleConfig
	SMTP         SMTPConfig
	Cron         CronConfig
	Storage      StorageConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// MaxConns and ConnectAttempts override the pool defaults when positive.
	MaxConns        int
	ConnectAttempts int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string
	RefreshExpiration string
	AccessExpiration  string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
	FrontendDir string
}

// SessionConfig holds cookie and inactivity settings for browser sessions
type SessionConfig struct {
	CookieMaxAge      time.Duration
	InactivityTimeout time.Duration
	SecureCookies     bool
}

type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Enabled reports whether Google login is configured.
func (c OAuth2GoogleConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// Enabled reports whether outgoing mail is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}

// StorageConfig locates uploaded files and the URL they are served from.
type StorageConfig struct {
	Dir     string
	BaseURL string
}

type CronConfig struct {
	ReminderInterval time.Duration
	CleanupInterval  time.Duration
}

func Load() (*Config, error) {
	// A missing .env is fine in containers where the environment is injected directly.
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file loaded", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxConns, err := strconv.Atoi(getEnv("DB_MAX_CONNS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_CONNS: %w", err)
	}
	connectAttempts, err := strconv.Atoi(getEnv("DB_CONNECT_ATTEMPTS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONNECT_ATTEMPTS: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            dbPort,
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "granja"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        maxConns,
		ConnectAttempts: connectAttempts,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		FrontendDir: getEnv("FRONTEND_DIR", "./web/dist"),
	}

	// JWT configuration
	jwtRefreshExpiration := getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h")
	jwtAccessExpiration := getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h")

	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: jwtRefreshExpiration,
		AccessExpiration:  jwtAccessExpiration,
	}

	// Session configuration
	cookieMaxAge, err := time.ParseDuration(getEnv("SESSION_COOKIE_MAX_AGE", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_COOKIE_MAX_AGE: %w", err)
	}
	inactivityTimeout, err := time.ParseDuration(getEnv("SESSION_INACTIVITY_TIMEOUT", "60m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_INACTIVITY_TIMEOUT: %w", err)
	}

	config.Session = SessionConfig{
		CookieMaxAge:      cookieMaxAge,
		InactivityTimeout: inactivityTimeout,
		SecureCookies:     config.App.Env == "production",
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	// SMTP configuration
	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("invalid SMTP_PORT: %w", err)
	}

	config.SMTP = SMTPConfig{
		Host:      getEnv("SMTP_HOST", ""),
		Port:      smtpPort,
		Username:  getEnv("SMTP_USERNAME", ""),
		Password:  getEnv("SMTP_PASSWORD", ""),
		FromEmail: getEnv("SMTP_FROM_EMAIL", "no-reply@granjalink.local"),
		FromName:  getEnv("SMTP_FROM_NAME", "Granja"),
	}

	// Cron configuration
	reminderInterval, err := time.ParseDuration(getEnv("CRON_REMINDER_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_REMINDER_INTERVAL: %w", err)
	}
	cleanupInterval, err := time.ParseDuration(getEnv("CRON_CLEANUP_INTERVAL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_CLEANUP_INTERVAL: %w", err)
	}

	config.Cron = CronConfig{
		ReminderInterval: reminderInterval,
		CleanupInterval:  cleanupInterval,
	}

	config.Storage = StorageConfig{
		Dir:     getEnv("UPLOAD_DIR", "./uploads"),
		BaseURL: getEnv("UPLOAD_BASE_URL", fmt.Sprintf("http://localhost:%d/uploads", appPort)),
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}
	if c.Session.InactivityTimeout <= 0 {
		return fmt.Errorf("SESSION_INACTIVITY_TIMEOUT must be positive")
	}
	if c.OAuth2Google.ClientID != "" && len(c.OAuth2Google.Scopes) == 0 {
		return fmt.Errorf("SCOPES is required when CLIENT_ID is set")
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

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string = strings.Split(value, ",")
	return result
}
