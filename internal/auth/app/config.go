package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName string // Optional: name reported by /health and the TOTP issuer (default: Guachince)

	DatabaseFile string // Optional: path to SQLite database file (default: ./guachince.db)
	PepperFile   string // Optional: path to the password hashing pepper file (default: ./pepper)

	SessionTTL   time.Duration // Optional: session and cookie lifetime (default: 30 days)
	ResetTTL     time.Duration // Optional: password reset token lifetime (default: 30m)
	MFAEnrollTTL time.Duration // Optional: MFA enrollment confirm window (default: 15m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

// LoadConfig reads configuration from the environment, after loading a .env
// file when one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		AppName:      getEnvOrDefault("APP_NAME", "Guachince"),
		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "guachince.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		SessionTTL:   getEnvDaysOrDefault("AUTH_SESSION_TTL_DAYS", 30*24*time.Hour),
		ResetTTL:     getEnvMinutesOrDefault("AUTH_PASSWORD_RESET_TTL_MINUTES", 30*time.Minute),
		MFAEnrollTTL: getEnvMinutesOrDefault("AUTH_MFA_ENROLL_TTL_MINUTES", 15*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// IsProd reports whether the service runs in production. Controls cookie
// Secure and reset token echo.
func (c Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}

// getEnvDaysOrDefault parses a whole number of days.
func getEnvDaysOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if days, err := strconv.Atoi(value); err == nil && days > 0 {
		return time.Duration(days) * 24 * time.Hour
	}

	return defaultValue
}

// getEnvMinutesOrDefault parses a whole number of minutes.
func getEnvMinutesOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if minutes, err := strconv.Atoi(value); err == nil && minutes > 0 {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
