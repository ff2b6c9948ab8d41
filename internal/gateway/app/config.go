package app

import (
	"os"
	"strconv"
	"time"
)

// MasterKeyEnv holds master key material when no key file is configured.
const MasterKeyEnv = "CONSOLE_MASTER_KEY"

type Config struct {
	BackendURL    string // IFRS backend base URL (default: http://localhost:8000)
	TOTPIssuer    string // Issuer shown in authenticator apps (default: IFRS Console)
	AdminUsername string // Reserved administrator that bypasses page checks (default: admin)

	DatabaseFile  string // Path to SQLite database file (default: ./console.db)
	MasterKeyPath string // Optional: file with master key material, falls back to CONSOLE_MASTER_KEY
	SessionKey    string // Optional: HS256 session signing key, random per process when empty

	SessionTTL         time.Duration // Gateway session lifetime (default: 12h)
	LockoutThreshold   int           // Failed codes before lockout (default: 5)
	LockoutDuration    time.Duration // Lockout length (default: 15m)
	SetupTTL           time.Duration // Lifetime of unconfirmed 2FA setup material (default: 10m)
	PermissionCacheTTL time.Duration // Permission record cache lifetime (default: 5m)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		BackendURL:    getEnvOrDefault("CONSOLE_BACKEND_URL", "http://localhost:8000"),
		TOTPIssuer:    getEnvOrDefault("CONSOLE_TOTP_ISSUER", "IFRS Console"),
		AdminUsername: getEnvOrDefault("CONSOLE_ADMIN_USERNAME", "admin"),

		DatabaseFile:  getEnvOrDefault("CONSOLE_DATABASE_FILE", "console.db"),
		MasterKeyPath: os.Getenv("CONSOLE_MASTER_KEY_PATH"),
		SessionKey:    os.Getenv("CONSOLE_SESSION_KEY"),

		SessionTTL:         getEnvDurationOrDefault("CONSOLE_SESSION_TTL", 12*time.Hour),
		LockoutThreshold:   getEnvIntOrDefault("CONSOLE_LOCKOUT_THRESHOLD", 5),
		LockoutDuration:    getEnvDurationOrDefault("CONSOLE_LOCKOUT_DURATION", 15*time.Minute),
		SetupTTL:           getEnvDurationOrDefault("CONSOLE_SETUP_TTL", 10*time.Minute),
		PermissionCacheTTL: getEnvDurationOrDefault("CONSOLE_PERMISSION_CACHE_TTL", 5*time.Minute),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

// SecureCookies reports whether the session cookie is marked Secure. Only
// local development runs over plain HTTP.
func (c Config) SecureCookies() bool {
	return c.Env != "dev" && c.Env != "test"
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

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
