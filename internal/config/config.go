package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Session storage backends
const (
	BackendMemory  = "memory"
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendSQLite  = "sqlite"
	BackendRedis   = "redis"
)

// Config holds all configuration for the application
type Config struct {
	// API client configuration
	API APIConfig

	// Session storage configuration
	Session SessionConfig

	// Logging Configuration
	Logging LoggingConfig

	// Development mock API configuration
	MockAPI MockAPIConfig
}

// APIConfig holds the shared HTTP client settings
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig selects where the encrypted session bundle lives
type SessionConfig struct {
	Backend      string
	FilePath     string // file backend
	DatabasePath string // sqlite backend
	RedisAddress string // redis backend (host:port)
	Passphrase   string // cipher key material
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// MockAPIConfig holds the development mock API settings
type MockAPIConfig struct {
	Addr          string
	DatabaseURL   string
	JWTSecret     string
	CORSOrigin    string
	CloseSchedule string // cron expression for closing expired jobs
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	backend := strings.ToLower(getEnv("SESSION_BACKEND", BackendFile))
	switch backend {
	case BackendMemory, BackendFile, BackendKeyring, BackendSQLite, BackendRedis:
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND %q, must be one of: memory, file, keyring, sqlite, redis", backend)
	}

	sessionFile := os.Getenv("SESSION_FILE")
	if sessionFile == "" && backend == BackendFile {
		sessionFile, err = defaultSessionFile()
		if err != nil {
			return nil, err
		}
	}

	return &Config{
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
			Timeout: timeout,
		},
		Session: SessionConfig{
			Backend:      backend,
			FilePath:     sessionFile,
			DatabasePath: getEnv("SESSION_DB", "placeboard-session.sqlite"),
			RedisAddress: getEnv("REDIS_ADDRESS", "localhost:6379"),
			Passphrase:   getEnv("SESSION_PASSPHRASE", "placeboard-local-session"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
		MockAPI: MockAPIConfig{
			Addr:          getEnv("MOCKAPI_ADDR", ":8080"),
			DatabaseURL:   getEnv("MOCKAPI_DB", "placeboard-mock.sqlite"),
			JWTSecret:     os.Getenv("MOCKAPI_JWT_SECRET"),
			CORSOrigin:    getEnv("MOCKAPI_CORS_ORIGIN", "http://localhost:5173"),
			CloseSchedule: getEnv("MOCKAPI_CLOSE_SCHEDULE", "@every 1m"),
		},
	}, nil
}

// defaultSessionFile returns ~/.config/placeboard/storage.json
func defaultSessionFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "placeboard", "storage.json"), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
