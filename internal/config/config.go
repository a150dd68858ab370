// Package config provides configuration management for dsping.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/jxucoder/dsping/internal/deepseek"
)

// Environment variable names.
const (
	EnvAPIKey   = "DEEPSEEK_API_KEY"
	EnvTimeout  = "DSPING_TIMEOUT"
	EnvDataDir  = "DSPING_DATA_DIR"
	EnvLogLevel = "DSPING_LOG_LEVEL"
)

// DefaultEnvFile is loaded from the working directory when present.
const DefaultEnvFile = ".env"

// Config holds all configuration for a dsping invocation.
type Config struct {
	// APIKey is the DeepSeek bearer credential.
	APIKey string

	// Timeout bounds the request. Zero means wait indefinitely.
	Timeout time.Duration

	// DataDir holds the run history database.
	DataDir string

	// DatabasePath is the full path to the SQLite history file.
	DatabasePath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// Load creates a Config from an env file and environment variables.
// Values already in the environment win over the file. An explicit
// envFile must exist; the default .env is optional.
func Load(envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	dataDir := envOr(EnvDataDir, defaultDataDir())

	cfg := &Config{
		APIKey:       os.Getenv(EnvAPIKey),
		Timeout:      envOrDuration(EnvTimeout, 0),
		DataDir:      dataDir,
		DatabasePath: filepath.Join(dataDir, "history.db"),
		LogLevel:     strings.ToLower(envOr(EnvLogLevel, "warn")),
	}
	return cfg, nil
}

func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
		return nil
	}
	err := godotenv.Load(DefaultEnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading env file %s: %w", DefaultEnvFile, err)
	}
	return nil
}

// Validate checks that the credential is present. It must be called
// before any network client is built.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return deepseek.ErrMissingCredential
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to warn.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// MaskedAPIKey returns the credential with everything but its edges hidden.
func (c *Config) MaskedAPIKey() string {
	return MaskSecret(c.APIKey)
}

// MaskSecret hides all but the first and last four characters of s.
// Short values are masked entirely.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-8) + s[len(s)-4:]
}

func envOrDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			return d
		}
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".dsping"
	}
	return filepath.Join(home, ".dsping")
}
