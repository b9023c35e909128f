// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logger   LoggerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	MaxUploadBytes int64
	Timezone       string
}

// DatabaseConfig holds where the database image is loaded from.
type DatabaseConfig struct {
	URL          string        // operational database
	SampleURL    string        // fallback when URL cannot be loaded
	FetchTimeout time.Duration // per fetch
}

// LoggerConfig holds logger configuration.
type LoggerConfig struct {
	Level  string
	Format string
}

// Load reads an optional .env file, then environment variables.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool) {
	foundEnv := godotenv.Load() == nil

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			MaxUploadBytes: getEnvAsInt64("MAX_UPLOAD_BYTES", 32<<20),
			Timezone:       getEnv("TIMEZONE", "America/Guatemala"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", "data/condominio.db"),
			SampleURL:    getEnv("SAMPLE_DATABASE_URL", "data/sample.db"),
			FetchTimeout: getEnvAsDuration("FETCH_TIMEOUT", 30*time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
	return cfg, foundEnv
}

// Location returns the configured time zone used for "current month".
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Server.Timezone)
}

// Validate reports every invalid setting in one error.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Server.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Server.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.Server.MaxUploadBytes < 1 {
		errs = append(errs, fmt.Sprintf("invalid max upload size %d: must be positive", c.Server.MaxUploadBytes))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("invalid timezone '%s': %v", c.Server.Timezone, err))
	}

	if c.Database.URL == "" {
		errs = append(errs, "database URL cannot be empty")
	} else if err := checkSource(c.Database.URL); err != nil {
		errs = append(errs, fmt.Sprintf("invalid database URL '%s': %v", c.Database.URL, err))
	}
	if c.Database.SampleURL != "" {
		if err := checkSource(c.Database.SampleURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid sample database URL '%s': %v", c.Database.SampleURL, err))
		}
	}

	if c.Database.FetchTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.Database.FetchTimeout))
	}

	switch strings.ToLower(c.Logger.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be 'json' or 'text'", c.Logger.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// checkSource accepts http(s) and file URLs and bare paths.
func checkSource(src string) error {
	u, err := url.Parse(src)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "", "file":
		return nil
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("missing host")
		}
		return nil
	default:
		return fmt.Errorf("unsupported scheme '%s'", u.Scheme)
	}
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
