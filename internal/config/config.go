package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"goagree/internal/errors"
)

// Supported report formats
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Config represents the complete application configuration
type Config struct {
	Data    DataConfig
	Report  ReportConfig
	Logging LoggingConfig
	Demo    DemoConfig
	Store   StoreConfig
	Server  ServerConfig
	Workers int
}

// DataConfig describes where the long-format differences come from
type DataConfig struct {
	File              string
	Sheet             string
	ParticipantColumn string
	ValueColumn       string
}

// ReportConfig controls how results are rendered
type ReportConfig struct {
	Format string
	Output string // empty means stdout
	XLSX   string // optional workbook export path
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string
	Format string
}

// DemoConfig parameterises the synthetic dataset used when no file is given
type DemoConfig struct {
	Seed         uint64
	Participants int
}

// StoreConfig locates the optional report database. A postgres:// URL selects
// PostgreSQL; any other value is a SQLite file path.
type StoreConfig struct {
	DSN string
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Addr string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	seed, err := strconv.ParseUint(getEnvOrDefault("RBA_DEMO_SEED", "42"), 10, 64)
	if err != nil {
		return nil, errors.ConfigInvalid(fmt.Sprintf("RBA_DEMO_SEED must be an unsigned integer: %v", err))
	}

	config := &Config{
		Data: DataConfig{
			File:              getEnvOrDefault("RBA_DATA_FILE", ""),
			Sheet:             getEnvOrDefault("RBA_SHEET", "Sheet1"),
			ParticipantColumn: getEnvOrDefault("RBA_PARTICIPANT_COLUMN", "participants"),
			ValueColumn:       getEnvOrDefault("RBA_VALUE_COLUMN", "variables"),
		},
		Report: ReportConfig{
			Format: strings.ToLower(getEnvOrDefault("RBA_REPORT_FORMAT", FormatText)),
			Output: getEnvOrDefault("RBA_REPORT_OUTPUT", ""),
			XLSX:   getEnvOrDefault("RBA_REPORT_XLSX", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "INFO"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
		Demo: DemoConfig{
			Seed:         seed,
			Participants: getEnvIntOrDefault("RBA_DEMO_PARTICIPANTS", 10),
		},
		Store: StoreConfig{
			DSN: getEnvOrDefault("RBA_STORE_DSN", ""),
		},
		Server: ServerConfig{
			Addr: getEnvOrDefault("RBA_HTTP_ADDR", ":8080"),
		},
		Workers: getEnvIntOrDefault("RBA_WORKERS", 4),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// Validate checks values that flags may also have overridden
func (c *Config) Validate() error {
	switch c.Report.Format {
	case FormatText, FormatJSON, FormatMarkdown, FormatHTML:
	default:
		return errors.ConfigInvalid(fmt.Sprintf("unsupported report format %q (want text, json, markdown or html)", c.Report.Format))
	}
	if strings.TrimSpace(c.Data.ParticipantColumn) == "" {
		return errors.ConfigInvalid("participant column is required")
	}
	if strings.TrimSpace(c.Data.ValueColumn) == "" {
		return errors.ConfigInvalid("value column is required")
	}
	if c.Workers <= 0 {
		return errors.ConfigInvalid("RBA_WORKERS must be > 0")
	}
	if c.Demo.Participants < 2 {
		return errors.ConfigInvalid("RBA_DEMO_PARTICIPANTS must be >= 2")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
