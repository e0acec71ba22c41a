package config

import (
	"fmt"
	"os"
	"strings"

	"vatdesk/internal/logger"
	"vatdesk/internal/vat"
)

// Ledger sources for tax declaration collection.
const (
	LedgerSourceNone     = "none"
	LedgerSourceSheets   = "sheets"
	LedgerSourceDatabase = "database"
)

type Config struct {
	// VAT Configuration
	VATRate vat.Rate

	// Ledger Source Configuration
	LedgerSource string

	// Google Sheets Configuration
	GoogleSheetURL string

	// Database Configuration
	DatabaseDriver string
	DatabaseDSN    string
	DatabaseDebug  bool

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	rate, err := vat.ParseRate(getEnv("VAT_RATE", "0.15"))
	if err != nil {
		return nil, fmt.Errorf("config validation failed: VAT_RATE: %w", err)
	}

	config := &Config{
		VATRate:        rate,
		LedgerSource:   strings.ToLower(getEnv("LEDGER_SOURCE", LedgerSourceNone)),
		GoogleSheetURL: getEnv("GOOGLE_SHEET_URL", ""),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "postgres")),
		DatabaseDSN:    getEnv("DATABASE_DSN", ""),
		DatabaseDebug:  getEnv("DB_DEBUG", "") == "1",
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:  getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:      getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	switch c.LedgerSource {
	case LedgerSourceNone:
	case LedgerSourceSheets:
		if c.GoogleSheetURL == "" {
			return fmt.Errorf("GOOGLE_SHEET_URL is required when LEDGER_SOURCE=sheets")
		}
	case LedgerSourceDatabase:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required when LEDGER_SOURCE=database")
		}
		if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
			return fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("LEDGER_SOURCE must be one of none, sheets, database, got %q", c.LedgerSource)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
