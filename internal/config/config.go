package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// FINTRACK_SQLITE_DB_PATH for sqlite.db_path.
const EnvPrefix = "FINTRACK"

var (
	validBackends   = []string{"memory", "sqlite"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"text", "json"}
)

type Config struct {
	// Default user for the command line
	UserID int64

	// Backend selection
	DataBackend   string
	DataDirectory string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets report export
	GoogleSpreadsheetID   string
	GoogleReportSheet     string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	// Workers
	RecurringInterval time.Duration
	RefreshInterval   time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// NewViper returns a viper instance with every default registered and
// FINTRACK_ environment variables bound.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("user.id", 1)
	v.SetDefault("data.backend", "sqlite")
	v.SetDefault("data.directory", "data")
	v.SetDefault("sqlite.db_path", "./data/fintrack.db")
	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "fintrack")
	v.SetDefault("amqp.queue", "ledger_events")
	v.SetDefault("google.spreadsheet_id", "")
	v.SetDefault("google.report_sheet", "Report")
	v.SetDefault("google.credentials_json", "")
	v.SetDefault("google.credentials_file", "")
	v.SetDefault("recurring.interval", time.Hour)
	v.SetDefault("refresh.interval", 15*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from the environment and, when path is not
// empty, from a yaml file. Environment variables win over the file.
func Load(path string) (*Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return FromViper(v), nil
}

// FromViper builds a Config from an already prepared viper instance, so
// commands can bind their own flags first.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		UserID: v.GetInt64("user.id"),

		DataBackend:   strings.ToLower(strings.TrimSpace(v.GetString("data.backend"))),
		DataDirectory: v.GetString("data.directory"),

		SQLiteDBPath: v.GetString("sqlite.db_path"),

		AMQPURL:      v.GetString("amqp.url"),
		AMQPExchange: v.GetString("amqp.exchange"),
		AMQPQueue:    v.GetString("amqp.queue"),

		GoogleSpreadsheetID:   v.GetString("google.spreadsheet_id"),
		GoogleReportSheet:     v.GetString("google.report_sheet"),
		GoogleCredentialsJSON: v.GetString("google.credentials_json"),
		GoogleCredentialsFile: v.GetString("google.credentials_file"),

		RecurringInterval: v.GetDuration("recurring.interval"),
		RefreshInterval:   v.GetDuration("refresh.interval"),

		LogLevel:  strings.ToLower(v.GetString("logging.level")),
		LogFormat: strings.ToLower(v.GetString("logging.format")),
	}
}

// SheetsEnabled reports whether a spreadsheet is configured for exports.
func (c *Config) SheetsEnabled() bool {
	return strings.TrimSpace(c.GoogleSpreadsheetID) != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var problems []string

	if c.UserID < 1 {
		problems = append(problems, fmt.Sprintf("invalid user id %d: must be positive", c.UserID))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.SheetsEnabled() && c.GoogleCredentialsFile != "" {
		if _, err := os.Stat(c.GoogleCredentialsFile); errors.Is(err, os.ErrNotExist) {
			problems = append(problems, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
		}
	}

	problems = append(problems, checkInterval("recurring", c.RecurringInterval)...)
	problems = append(problems, checkInterval("refresh", c.RefreshInterval)...)

	if !slices.Contains(validLogLevels, c.LogLevel) {
		problems = append(problems, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}
	if !slices.Contains(validLogFormats, c.LogFormat) {
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be one of %v", c.LogFormat, validLogFormats))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func checkInterval(name string, d time.Duration) []string {
	switch {
	case d < time.Second:
		return []string{fmt.Sprintf("invalid %s interval %v: must be at least 1 second", name, d)}
	case d > 24*time.Hour:
		return []string{fmt.Sprintf("invalid %s interval %v: must be at most 24 hours", name, d)}
	}
	return nil
}
