// Package config provides unified configuration loading for the Ledger Engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the Ledger Engine.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Answers       AnswerConfig        `yaml:"answers"`
	Fallback      FallbackConfig      `yaml:"fallback"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// AnswerConfig holds the knobs of the business-question engine.
type AnswerConfig struct {
	CurrencySymbol    string `yaml:"currency_symbol"`
	IncludeNegative   bool   `yaml:"include_negative"`
	AgingDays         int    `yaml:"aging_days"`
	AgingLimit        int    `yaml:"aging_limit"`
	StockTopItems     int    `yaml:"stock_top_items"`
	LowStockThreshold int    `yaml:"low_stock_threshold"`
}

// FallbackConfig controls what happens to questions the engine does not handle.
type FallbackConfig struct {
	RefusalMessage string `yaml:"refusal_message"`
	// DataQuestionMessage introduces the example questions offered for
	// unhandled data questions. Empty refuses those too.
	DataQuestionMessage string `yaml:"data_question_message"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}

		if cfg.Database.Driver == "sqlite" {
			cfg.Database.SQLite.Path = ResolveRelativePath(path, cfg.Database.SQLite.Path)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with defaults for local use against
// converted.db in the working directory.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "0.0.0.0",
			Port:             8086,
			ReadTimeout:      15 * time.Second,
			WriteTimeout:     15 * time.Second,
			IdleTimeout:      60 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			SQLite: SQLiteConfig{
				Path: "converted.db",
			},
		},
		Answers: AnswerConfig{
			CurrencySymbol:    "₹",
			IncludeNegative:   false,
			AgingDays:         60,
			AgingLimit:        10,
			StockTopItems:     3,
			LowStockThreshold: 10,
		},
		Fallback: FallbackConfig{
			RefusalMessage:      "I can only answer questions about the database; please ask about data or request a SQL query.",
			DataQuestionMessage: "I couldn't map that to a ledger report. Try asking, for example:",
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "console",
			ServiceName: "ledger-engine",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case "postgres":
		if c.Database.Postgres.DSN == "" {
			return fmt.Errorf("postgres dsn is required")
		}
	default:
		return fmt.Errorf("invalid database driver: %s", c.Database.Driver)
	}

	if c.Answers.AgingDays < 1 {
		return fmt.Errorf("aging_days must be positive")
	}
	if c.Answers.AgingLimit < 1 {
		return fmt.Errorf("aging_limit must be positive")
	}
	if c.Answers.StockTopItems < 0 || c.Answers.LowStockThreshold < 0 {
		return fmt.Errorf("stock settings must not be negative")
	}

	return nil
}

// DatabaseDSN returns the appropriate database connection string.
func (c *Config) DatabaseDSN() string {
	if c.Database.Driver == "sqlite" {
		return c.Database.SQLite.Path
	}
	return c.Database.Postgres.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Database.Driver = "sqlite"
			cfg.Database.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Database.Driver = "postgres"
			cfg.Database.Postgres.DSN = v
		}
	}

	if v := os.Getenv("LEDGER_DB_PATH"); v != "" {
		cfg.Database.Driver = "sqlite"
		cfg.Database.SQLite.Path = v
	}

	if v := os.Getenv("CURRENCY_SYMBOL"); v != "" {
		cfg.Answers.CurrencySymbol = v
	}

	if v := os.Getenv("LEDGER_INCLUDE_NEGATIVE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Answers.IncludeNegative = b
		}
	}

	if v := os.Getenv("LEDGER_AGING_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Answers.AgingDays = days
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

// ResolveRelativePath resolves a path relative to the config file location.
func ResolveRelativePath(configPath, targetPath string) string {
	if targetPath == "" || filepath.IsAbs(targetPath) {
		return targetPath
	}
	return filepath.Join(filepath.Dir(configPath), targetPath)
}
