package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "₹", cfg.Answers.CurrencySymbol)
	assert.Equal(t, 60, cfg.Answers.AgingDays)
	assert.Equal(t, 10, cfg.Answers.AgingLimit)
	assert.False(t, cfg.Answers.IncludeNegative)
	assert.NotEmpty(t, cfg.Fallback.DataQuestionMessage)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.yaml")
	content := `
database:
  driver: sqlite
  sqlite:
    path: data/converted.db
answers:
  currency_symbol: "Rs."
  aging_days: 90
fallback:
  data_question_message: ""
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data", "converted.db"), cfg.Database.SQLite.Path)
	assert.Equal(t, "Rs.", cfg.Answers.CurrencySymbol)
	assert.Equal(t, 90, cfg.Answers.AgingDays)
	// untouched keys keep their defaults
	assert.Equal(t, 10, cfg.Answers.AgingLimit)
	assert.NotEmpty(t, cfg.Fallback.RefusalMessage)
	assert.Empty(t, cfg.Fallback.DataQuestionMessage)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://ledger@localhost/ledger?sslmode=disable")
	t.Setenv("LEDGER_INCLUDE_NEGATIVE", "true")
	t.Setenv("LEDGER_AGING_DAYS", "30")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://ledger@localhost/ledger?sslmode=disable", cfg.DatabaseDSN())
	assert.True(t, cfg.Answers.IncludeNegative)
	assert.Equal(t, 30, cfg.Answers.AgingDays)
	assert.Equal(t, "debug", cfg.Observability.LogLevel)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"missing sqlite path", func(c *Config) { c.Database.SQLite.Path = "" }},
		{"missing postgres dsn", func(c *Config) { c.Database.Driver = "postgres" }},
		{"zero aging days", func(c *Config) { c.Answers.AgingDays = 0 }},
		{"zero aging limit", func(c *Config) { c.Answers.AgingLimit = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
