package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	DataDir    string
	Store      string
	SQLitePath string
	LogLevel   string

	sqliteFromDataDir bool
}

// Load reads configuration from an optional .env file and environment variables.
// It does not validate; callers apply their overrides first and then call Validate.
func Load() (*Config, error) {
	// Missing .env is fine; real environment variables still apply.
	_ = godotenv.Load()

	dataDir := getEnv("LIBRARY_DATA_DIR", ".")
	cfg := &Config{
		DataDir:    dataDir,
		Store:      strings.ToLower(strings.TrimSpace(getEnv("LIBRARY_STORE", "json"))),
		SQLitePath: getEnv("LIBRARY_SQLITE_PATH", ""),
		LogLevel:   strings.ToLower(strings.TrimSpace(getEnv("LIBRARY_LOG_LEVEL", "info"))),
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(dataDir, "library.db")
		cfg.sqliteFromDataDir = true
	}
	return cfg, nil
}

// Validate checks the values that have a fixed set of options.
func (c *Config) Validate() error {
	if c.Store != "json" && c.Store != "sqlite" {
		return fmt.Errorf("invalid LIBRARY_STORE: '%s' (must be 'json' or 'sqlite')", c.Store)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// SetDataDir moves the data directory. A SQLite path that was derived from
// the old directory follows it.
func (c *Config) SetDataDir(dir string) {
	c.DataDir = dir
	if c.sqliteFromDataDir {
		c.SQLitePath = filepath.Join(dir, "library.db")
	}
}

// SetSQLitePath pins the SQLite database file.
func (c *Config) SetSQLitePath(path string) {
	c.SQLitePath = path
	c.sqliteFromDataDir = false
}

// StorePath returns the location handed to the selected store.
func (c *Config) StorePath() string {
	if c.Store == "sqlite" {
		return c.SQLitePath
	}
	return c.DataDir
}

// Level parses LogLevel into a slog level.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid LIBRARY_LOG_LEVEL: '%s'", c.LogLevel)
	}
	return lvl, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
