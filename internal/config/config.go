// Package config loads service settings from a YAML file, an optional .env
// file and environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultListen       = ":8080"
	defaultDBPath       = "./data/treats.db"
	defaultLogLevel     = "info"
	defaultTimezone     = "Asia/Karachi"
	defaultCurrency     = "PKR"
	defaultReminderCron = "0 8 * * *"
)

// Config is the top-level service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// Timezone is the IANA zone whose calendar days decide bill urgency.
	Timezone string `yaml:"timezone"`

	// Currency prefixes formatted amounts.
	Currency string `yaml:"currency"`

	// AuthorizedEmails may create and edit plans, events and bills.
	AuthorizedEmails []string `yaml:"authorized_emails"`

	// JWTSecret verifies identity tokens (HS256).
	JWTSecret string `yaml:"jwt_secret"`

	// ReminderCron schedules the urgent-bill reminder (five-field cron).
	// Empty disables reminders.
	ReminderCron string `yaml:"reminder_cron"`

	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `yaml:"cors_origins"`

	// StaticDir holds a built web client to serve at /. Empty serves the API only.
	StaticDir string `yaml:"static_dir"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       defaultListen,
		DBPath:       defaultDBPath,
		LogLevel:     defaultLogLevel,
		Timezone:     defaultTimezone,
		Currency:     defaultCurrency,
		ReminderCron: defaultReminderCron,
		CORSOrigins:  []string{"*"},
	}
}

// Normalize fills in zero values with defaults and tidies list entries.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
	if c.Currency == "" {
		c.Currency = defaultCurrency
	}
	c.AuthorizedEmails = cleanList(c.AuthorizedEmails)
	c.CORSOrigins = cleanList(c.CORSOrigins)
}

// Validate reports settings the service cannot start without.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("jwt_secret is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// LoadDotEnv loads path into the process environment when the file exists.
// Variables already set are not overridden.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the YAML file at path, applies environment overrides and
// normalizes the result. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv(os.Getenv)
	cfg.Normalize()
	return cfg, nil
}

// applyEnv overrides settings from TREATS_* variables and LOG_LEVEL.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.Listen, "TREATS_LISTEN")
	set(&c.DBPath, "TREATS_DB_PATH")
	set(&c.JWTSecret, "TREATS_JWT_SECRET")
	set(&c.Timezone, "TREATS_TIMEZONE")
	set(&c.Currency, "TREATS_CURRENCY")
	set(&c.ReminderCron, "TREATS_REMINDER_CRON")
	set(&c.StaticDir, "TREATS_STATIC_DIR")
	set(&c.LogLevel, "LOG_LEVEL")
	if v := getenv("TREATS_AUTHORIZED_EMAILS"); v != "" {
		c.AuthorizedEmails = strings.Split(v, ",")
	}
	if v := getenv("TREATS_CORS_ORIGINS"); v != "" {
		c.CORSOrigins = strings.Split(v, ",")
	}
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
