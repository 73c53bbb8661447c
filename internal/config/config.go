// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPageSize       = 10
	DefaultBreakfastPrice = 15
	DefaultWindowDays     = 7
	DefaultFetchTimeout   = 10 * time.Second
	DefaultStatusSyncCron = "5 0 * * *"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Filename string `yaml:"filename"`
}

type BookingsConfig struct {
	PageSize          int   `yaml:"page_size"`
	BreakfastPrice    int64 `yaml:"breakfast_price"`
	DefaultWindowDays int   `yaml:"default_window_days"`
	// Zero treats every cached read as stale.
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
}

type StatusSyncConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	// Apply writes forward corrections; otherwise drift is only logged.
	Apply bool `yaml:"apply"`
}

type EmailConfig struct {
	Enabled         bool   `yaml:"enabled"`
	Region          string `yaml:"region"`
	Sender          string `yaml:"sender"`
	AccessKeyID     string `yaml:"-"` // Loaded from environment
	SecretAccessKey string `yaml:"-"` // Loaded from environment
}

type Config struct {
	App struct {
		Name        string `yaml:"name"`
		Environment string `yaml:"environment"`
		Port        int    `yaml:"port"`
		BaseURL     string `yaml:"base_url"`
		Timezone    string `yaml:"timezone"`
		// TrustProxy reads the client IP from X-Forwarded-For for auth lockouts.
		TrustProxy bool   `yaml:"trust_proxy"`
		SecretKey  string `yaml:"-"` // Loaded from environment
	} `yaml:"app"`

	Database   DatabaseConfig   `yaml:"database"`
	Bookings   BookingsConfig   `yaml:"bookings"`
	StatusSync StatusSyncConfig `yaml:"status_sync"`
	Email      EmailConfig      `yaml:"email"`

	Features struct {
		EnableDebug bool `yaml:"enable_debug"`
	} `yaml:"features"`
}

// Load loads both .env and yaml configuration
func Load(configPath string) (*Config, error) {
	envPath := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Load sensitive values from environment
	cfg.App.SecretKey = os.Getenv("APP_SECRET_KEY")
	cfg.Email.AccessKeyID = os.Getenv("AWS_SES_ACCESS_KEY_ID")
	cfg.Email.SecretAccessKey = os.Getenv("AWS_SES_SECRET_ACCESS_KEY")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Parse decodes yaml and fills in defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Environment == "" {
		c.App.Environment = "development"
	}
	if c.App.Timezone == "" {
		c.App.Timezone = "UTC"
	}
	if c.Bookings.PageSize == 0 {
		c.Bookings.PageSize = DefaultPageSize
	}
	if c.Bookings.BreakfastPrice == 0 {
		c.Bookings.BreakfastPrice = DefaultBreakfastPrice
	}
	if c.Bookings.DefaultWindowDays == 0 {
		c.Bookings.DefaultWindowDays = DefaultWindowDays
	}
	if c.Bookings.FetchTimeout == 0 {
		c.Bookings.FetchTimeout = DefaultFetchTimeout
	}
	if c.StatusSync.Cron == "" {
		c.StatusSync.Cron = DefaultStatusSyncCron
	}
}

func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app name is required")
	}
	if c.App.Port == 0 {
		return fmt.Errorf("app port is required")
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("invalid app timezone %q: %w", c.App.Timezone, err)
	}
	if c.Database.Driver == "" {
		return fmt.Errorf("database driver is required")
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Filename == "" {
			return fmt.Errorf("database filename is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	if c.Bookings.PageSize < 1 {
		return fmt.Errorf("bookings page_size must be positive")
	}
	if c.Bookings.BreakfastPrice < 0 {
		return fmt.Errorf("bookings breakfast_price must be 0 or greater")
	}
	if c.Bookings.DefaultWindowDays < 1 {
		return fmt.Errorf("bookings default_window_days must be positive")
	}
	if c.Bookings.CacheTTL < 0 {
		return fmt.Errorf("bookings cache_ttl must be 0 or greater")
	}

	if c.StatusSync.Enabled {
		if _, err := cron.ParseStandard(c.StatusSync.Cron); err != nil {
			return fmt.Errorf("invalid status_sync cron %q: %w", c.StatusSync.Cron, err)
		}
	}

	if c.Email.Enabled {
		if strings.TrimSpace(c.Email.Region) == "" {
			return fmt.Errorf("email region is required when email is enabled")
		}
		if strings.TrimSpace(c.Email.Sender) == "" {
			return fmt.Errorf("email sender is required when email is enabled")
		}
	}

	return nil
}

// Location returns the timezone used to decide what "today" is.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
