package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validConfig = `app:
  name: "CabinDesk"
  environment: "development"
  port: 8080
  timezone: "Europe/Rome"

database:
  driver: "sqlite"
  filename: "data/cabins.db"

bookings:
  page_size: 25
  cache_ttl: 30s

status_sync:
  enabled: true
  cron: "*/30 * * * *"
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(validConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if cfg.Bookings.PageSize != 25 {
		t.Fatalf("PageSize = %d, want 25", cfg.Bookings.PageSize)
	}
	if cfg.Bookings.BreakfastPrice != DefaultBreakfastPrice {
		t.Fatalf("BreakfastPrice = %d, want %d", cfg.Bookings.BreakfastPrice, DefaultBreakfastPrice)
	}
	if cfg.Bookings.DefaultWindowDays != DefaultWindowDays {
		t.Fatalf("DefaultWindowDays = %d, want %d", cfg.Bookings.DefaultWindowDays, DefaultWindowDays)
	}
	if cfg.Bookings.CacheTTL != 30*time.Second {
		t.Fatalf("CacheTTL = %v, want 30s", cfg.Bookings.CacheTTL)
	}
	if cfg.Location().String() != "Europe/Rome" {
		t.Fatalf("Location = %s, want Europe/Rome", cfg.Location())
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "missing_name", mutate: func(c *Config) { c.App.Name = "" }, want: "app name is required"},
		{name: "missing_port", mutate: func(c *Config) { c.App.Port = 0 }, want: "app port is required"},
		{name: "bad_timezone", mutate: func(c *Config) { c.App.Timezone = "Mars/Olympus" }, want: "invalid app timezone"},
		{name: "bad_driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, want: "unsupported database driver"},
		{name: "missing_filename", mutate: func(c *Config) { c.Database.Filename = "" }, want: "database filename is required"},
		{name: "negative_page_size", mutate: func(c *Config) { c.Bookings.PageSize = -1 }, want: "page_size must be positive"},
		{name: "negative_ttl", mutate: func(c *Config) { c.Bookings.CacheTTL = -time.Second }, want: "cache_ttl must be 0 or greater"},
		{name: "bad_cron", mutate: func(c *Config) { c.StatusSync.Cron = "every day" }, want: "invalid status_sync cron"},
		{name: "email_without_sender", mutate: func(c *Config) {
			c.Email.Enabled = true
			c.Email.Region = "eu-west-1"
		}, want: "email sender is required"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := Parse([]byte(validConfig))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			test.mutate(cfg)
			err = cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), test.want) {
				t.Fatalf("Validate() = %v, want error containing %q", err, test.want)
			}
		})
	}
}

func TestLoad_ReadsSecretsFromEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(validConfig), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("APP_SECRET_KEY", "staff-token")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.App.SecretKey != "staff-token" {
		t.Fatalf("SecretKey = %q, want staff-token", cfg.App.SecretKey)
	}
}
