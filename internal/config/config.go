// Package config provides configuration loading and validation for the outreach service.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds the service configuration.
// Values come from defaults, an optional config file and OUTREACH_* environment variables,
// in increasing order of precedence.
type Config struct {
	DatabaseURL string
	Port        int
	Env         string // "development" or "production"
	LogLevel    string
	Timezone    string // IANA zone used to decide what "today" means
	AutoMigrate bool

	AuthEnabled bool

	ReminderEnabled  bool
	ReminderSchedule string // cron expression or descriptor

	CORSAllowedOrigins []string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Port:               8080,
		Env:                "development",
		LogLevel:           "info",
		Timezone:           "Local",
		AutoMigrate:        true,
		AuthEnabled:        true,
		ReminderEnabled:    true,
		ReminderSchedule:   "@every 1h",
		CORSAllowedOrigins: []string{"*"},
	}
}

// Load reads configuration from path (if non-empty) or from an "outreach" config file in the
// working directory (if present), then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("port", cfg.Port)
	v.SetDefault("env", cfg.Env)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("timezone", cfg.Timezone)
	v.SetDefault("auto_migrate", cfg.AutoMigrate)
	v.SetDefault("auth.enabled", cfg.AuthEnabled)
	v.SetDefault("reminder.enabled", cfg.ReminderEnabled)
	v.SetDefault("reminder.schedule", cfg.ReminderSchedule)
	v.SetDefault("cors.allowed_origins", cfg.CORSAllowedOrigins)

	// DATABASE_URL is accepted without the prefix for compatibility with hosting platforms.
	if err := v.BindEnv("database_url", "OUTREACH_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind database_url: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("outreach")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg.DatabaseURL = v.GetString("database_url")
	cfg.Port = v.GetInt("port")
	cfg.Env = v.GetString("env")
	cfg.LogLevel = v.GetString("log_level")
	cfg.Timezone = v.GetString("timezone")
	cfg.AutoMigrate = v.GetBool("auto_migrate")
	cfg.AuthEnabled = v.GetBool("auth.enabled")
	cfg.ReminderEnabled = v.GetBool("reminder.enabled")
	cfg.ReminderSchedule = v.GetString("reminder.schedule")
	cfg.CORSAllowedOrigins = v.GetStringSlice("cors.allowed_origins")

	return cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config error: database_url is required (set DATABASE_URL)")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port must be between 1 and 65535, got %d", c.Port)
	}
	if c.Env != "development" && c.Env != "production" {
		return fmt.Errorf("config error: env must be 'development' or 'production', got %q", c.Env)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.ReminderEnabled {
		if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
			return fmt.Errorf("config error: invalid reminder schedule %q: %w", c.ReminderSchedule, err)
		}
	}
	return nil
}

// Location resolves Timezone. "Local" and "" mean the process's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config error: unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
