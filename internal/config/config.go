package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const envPrefix = "HEATING"

// Config is built once at start-up and passed by pointer.
type Config struct {
	Port    string        `mapstructure:"port"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Netatmo NetatmoConfig `mapstructure:"netatmo"`
	Booking BookingConfig `mapstructure:"booking"`
	Planner PlannerConfig `mapstructure:"planner"`
	Status  StatusConfig  `mapstructure:"status"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

// AuthConfig holds the shared cron secret (plain or bcrypt hash) and the HS256 key for user bearer tokens.
type AuthConfig struct {
	CronSecret     string `mapstructure:"cron_secret"`
	CronSecretHash string `mapstructure:"cron_secret_hash"`
	JWTSecret      string `mapstructure:"jwt_secret"`
}

type NetatmoConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	TokenURL     string        `mapstructure:"token_url"`
	ClientID     string        `mapstructure:"client_id"`
	ClientSecret string        `mapstructure:"client_secret"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type BookingConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type PlannerConfig struct {
	Timezone      string `mapstructure:"timezone"`
	LookaheadDays int    `mapstructure:"lookahead_days"`
	Workers       int    `mapstructure:"workers"`
	// Cron is a robfig/cron spec; empty disables the in-process sweep.
	Cron string `mapstructure:"cron"`
}

type StatusConfig struct {
	Workers        int           `mapstructure:"workers"`
	StreamInterval time.Duration `mapstructure:"stream_interval"`
}

var defaults = map[string]any{
	"port":                   "8080",
	"log.level":              "info",
	"log.format":             "console",
	"db.path":                "app.db",
	"auth.cron_secret":       "",
	"auth.cron_secret_hash":  "",
	"auth.jwt_secret":        "",
	"netatmo.base_url":       "https://api.netatmo.com",
	"netatmo.token_url":      "https://api.netatmo.com/oauth2/token",
	"netatmo.client_id":      "",
	"netatmo.client_secret":  "",
	"netatmo.timeout":        15 * time.Second,
	"booking.base_url":       "",
	"booking.api_key":        "",
	"booking.timeout":        15 * time.Second,
	"planner.timezone":       "Europe/Rome",
	"planner.lookahead_days": 7,
	"planner.workers":        4,
	"planner.cron":           "",
	"status.workers":         4,
	"status.stream_interval": 30 * time.Second,
}

// Load reads path (if not empty), applies HEATING_* env overrides and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.CronSecret == "" && c.Auth.CronSecretHash == "" {
		errs = append(errs, errors.New("auth.cron_secret or auth.cron_secret_hash must be set"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret must be set"))
	}
	if c.Netatmo.BaseURL == "" || c.Netatmo.TokenURL == "" {
		errs = append(errs, errors.New("netatmo.base_url and netatmo.token_url must be set"))
	}
	if c.Booking.BaseURL == "" {
		errs = append(errs, errors.New("booking.base_url must be set"))
	}
	if _, err := time.LoadLocation(c.Planner.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("planner.timezone %q: %w", c.Planner.Timezone, err))
	}
	if c.Planner.LookaheadDays < 0 {
		errs = append(errs, fmt.Errorf("planner.lookahead_days must not be negative, got %d", c.Planner.LookaheadDays))
	}
	if c.Planner.Workers < 1 || c.Status.Workers < 1 {
		errs = append(errs, errors.New("planner.workers and status.workers must be at least 1"))
	}
	if c.Planner.Cron != "" {
		if _, err := cron.ParseStandard(c.Planner.Cron); err != nil {
			errs = append(errs, fmt.Errorf("planner.cron %q: %w", c.Planner.Cron, err))
		}
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be console or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Location returns the planner timezone. Only valid after Validate.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Planner.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
