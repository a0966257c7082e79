package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Storage
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DataFile    string `mapstructure:"DATA_FILE"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	StoreKey    string `mapstructure:"STORE_KEY"`

	Timezone             string `mapstructure:"TIMEZONE"`
	CORSAllowedOrigins   string `mapstructure:"CORS_ALLOWED_ORIGINS"`
	BookingRatePerMinute int    `mapstructure:"BOOKING_RATE_PER_MINUTE"`
	TrustedProxyHops     int    `mapstructure:"TRUSTED_PROXY_HOPS"`

	// Admin auth
	AdminEmail        string `mapstructure:"ADMIN_EMAIL"`
	AdminPasswordHash string `mapstructure:"ADMIN_PASSWORD_HASH"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	JWTTTLMinutes     int    `mapstructure:"JWT_TTL_MINUTES"`

	// Notifications
	SendGridAPIKey    string `mapstructure:"SENDGRID_API_KEY"`
	SendGridFromEmail string `mapstructure:"SENDGRID_FROM_EMAIL"`
	SendGridFromName  string `mapstructure:"SENDGRID_FROM_NAME"`
	TwilioAccountSID  string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken   string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioFromNumber  string `mapstructure:"TWILIO_FROM_NUMBER"`
	BusinessName      string `mapstructure:"BUSINESS_NAME"`

	// Jobs
	ReminderCron           string `mapstructure:"REMINDER_CRON"`
	PurgeCron              string `mapstructure:"PURGE_CRON"`
	CancelledRetentionDays int    `mapstructure:"CANCELLED_RETENTION_DAYS"`
}

var defaults = map[string]any{
	"PORT":                     "8080",
	"ENV":                      "development",
	"LOG_LEVEL":                "info",
	"STORE_DRIVER":             "file",
	"DATA_FILE":                "data/appointments.json",
	"DATABASE_URL":             "",
	"STORE_KEY":                "default",
	"TIMEZONE":                 "UTC",
	"CORS_ALLOWED_ORIGINS":     "*",
	"BOOKING_RATE_PER_MINUTE":  30,
	"TRUSTED_PROXY_HOPS":       0,
	"ADMIN_EMAIL":              "",
	"ADMIN_PASSWORD_HASH":      "",
	"JWT_SECRET":               "",
	"JWT_TTL_MINUTES":          60,
	"SENDGRID_API_KEY":         "",
	"SENDGRID_FROM_EMAIL":      "",
	"SENDGRID_FROM_NAME":       "",
	"TWILIO_ACCOUNT_SID":       "",
	"TWILIO_AUTH_TOKEN":        "",
	"TWILIO_FROM_NUMBER":       "",
	"BUSINESS_NAME":            "Appointments",
	"REMINDER_CRON":            "0 18 * * *",
	"PURGE_CRON":               "30 3 * * *",
	"CANCELLED_RETENTION_DAYS": 0,
}

// Load reads config.yaml from the working directory or ./config if present,
// then lets environment variables override it.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case "file":
		if c.DataFile == "" {
			return errors.New("DATA_FILE is required when STORE_DRIVER=file")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE_DRIVER=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.TrustedProxyHops < 0 {
		return errors.New("TRUSTED_PROXY_HOPS must not be negative")
	}
	if c.CancelledRetentionDays < 0 {
		return errors.New("CANCELLED_RETENTION_DAYS must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLMinutes) * time.Minute
}

func (c *Config) CancelledRetention() time.Duration {
	return time.Duration(c.CancelledRetentionDays) * 24 * time.Hour
}
