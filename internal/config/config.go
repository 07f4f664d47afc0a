// Package config loads runtime settings from the environment with viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every setting the server reads at startup.
type Config struct {
	AppPort        string
	DatabaseDriver string
	DatabaseDSN    string
	JWTSecret      string
	TokenTTL       time.Duration
	PageSize       int

	RabbitMQURL   string
	MailFrom      string
	SMTPAddr      string
	SMTPUsername  string
	SMTPPassword  string
	NotifyTimeout time.Duration

	AuthRateLimit float64
	AuthRateBurst int

	SuperuserUsername string
	SuperuserEmail    string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "yamdb.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("PAGE_SIZE", 5)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("MAIL_FROM", "mail@yamdb.com")
	v.SetDefault("SMTP_ADDR", "")
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("NOTIFY_TIMEOUT", "5s")
	v.SetDefault("AUTH_RATE_LIMIT", 1.0)
	v.SetDefault("AUTH_RATE_BURST", 5)
	v.SetDefault("SUPERUSER_USERNAME", "")
	v.SetDefault("SUPERUSER_EMAIL", "")
}

// Load reads the configuration from v, which should already have defaults
// and AutomaticEnv applied.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:           v.GetString("APP_PORT"),
		DatabaseDriver:    v.GetString("DATABASE_DRIVER"),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		TokenTTL:          v.GetDuration("TOKEN_TTL"),
		PageSize:          v.GetInt("PAGE_SIZE"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		MailFrom:          v.GetString("MAIL_FROM"),
		SMTPAddr:          v.GetString("SMTP_ADDR"),
		SMTPUsername:      v.GetString("SMTP_USERNAME"),
		SMTPPassword:      v.GetString("SMTP_PASSWORD"),
		NotifyTimeout:     v.GetDuration("NOTIFY_TIMEOUT"),
		AuthRateLimit:     v.GetFloat64("AUTH_RATE_LIMIT"),
		AuthRateBurst:     v.GetInt("AUTH_RATE_BURST"),
		SuperuserUsername: v.GetString("SUPERUSER_USERNAME"),
		SuperuserEmail:    v.GetString("SUPERUSER_EMAIL"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 5
	}
	if (cfg.SuperuserUsername == "") != (cfg.SuperuserEmail == "") {
		return Config{}, errors.New("SUPERUSER_USERNAME and SUPERUSER_EMAIL must be set together")
	}
	return cfg, nil
}

// FromEnv builds a viper instance bound to the environment and loads it.
func FromEnv() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return Load(v)
}
