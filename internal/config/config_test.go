package config_test

import (
	"testing"
	"time"

	"yamdb/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	v := newViper()
	v.Set("JWT_SECRET", "secret")

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, "mail@yamdb.com", cfg.MailFrom)
	assert.Equal(t, 1.0, cfg.AuthRateLimit)
	assert.Equal(t, 5, cfg.AuthRateBurst)
	assert.Empty(t, cfg.RabbitMQURL)
}

func TestLoad_Errors(t *testing.T) {
	v := newViper()
	_, err := config.Load(v)
	assert.ErrorContains(t, err, "JWT_SECRET")

	v.Set("JWT_SECRET", "secret")
	v.Set("DATABASE_DRIVER", "mysql")
	_, err = config.Load(v)
	assert.ErrorContains(t, err, "DATABASE_DRIVER")

	v.Set("DATABASE_DRIVER", "postgres")
	v.Set("SUPERUSER_USERNAME", "root")
	_, err = config.Load(v)
	assert.ErrorContains(t, err, "SUPERUSER_EMAIL")

	v.Set("SUPERUSER_EMAIL", "root@example.com")
	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "env_secret")
	t.Setenv("PAGE_SIZE", "20")
	t.Setenv("TOKEN_TTL", "1h")

	cfg, err := config.FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env_secret", cfg.JWTSecret)
	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
}
