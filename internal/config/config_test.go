package config_test

import (
	"testing"
	"time"

	"tokoshop/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	config.SetDefaults(v)
	for k, val := range overrides {
		v.Set(k, val)
	}
	return v
}

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := config.FromViper(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "all", cfg.Service)
	assert.Equal(t, ":8080", cfg.Port)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.Equal(t, 30*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "orders", cfg.RabbitMQ.Exchange)
	assert.Equal(t, 5, cfg.Shop.LowStockThreshold)
	assert.False(t, cfg.IsProduction())
}

func TestFromViper_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]any
		wantErr   string
	}{
		{"unknown driver", map[string]any{"DB_DRIVER": "oracle"}, "unsupported DB_DRIVER"},
		{"bad log level", map[string]any{"LOG_LEVEL": "loud"}, "invalid log level"},
		{"bad log format", map[string]any{"LOG_FORMAT": "xml"}, "invalid log format"},
		{"empty secret", map[string]any{"JWT_SECRET": ""}, "JWT_SECRET is required"},
		{"dev secret in production", map[string]any{"APP_ENV": "production"}, "must be set in production"},
		{"zero pool", map[string]any{"DB_MAX_OPEN_CONNS": 0}, "pool sizes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.FromViper(newViper(tt.overrides))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromViper_ProductionWithSecret(t *testing.T) {
	cfg, err := config.FromViper(newViper(map[string]any{
		"APP_ENV":    "production",
		"JWT_SECRET": "a-real-secret",
		"SERVICE":    "ORDER",
	}))
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "order", cfg.Service)
}
