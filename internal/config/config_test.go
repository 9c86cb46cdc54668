package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"STORE_DRIVER", "DATABASE_URI", "BOLT_PATH", "HTTP_ADDR", "POLL_INTERVAL",
		"EXPAND_MAX_OCCURRENCES", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DriverBolt, cfg.StoreDriver)
	assert.Equal(t, "calendar.db", cfg.BoltPath)
	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, time.Second, cfg.PollInterval)
	assert.Equal(t, 366, cfg.MaxOccurrences)
	assert.False(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URI", "postgres://localhost/calendar")
	t.Setenv("POLL_INTERVAL", "500ms")
	t.Setenv("EXPAND_MAX_OCCURRENCES", "52")
	t.Setenv("TELEGRAM_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "-1001234567890")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 52, cfg.MaxOccurrences)
	assert.Equal(t, int64(-1001234567890), cfg.TelegramChatID)
	assert.True(t, cfg.TelegramEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"POLL_INTERVAL":          "soon",
		"EXPAND_MAX_OCCURRENCES": "many",
		"TELEGRAM_CHAT_ID":       "chat",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	base := Config{StoreDriver: DriverBolt, BoltPath: "x.db", PollInterval: time.Second, MaxOccurrences: 1}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"postgres without uri", func(c *Config) { c.StoreDriver = DriverPostgres }},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }},
		{"zero occurrence cap", func(c *Config) { c.MaxOccurrences = 0 }},
		{"telegram without chat", func(c *Config) { c.TelegramToken = "token" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
	assert.NoError(t, base.Validate())
}
