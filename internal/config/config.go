package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverBolt     = "bolt"
)

type Config struct {
	StoreDriver    string
	DatabaseURI    string
	BoltPath       string
	HTTPAddr       string
	PollInterval   time.Duration
	MaxOccurrences int
	TelegramToken  string
	TelegramChatID int64
}

func Load() (*Config, error) {
	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	pollInterval, err := getDurationOrDefault("POLL_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}
	maxOccurrences, err := getIntOrDefault("EXPAND_MAX_OCCURRENCES", 366)
	if err != nil {
		return nil, err
	}
	chatID, err := getInt64OrDefault("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		StoreDriver:    getEnvOrDefault("STORE_DRIVER", DriverBolt),
		DatabaseURI:    os.Getenv("DATABASE_URI"),
		BoltPath:       getEnvOrDefault("BOLT_PATH", "calendar.db"),
		HTTPAddr:       getEnvOrDefault("HTTP_ADDR", ":3000"),
		PollInterval:   pollInterval,
		MaxOccurrences: maxOccurrences,
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: chatID,
	}, nil
}

// Validate checks the settings the selected store and sinks depend on.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURI == "" {
			return fmt.Errorf("DATABASE_URI is required for the postgres store")
		}
	case DriverBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("BOLT_PATH is required for the bolt store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL must be positive")
	}
	if c.MaxOccurrences < 1 {
		return fmt.Errorf("EXPAND_MAX_OCCURRENCES must be at least 1")
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_TOKEN is set")
	}
	return nil
}

// TelegramEnabled reports whether notifications should also go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramToken != ""
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getInt64OrDefault(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
