package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	// Schema profile
	Profile string

	// Database
	SQLiteDBPath string

	// AMQP change notifications (optional: empty URL disables them)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Admin bootstrap for the ledger profile (empty password skips seeding)
	AdminUsername string
	AdminPassword string
}

func Load() *Config {
	cfg := &Config{
		Profile:      getEnv("PROFILE", "ledger"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/wealthbook.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "wealthbook"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "record_changes"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	return cfg
}

// EventsEnabled reports whether change notifications are configured.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate profile
	validProfiles := []string{"ledger", "tracker"}
	isValidProfile := false
	for _, profile := range validProfiles {
		if c.Profile == profile {
			isValidProfile = true
			break
		}
	}
	if !isValidProfile {
		errors = append(errors, fmt.Sprintf("invalid profile '%s': must be one of %v", c.Profile, validProfiles))
	}

	// Validate database path
	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.AdminPassword != "" && c.AdminUsername == "" {
		errors = append(errors, "admin username cannot be empty when an admin password is provided")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
