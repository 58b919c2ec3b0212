package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	// HTTP server
	Port string

	// Database
	SQLiteDBPath string

	// Sessions / auth
	SessionSecret string
	BcryptCost    int

	// Dashboard
	DashboardMonths int
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		SQLiteDBPath:    getEnv("SQLITE_DB_PATH", "./data/fintrack.db"),
		SessionSecret:   getEnv("SESSION_SECRET", ""),
		BcryptCost:      getEnvInt("BCRYPT_COST", 12),
		DashboardMonths: getEnvInt("DASHBOARD_MONTHS", 6),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

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

	if len(c.SessionSecret) < 32 {
		errors = append(errors, "session secret must be at least 32 bytes")
	}

	// bcrypt rejects costs outside [4, 31]; anything above 15 is
	// impractically slow for a login path.
	if c.BcryptCost < 4 || c.BcryptCost > 15 {
		errors = append(errors, fmt.Sprintf("invalid bcrypt cost %d: must be between 4 and 15", c.BcryptCost))
	}

	if c.DashboardMonths < 1 || c.DashboardMonths > 60 {
		errors = append(errors, fmt.Sprintf("invalid dashboard months %d: must be between 1 and 60", c.DashboardMonths))
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

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
