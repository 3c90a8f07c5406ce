// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir  string // Directory holding the panel database, always absolute
	LogLevel string
	Port     int
	DevMode  bool

	Controller    ControllerConfig
	Connectivity  ConnectivityConfig
	Notifications NotificationsConfig
}

// ControllerConfig locates the traffic light controller
type ControllerConfig struct {
	Host    string
	Port    int
	URL     string // overrides Host and Port when set
	Timeout time.Duration
}

// BaseURL returns the controller address
func (c ControllerConfig) BaseURL() string {
	if c.URL != "" {
		return c.URL
	}
	return "http://" + net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// ConnectivityConfig holds the offline retry and indicator timings
type ConnectivityConfig struct {
	RetryInterval time.Duration
	IndicatorTTL  time.Duration
}

// NotificationsConfig holds toast feed and activity log settings
type NotificationsConfig struct {
	BufferSize int
	Retention  time.Duration
}

// Defaults returns the configuration used when nothing is set
func Defaults() *Config {
	return &Config{
		DataDir:  "./data",
		LogLevel: "info",
		Port:     8000,
		Controller: ControllerConfig{
			Host:    "localhost",
			Port:    8080,
			Timeout: 5 * time.Second,
		},
		Connectivity: ConnectivityConfig{
			RetryInterval: 5 * time.Second,
			IndicatorTTL:  7 * time.Second,
		},
		Notifications: NotificationsConfig{
			BufferSize: 50,
			Retention:  30 * 24 * time.Hour,
		},
	}
}

// Load reads configuration from the optional YAML file named by
// PANEL_CONFIG_FILE and from environment variables. Environment wins.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := Defaults()

	if path := getEnv("PANEL_CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	absDataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	cfg.DataDir = absDataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("PANEL_DATA_DIR", c.DataDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Port = getEnvAsInt("PANEL_PORT", c.Port)
	c.DevMode = getEnvAsBool("DEV_MODE", c.DevMode)

	c.Controller.Host = getEnv("CONTROLLER_HOST", c.Controller.Host)
	c.Controller.Port = getEnvAsInt("CONTROLLER_PORT", c.Controller.Port)
	c.Controller.URL = getEnv("CONTROLLER_URL", c.Controller.URL)
	c.Controller.Timeout = getEnvAsDuration("CONTROLLER_TIMEOUT", c.Controller.Timeout)

	c.Connectivity.RetryInterval = getEnvAsDuration("RETRY_INTERVAL", c.Connectivity.RetryInterval)
	c.Connectivity.IndicatorTTL = getEnvAsDuration("ONLINE_INDICATOR_TTL", c.Connectivity.IndicatorTTL)

	c.Notifications.BufferSize = getEnvAsInt("NOTIFICATION_BUFFER", c.Notifications.BufferSize)
	c.Notifications.Retention = getEnvAsDuration("NOTIFICATION_RETENTION", c.Notifications.Retention)
}

// Validate checks the configuration for values the panel cannot run with
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid panel port %d", c.Port)
	}
	if c.Controller.URL == "" {
		if c.Controller.Host == "" {
			return fmt.Errorf("controller host is required")
		}
		if c.Controller.Port <= 0 || c.Controller.Port > 65535 {
			return fmt.Errorf("invalid controller port %d", c.Controller.Port)
		}
	} else {
		u, err := url.Parse(c.Controller.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid controller url %q", c.Controller.URL)
		}
	}
	if c.Controller.Timeout <= 0 {
		return fmt.Errorf("controller timeout must be positive")
	}
	if c.Connectivity.RetryInterval < time.Second {
		return fmt.Errorf("retry interval must be at least one second")
	}
	if c.Connectivity.IndicatorTTL <= 0 {
		return fmt.Errorf("online indicator ttl must be positive")
	}
	if c.Notifications.BufferSize <= 0 {
		return fmt.Errorf("notification buffer must be positive")
	}
	if c.Notifications.Retention <= 0 {
		return fmt.Errorf("notification retention must be positive")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
