package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvDashboard = "DASHGRID_DASHBOARD"
	EnvLogLevel  = "DASHGRID_LOG_LEVEL"
	EnvLogFormat = "DASHGRID_LOG_FORMAT"
	EnvWorkers   = "DASHGRID_WORKERS"
	EnvPort      = "DASHGRID_PORT"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DashboardPath string // hcl file or directory

	LogFormat string
	LogLevel  string
	// Workers bounds the number of targets resolved concurrently in one pass.
	// Zero means one per CPU.
	Workers int
	// Port is the listen port of the serve command. Zero disables it.
	Port int
}

// ConfigFromEnv builds a Config from the process environment. A .env file in
// the working directory, when present, seeds variables that are not already
// set; an explicit envFile must exist.
func ConfigFromEnv(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file %q: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	workers, err := envInt(EnvWorkers, 0)
	if err != nil {
		return nil, err
	}
	port, err := envInt(EnvPort, 0)
	if err != nil {
		return nil, err
	}

	return &Config{
		DashboardPath: os.Getenv(EnvDashboard),
		LogFormat:     envStr(EnvLogFormat, "text"),
		LogLevel:      envStr(EnvLogLevel, "info"),
		Workers:       workers,
		Port:          port,
	}, nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DashboardPath == "" {
		errs = append(errs, errors.New("dashboard path is required"))
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("invalid log format %q: must be 'text' or 'json'", c.LogFormat))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	return errors.Join(errs...)
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
