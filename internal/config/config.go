package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted by Defaults.
const (
	EnvModulesPath     = "MODLINK_MODULES_PATH"
	EnvLogLevel        = "MODLINK_LOG_LEVEL"
	EnvLogFormat       = "MODLINK_LOG_FORMAT"
	EnvOutput          = "MODLINK_OUTPUT"
	EnvHealthcheckPort = "MODLINK_HEALTHCHECK_PORT"
)

const (
	OutputJSON = "json"
	OutputText = "text"
)

// Config holds everything an App needs for one run.
type Config struct {
	ModulesPath     string   // .hcl file or directory of manifests
	Targets         []string // modules to load, in order
	LogLevel        string
	LogFormat       string
	Output          string
	HealthcheckPort int
	// AllowRemote lets imports of http and https URLs be fetched.
	AllowRemote bool
}

// Defaults returns the configuration used before flags are applied. Values
// come from the environment, optionally seeded from a .env file in the
// working directory, falling back to built-in defaults.
func Defaults() Config {
	// A missing .env file is the common case.
	_ = godotenv.Load()

	cfg := Config{
		ModulesPath: envOr(EnvModulesPath, "modules"),
		LogLevel:    envOr(EnvLogLevel, "info"),
		LogFormat:   envOr(EnvLogFormat, "text"),
		Output:      envOr(EnvOutput, OutputJSON),
	}
	if port, err := strconv.Atoi(os.Getenv(EnvHealthcheckPort)); err == nil {
		cfg.HealthcheckPort = port
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// New normalizes and validates cfg.
func New(cfg Config) (*Config, error) {
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.Output = strings.ToLower(cfg.Output)

	if cfg.ModulesPath == "" {
		return nil, errors.New("ModulesPath is a required configuration field and cannot be empty")
	}
	if len(cfg.Targets) == 0 {
		return nil, errors.New("at least one module to load is required")
	}
	for _, t := range cfg.Targets {
		if t == "" {
			return nil, errors.New("module names cannot be empty")
		}
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, errors.New("invalid log-format: must be 'text' or 'json'")
	}
	if cfg.Output != OutputJSON && cfg.Output != OutputText {
		return nil, fmt.Errorf("invalid output: must be '%s' or '%s'", OutputJSON, OutputText)
	}
	if cfg.HealthcheckPort < 0 || cfg.HealthcheckPort > 65535 {
		return nil, fmt.Errorf("invalid healthcheck-port %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
