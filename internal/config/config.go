// Package config loads client configuration and sets up logging.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration values.
type Config struct {
	// StudyBuddy server
	ServerURL     string        `yaml:"server_url"`
	ClientTimeout time.Duration `yaml:"client_timeout"`

	// Local state
	StateDir string `yaml:"state_dir"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`

	// Raw level string from the config file, resolved into LogLevel.
	LogLevelName string `yaml:"log_level"`
}

// Load reads configuration from an optional YAML file
// (~/.studybuddy/config.yaml) with environment variables taking precedence.
func Load() Config {
	cfg := Config{
		ServerURL:     "http://localhost:8000",
		ClientTimeout: 30 * time.Second,
		LogFile:       filepath.Join(os.TempDir(), "studybuddy.log"),
		LogLevel:      slog.LevelInfo,
	}

	if home, err := os.UserHomeDir(); err == nil {
		cfg.StateDir = filepath.Join(home, ".studybuddy")
		if data, err := os.ReadFile(filepath.Join(cfg.StateDir, "config.yaml")); err == nil {
			// A broken config file falls back to defaults rather than
			// blocking startup.
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: ignoring malformed config file: %v\n", err)
			}
		}
	}
	if cfg.LogLevelName != "" {
		cfg.LogLevel = parseLogLevel(cfg.LogLevelName)
	}

	cfg.ServerURL = getEnv("STUDYBUDDY_SERVER_URL", cfg.ServerURL)
	cfg.StateDir = getEnv("STUDYBUDDY_STATE_DIR", cfg.StateDir)
	cfg.LogFile = getEnv("STUDYBUDDY_LOG_FILE", cfg.LogFile)
	if lvl := os.Getenv("STUDYBUDDY_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = parseLogLevel(lvl)
	}
	if t := os.Getenv("STUDYBUDDY_CLIENT_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.ClientTimeout = d
		}
	}

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
