package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything iotdash needs to reach the backend and run its views.
type Config struct {
	APIBase           string
	Token             string
	RequestTimeout    time.Duration
	PollInterval      time.Duration
	DashboardWindow   int
	SensorWindow      int
	PageSize          int
	RequestsPerSecond float64
	LogFile           string
	LogLevel          string
	MetricsAddr       string
}

// TokenEnv overrides the token from the config file when set.
const TokenEnv = "IOTDASH_TOKEN"

const (
	defaultConfigPath        = "~/.config/iotdash/config.toml"
	defaultAPIBase           = "http://127.0.0.1:8000"
	defaultRequestTimeout    = 10 * time.Second
	defaultPollInterval      = 5 * time.Second
	defaultDashboardWindow   = 10
	defaultSensorWindow      = 100
	defaultPageSize          = 10
	defaultRequestsPerSecond = 10
	defaultLogFile           = "~/.local/state/iotdash/iotdash.log"
	defaultLogLevel          = "info"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBase:           defaultAPIBase,
		RequestTimeout:    defaultRequestTimeout,
		PollInterval:      defaultPollInterval,
		DashboardWindow:   defaultDashboardWindow,
		SensorWindow:      defaultSensorWindow,
		PageSize:          defaultPageSize,
		RequestsPerSecond: defaultRequestsPerSecond,
		LogFile:           mustExpand(defaultLogFile),
		LogLevel:          defaultLogLevel,
	}
}

// Load locates and parses the config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIBase           string   `toml:"api_base"`
		Token             string   `toml:"token"`
		RequestTimeout    string   `toml:"request_timeout"`
		PollInterval      string   `toml:"poll_interval"`
		DashboardWindow   int      `toml:"dashboard_window"`
		SensorWindow      int      `toml:"sensor_window"`
		PageSize          int      `toml:"page_size"`
		RequestsPerSecond *float64 `toml:"requests_per_second"`
		LogFile           string   `toml:"log_file"`
		LogLevel          string   `toml:"log_level"`
		MetricsAddr       string   `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBase); v != "" {
		cfg.APIBase = v
	}
	cfg.Token = strings.TrimSpace(raw.Token)

	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, defaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.PollInterval, err = parseDuration("poll_interval", raw.PollInterval, defaultPollInterval); err != nil {
		return Config{}, err
	}

	if raw.DashboardWindow > 0 {
		cfg.DashboardWindow = raw.DashboardWindow
	}
	if raw.SensorWindow > 0 {
		cfg.SensorWindow = raw.SensorWindow
	}
	if raw.PageSize > 0 {
		cfg.PageSize = raw.PageSize
	}
	if raw.RequestsPerSecond != nil {
		if *raw.RequestsPerSecond < 0 {
			return Config{}, fmt.Errorf("parse config: requests_per_second must be >= 0, got %v", *raw.RequestsPerSecond)
		}
		cfg.RequestsPerSecond = *raw.RequestsPerSecond
	}

	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(TokenEnv)); v != "" {
		c.Token = v
	}
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("parse config: %s must be positive, got %s", key, value)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
