package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the prediction endpoint used when none is configured
const DefaultEndpoint = "http://localhost:8000/api/predict"

type Config struct {
	// Prediction endpoint
	Endpoint              string `yaml:"endpoint"`
	FieldName             string `yaml:"field_name"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"` // 0 = no timeout

	// Intake
	MaxFileSizeMB int    `yaml:"max_file_size_mb"` // 0 = no ceiling
	PickerRoot    string `yaml:"picker_root"`

	// UI Settings
	ColorTheme   string `yaml:"color_theme"`
	PreviewWidth int    `yaml:"preview_width"`

	// Watch
	WatchDebounceMS int `yaml:"watch_debounce_ms"`

	// Diagnostics
	LogLevel        string `yaml:"log_level"`
	TracingEndpoint string `yaml:"tracing_endpoint"`
	TracingInsecure bool   `yaml:"tracing_insecure"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		Endpoint:              DefaultEndpoint,
		FieldName:             "file",
		RequestTimeoutSeconds: 0,
		MaxFileSizeMB:         10,
		PickerRoot:            ".",
		ColorTheme:            "auto",
		PreviewWidth:          32,
		WatchDebounceMS:       300,
		LogLevel:              "info",
		TracingEndpoint:       "",
		TracingInsecure:       true,
	}
}

// Load reads configuration from the specified file path
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// A missing file means defaults, not an error
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills values that were left blank or invalid in the file
func (c *Config) applyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.FieldName == "" {
		c.FieldName = "file"
	}
	if c.RequestTimeoutSeconds < 0 {
		c.RequestTimeoutSeconds = 0
	}
	if c.MaxFileSizeMB < 0 {
		c.MaxFileSizeMB = 0
	}
	if c.PickerRoot == "" {
		c.PickerRoot = "."
	}
	if c.ColorTheme == "" {
		c.ColorTheme = "auto"
	}
	if c.PreviewWidth <= 0 {
		c.PreviewWidth = 32
	}
	if c.WatchDebounceMS <= 0 {
		c.WatchDebounceMS = 300
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// ApplyEnv overrides file settings with GF_* environment variables
func (c *Config) ApplyEnv() {
	if v := os.Getenv("GF_ENDPOINT"); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv("GF_FIELD_NAME"); v != "" {
		c.FieldName = v
	}
	if v := os.Getenv("GF_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GF_TRACING_ENDPOINT"); v != "" {
		c.TracingEndpoint = v
	}
	if v := os.Getenv("GF_REQUEST_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.RequestTimeoutSeconds = n
		}
	}
}

// RequestTimeout returns the HTTP timeout; zero means none
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// MaxFileSize returns the intake ceiling in bytes; zero means none
func (c *Config) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) * 1024 * 1024
}

// WatchDebounce returns the drop-folder debounce interval
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
