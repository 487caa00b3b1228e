package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/marcinbor85/ihex"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by all commands
type Config struct {
	PadByte    byte    `yaml:"pad_byte"`
	AlignWidth byte    `yaml:"align_width"`
	Logging    Logging `yaml:"logging"`
}

// Logging contains logging configuration
type Logging struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		PadByte:    ihex.DefaultPadByte,
		AlignWidth: ihex.DefaultAlignWidth,
		Logging: Logging{
			Level: "warn",
		},
	}
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.AlignWidth == 0 {
		return fmt.Errorf("align_width must be between 1 and 255")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel maps the configured level name to a slog level
func (c *Config) LogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning", "":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", c.Logging.Level)
}

// NewMemory creates an empty image using the configured pad byte and record
// width.
func (c *Config) NewMemory() *ihex.Memory {
	return ihex.NewMemory(
		ihex.WithPadByte(c.PadByte),
		ihex.WithAlignWidth(c.AlignWidth),
	)
}
