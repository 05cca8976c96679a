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

// Config captures the settings trackside reads at startup.
type Config struct {
	Server            string
	PollInterval      time.Duration
	PausePollInterval time.Duration
	TickInterval      time.Duration
	LookupDebounce    time.Duration
	LogDir            string
	LogLevel          string
}

const (
	defaultConfigPath        = "~/.config/trackside/config.toml"
	defaultLogDir            = "~/.local/state/trackside"
	defaultServer            = "127.0.0.1:8069"
	defaultLogLevel          = "info"
	defaultPollInterval      = 2 * time.Second
	defaultPausePollInterval = 5 * time.Second
	defaultTickInterval      = time.Second
	defaultLookupDebounce    = 200 * time.Millisecond
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server:            defaultServer,
		PollInterval:      defaultPollInterval,
		PausePollInterval: defaultPausePollInterval,
		TickInterval:      defaultTickInterval,
		LookupDebounce:    defaultLookupDebounce,
		LogDir:            mustExpand(defaultLogDir),
		LogLevel:          defaultLogLevel,
	}
}

// Load locates and parses the trackside config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
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
		Server            string `toml:"server"`
		PollInterval      string `toml:"poll_interval"`
		PausePollInterval string `toml:"pause_poll_interval"`
		TickInterval      string `toml:"tick_interval"`
		LookupDebounce    string `toml:"lookup_debounce"`
		LogDir            string `toml:"log_dir"`
		LogLevel          string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.Server); v != "" {
		cfg.Server = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"poll_interval", raw.PollInterval, &cfg.PollInterval},
		{"pause_poll_interval", raw.PausePollInterval, &cfg.PausePollInterval},
		{"tick_interval", raw.TickInterval, &cfg.TickInterval},
		{"lookup_debounce", raw.LookupDebounce, &cfg.LookupDebounce},
	}
	for _, d := range durations {
		if err := parseDuration(d.key, d.raw, d.dst); err != nil {
			return Config{}, err
		}
	}

	return cfg, nil
}

// LogPath returns the path to trackside's own log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/trackside.log")
	}
	return filepath.Join(c.LogDir, "trackside.log")
}

// parseDuration leaves dst untouched for an empty value.
func parseDuration(key, raw string, dst *time.Duration) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return fmt.Errorf("parse config: %s: %w", key, err)
	}
	if d <= 0 {
		return fmt.Errorf("parse config: %s must be positive, got %s", key, trimmed)
	}
	*dst = d
	return nil
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
