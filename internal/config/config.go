// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

type Config struct {
	LogLevel  string `env:"LOG_LEVEL" default:"info"`
	LogFormat string `env:"LOG_FORMAT" default:"text"`
	HTTPAddr  string `env:"HTTP_ADDR" default:":8080"`

	DataDir   string `env:"DATA_DIR"`
	StaticDir string `env:"STATIC_DIR"`
	PluginDir string `env:"PLUGIN_DIR"`

	DesktopInput  bool   `env:"DESKTOP_INPUT" default:"true"`
	PointerPlugin string `env:"POINTER_PLUGIN" default:"pointer"`

	CameraID        int     `env:"CAMERA_ID" default:"0"`
	MotionThreshold float64 `env:"MOTION_THRESHOLD" default:"1.0"`

	ViewportWidth  int `env:"VIEWPORT_WIDTH" default:"1920"`
	ViewportHeight int `env:"VIEWPORT_HEIGHT" default:"1080"`

	SiteAPIURL        string        `env:"SITE_API_URL"`
	SiteID            string        `env:"SITE_ID"`
	SiteAPIKey        string        `env:"SITE_API_KEY"`
	SiteConfigTimeout time.Duration `env:"SITE_CONFIG_TIMEOUT" default:"10s"`

	TrayEnabled bool `env:"TRAY_ENABLED" default:"false"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DBPath is the SQLite database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "mudra.db")
}

func (c *Config) resolvePaths() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, ".mudra")
	}
	if c.PluginDir == "" {
		c.PluginDir = filepath.Join(c.DataDir, "plugins")
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		return fmt.Errorf("VIEWPORT_WIDTH and VIEWPORT_HEIGHT must be positive, got %dx%d", cfg.ViewportWidth, cfg.ViewportHeight)
	}

	switch strings.ToLower(cfg.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	if cfg.MotionThreshold < 0 || cfg.MotionThreshold > 100 {
		return errors.New("MOTION_THRESHOLD must be a percentage between 0 and 100")
	}

	if cfg.SiteConfigTimeout <= 0 {
		return errors.New("SITE_CONFIG_TIMEOUT must be positive")
	}

	if cfg.DesktopInput && cfg.PointerPlugin == "" {
		return errors.New("POINTER_PLUGIN is required when DESKTOP_INPUT is enabled")
	}

	return nil
}
