// Package config loads handviz settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings for handviz.
type Config struct {
	Addr    string `env:"HANDVIZ_ADDR" envDefault:":8080"`
	DataDir string `env:"HANDVIZ_DATA_DIR"`

	AssetDir   string   `env:"HANDVIZ_ASSET_DIR" envDefault:"assets"`
	AssetNames []string `env:"HANDVIZ_ASSETS" envSeparator:"," envDefault:"nohand.png,hand0.png,hand1.png,hand2.png,hand3.png,hand4.png,hand5.png"`
	AssetSize  int      `env:"HANDVIZ_ASSET_SIZE" envDefault:"1024"`

	CameraID     int     `env:"HANDVIZ_CAMERA_ID" envDefault:"0"`
	SensorFPS    int     `env:"HANDVIZ_SENSOR_FPS" envDefault:"15"`
	TickHz       int     `env:"HANDVIZ_TICK_HZ" envDefault:"30"`
	MotionThresh float64 `env:"HANDVIZ_MOTION_THRESHOLD" envDefault:"1.0"`

	Tray bool `env:"HANDVIZ_TRAY" envDefault:"false"`
}

// Load parses the environment into a Config, fills in the data directory and
// validates the result.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
		cfg.DataDir = filepath.Join(home, ".handviz")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if len(c.AssetNames) < 2 {
		return fmt.Errorf("HANDVIZ_ASSETS needs a no-hand image and at least one hand image, got %d", len(c.AssetNames))
	}
	for _, name := range c.AssetNames {
		if strings.TrimSpace(name) == "" {
			return errors.New("HANDVIZ_ASSETS contains an empty name")
		}
	}
	if c.AssetSize <= 0 {
		return fmt.Errorf("HANDVIZ_ASSET_SIZE must be positive, got %d", c.AssetSize)
	}
	if c.SensorFPS <= 0 {
		return fmt.Errorf("HANDVIZ_SENSOR_FPS must be positive, got %d", c.SensorFPS)
	}
	if c.TickHz <= 0 {
		return fmt.Errorf("HANDVIZ_TICK_HZ must be positive, got %d", c.TickHz)
	}
	if c.MotionThresh < 0 {
		return fmt.Errorf("HANDVIZ_MOTION_THRESHOLD must not be negative, got %v", c.MotionThresh)
	}
	return nil
}

// DBPath is the SQLite database location inside DataDir.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "handviz.db")
}

// TickInterval is the render tick period.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickHz)
}
