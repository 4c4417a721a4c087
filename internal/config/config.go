// ABOUTME: Settings loading with defaults, config file, and environment overrides
// ABOUTME: YAML-based configuration; precedence is defaults < file < environment

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultHeight is the overlay height cap in rows.
	DefaultHeight = 15
	// DefaultFPS is the render cadence in frames per second.
	DefaultFPS = 20

	// EnvHeight and EnvFPS override the file-level settings.
	EnvHeight = "DETACH_HEIGHT"
	EnvFPS    = "DETACH_FPS"
)

// Settings holds the merged configuration.
type Settings struct {
	Height  int  `yaml:"height,omitempty"`
	FPS     int  `yaml:"fps,omitempty"`
	Verbose bool `yaml:"verbose,omitempty"`
}

// Defaults returns the built-in settings.
func Defaults() *Settings {
	return &Settings{Height: DefaultHeight, FPS: DefaultFPS}
}

// Load reads the config file (if present) and applies environment
// overrides on top of the defaults.
func Load() (*Settings, error) {
	file, err := loadFile(ConfigFile())
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	s := merge(Defaults(), file)
	if err := applyEnv(s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Interval converts the FPS setting into a render tick interval.
func (s *Settings) Interval() time.Duration {
	return time.Second / time.Duration(s.FPS)
}

func (s *Settings) validate() error {
	if s.Height < 1 {
		return fmt.Errorf("height must be at least 1, got %d", s.Height)
	}
	if s.FPS < 1 || s.FPS > 120 {
		return fmt.Errorf("fps must be between 1 and 120, got %d", s.FPS)
	}
	return nil
}

// loadFile reads a Settings from a YAML file. Returns zero Settings if
// the file does not exist.
func loadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Settings{}, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &s, nil
}

// merge overlays non-zero file values onto the base settings.
func merge(base, file *Settings) *Settings {
	result := *base
	if file == nil {
		return &result
	}
	if file.Height != 0 {
		result.Height = file.Height
	}
	if file.FPS != 0 {
		result.FPS = file.FPS
	}
	if file.Verbose {
		result.Verbose = true
	}
	return &result
}

// applyEnv overlays environment variables onto the settings.
func applyEnv(s *Settings) error {
	if v := os.Getenv(EnvHeight); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s=%q: %w", EnvHeight, v, err)
		}
		s.Height = n
	}
	if v := os.Getenv(EnvFPS); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s=%q: %w", EnvFPS, v, err)
		}
		s.FPS = n
	}
	return nil
}
