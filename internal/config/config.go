// Package config loads the engine's YAML configuration. Values missing from
// the file keep their defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cxd309/kart-engine/internal/kinematics"
	"github.com/cxd309/kart-engine/internal/log"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full engine configuration.
type Config struct {
	Log        log.Config        `yaml:"log"`
	Sim        Sim               `yaml:"sim"`
	Tracks     Tracks            `yaml:"tracks"`
	Kinematics kinematics.Arcade `yaml:"kinematics"`
	Feed       Feed              `yaml:"feed"`
	Input      Input             `yaml:"input"`
}

// Sim controls the fixed-rate step loop.
type Sim struct {
	TickHz           int     `yaml:"tick_hz"`
	CountdownSeconds float64 `yaml:"countdown_seconds"`
}

// Tracks selects the track source.
type Tracks struct {
	File      string `yaml:"file"` // empty uses the embedded catalog
	DefaultID string `yaml:"default_id"`
}

// Feed configures the websocket pose feed.
type Feed struct {
	Addr           string   `yaml:"addr"`            // empty disables the feed
	AllowedOrigins []string `yaml:"allowed_origins"` // empty accepts any browser origin
}

// Input configures terminal key handling.
type Input struct {
	// HoldMs is how long a key counts as held after its last repeat, since
	// terminals report presses but not releases.
	HoldMs int `yaml:"hold_ms"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Log:        log.Config{Level: "info", Format: "json", Output: "stderr"},
		Sim:        Sim{TickHz: 60, CountdownSeconds: 3},
		Tracks:     Tracks{DefaultID: "main_track"},
		Kinematics: kinematics.DefaultArcade(),
		Input:      Input{HoldMs: 150},
	}
}

// Load reads YAML from r over the defaults and validates the result.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile reads the config at path. An empty path yields the defaults.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Load(bytes.NewReader(nil))
	}
	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	cfg, err := Load(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges across sections.
func (c Config) Validate() error {
	if c.Sim.TickHz <= 0 {
		return fmt.Errorf("%w: sim.tick_hz must be positive, got %d", ErrInvalidConfig, c.Sim.TickHz)
	}
	if c.Sim.CountdownSeconds < 0 {
		return fmt.Errorf("%w: sim.countdown_seconds must not be negative", ErrInvalidConfig)
	}
	if c.Tracks.DefaultID == "" {
		return fmt.Errorf("%w: tracks.default_id is required", ErrInvalidConfig)
	}
	if c.Input.HoldMs <= 0 {
		return fmt.Errorf("%w: input.hold_ms must be positive", ErrInvalidConfig)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := log.ParseFormat(c.Log.Format); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Kinematics.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// CountdownSteps returns the pre-race countdown length in simulation steps.
func (c Config) CountdownSteps() int {
	return int(c.Sim.CountdownSeconds * float64(c.Sim.TickHz))
}
