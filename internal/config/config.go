package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document for boardswarmd.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Logging   LoggingConfig    `yaml:"logging"`
	Providers []ProviderConfig `yaml:"providers"`
	Devices   []DeviceConfig   `yaml:"devices"`
}

// ServerConfig contains the RPC transport listener settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// LoggingConfig contains structured-logging settings, consumed directly
// by internal/infrastructure/logging.New.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ProviderConfig declares a provider to be started at boot.
//
// Parameters are parsed and kept on the struct; this package does not
// interpret them, and the only built-in provider type ("fake") does not
// read them.
type ProviderConfig struct {
	Name       string         `yaml:"name"`
	Type       string         `yaml:"type"`
	Parameters map[string]any `yaml:"parameters"`
}

// Match is a set of required property key/value pairs a slot uses to
// select the registry entry that fills it.
type Match map[string]string

// DeviceConfig declares one device: its slots and its modes.
type DeviceConfig struct {
	Name      string           `yaml:"name"`
	Consoles  []ConsoleConfig  `yaml:"consoles"`
	Uploaders []UploaderConfig `yaml:"uploaders"`
	Modes     []ModeConfig     `yaml:"modes"`
}

// ConsoleConfig declares a console slot.
type ConsoleConfig struct {
	Name       string         `yaml:"name"`
	Match      Match          `yaml:"match"`
	Parameters map[string]any `yaml:"parameters"`
}

// UploaderConfig declares an uploader slot.
type UploaderConfig struct {
	Name  string `yaml:"name"`
	Match Match  `yaml:"match"`
}

// ModeConfig declares one named mode reachable by a device.
type ModeConfig struct {
	Name     string           `yaml:"name"`
	Depends  string           `yaml:"depends"`
	Sequence []ModeStepConfig `yaml:"sequence"`
}

// ModeStepConfig declares one step of a mode's actuator sequence.
type ModeStepConfig struct {
	Match         Match          `yaml:"match"`
	Parameters    map[string]any `yaml:"parameters"`
	Stabilisation Duration       `yaml:"stabilisation"`
}

// Duration is a time.Duration that unmarshals from a YAML duration
// string ("2s", "500ms") instead of a raw integer of nanoseconds.
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

// Load reads and validates the configuration document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return &cfg, nil
}

// applyDefaults fills in values a minimal boardswarmd document may omit.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "::1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 50051
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// Validate checks the document for structural problems that would make
// it impossible to build a broker from it: duplicate device names,
// mode dependencies on modes that don't exist, and empty names.
func Validate(cfg *Config) error {
	seen := make(map[string]bool, len(cfg.Devices))
	for _, d := range cfg.Devices {
		if d.Name == "" {
			return fmt.Errorf("device with empty name")
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate device name %q", d.Name)
		}
		seen[d.Name] = true

		modeNames := make(map[string]bool, len(d.Modes))
		for _, m := range d.Modes {
			if m.Name == "" {
				return fmt.Errorf("device %q: mode with empty name", d.Name)
			}
			modeNames[m.Name] = true
		}
		for _, m := range d.Modes {
			if m.Depends != "" && !modeNames[m.Depends] {
				return fmt.Errorf("device %q: mode %q depends on unknown mode %q", d.Name, m.Name, m.Depends)
			}
		}
	}
	return nil
}
