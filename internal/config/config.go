package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/audiolibrelab/micloop/internal/engine"
)

type Config struct {
	Audio AudioConfig `mapstructure:"audio" yaml:"audio"`
	Video VideoConfig `mapstructure:"video" yaml:"video"`
}

type AudioConfig struct {
	// SampleRate is the microphone sample rate. It is the only option the
	// engine itself recognizes and is applied at initialization; changing
	// it requires restarting the run command.
	SampleRate int `mapstructure:"sample_rate" yaml:"sample_rate"`

	// Device optionally names the capture device. Empty selects the
	// system default. Use `micloop devices` to list candidates.
	Device string `mapstructure:"device" yaml:"device"`
}

type VideoConfig struct {
	// Disabled drops rendered frames instead of drawing the terminal
	// progress view.
	Disabled bool `mapstructure:"disabled" yaml:"disabled"`
}

var defaultConfig = Config{
	Audio: AudioConfig{
		SampleRate: 44100,
		Device:     "",
	},
}

// Default returns a copy of the built-in configuration.
func Default() *Config {
	cfg := defaultConfig
	return &cfg
}

// DefaultPath is where Load looks when no config file is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "micloop.yaml")
}

// Load reads the YAML config at path, falling back to built-in defaults for
// missing keys. An empty path loads DefaultPath if it exists and plain
// defaults otherwise.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetDefault("audio.sample_rate", defaultConfig.Audio.SampleRate)
	v.SetDefault("audio.device", defaultConfig.Audio.Device)
	v.SetDefault("video.disabled", false)

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if explicit {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	// Otherwise no config file exists and defaults apply.

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks option values against what the engine supports.
func (c *Config) Validate() error {
	if !engine.ValidSampleRate(c.Audio.SampleRate) {
		return fmt.Errorf("unsupported sample rate %d (valid: %v)",
			c.Audio.SampleRate, engine.ValidSampleRates)
	}
	return nil
}
