// Package config loads YAML run configuration for the bioscan tool.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-bioacoustics/spectrogram"
	"github.com/cwbudde/algo-bioacoustics/spectrogram/window"
)

// ErrInvalid indicates a configuration that fails validation.
var ErrInvalid = errors.New("config: invalid")

// Band is a frequency interval in Hz.
type Band struct {
	LowHz  float64 `yaml:"low_hz"`
	HighHz float64 `yaml:"high_hz"`
}

// ToSpectrogram converts to the spectrogram package's band type.
func (b Band) ToSpectrogram() spectrogram.Band {
	return spectrogram.Band{LowHz: b.LowHz, HighHz: b.HighHz}
}

// Spectrogram holds short-time transform parameters.
type Spectrogram struct {
	WindowSamples  int    `yaml:"window_samples"`
	OverlapSamples int    `yaml:"overlap_samples"`
	Window         string `yaml:"window"`
}

// Ribbit holds pulse-rate detection parameters.
type Ribbit struct {
	SignalBand     Band    `yaml:"signal_band"`
	NoiseBands     []Band  `yaml:"noise_bands"`
	MinPulseRateHz float64 `yaml:"min_pulse_rate_hz"`
	MaxPulseRateHz float64 `yaml:"max_pulse_rate_hz"`
	WindowDuration float64 `yaml:"window_duration"`
	WindowOverlap  float64 `yaml:"window_overlap"`
}

// Splitter holds clip segmentation parameters.
type Splitter struct {
	ClipDuration float64 `yaml:"clip_duration"`
	ClipOverlap  float64 `yaml:"clip_overlap"`
	IncludeLast  bool    `yaml:"include_last"`
	OutputDir    string  `yaml:"output_dir"`
}

// Features holds feature extraction parameters.
type Features struct {
	ThresholdSigma  float64 `yaml:"threshold_sigma"`
	FrequencyBands  int     `yaml:"frequency_bands"`
	FrequencyBuffer int     `yaml:"frequency_buffer"`
}

// Config is the full run configuration.
type Config struct {
	SampleRate  float64     `yaml:"sample_rate"`
	StorePath   string      `yaml:"store_path"`
	Workers     int         `yaml:"workers"`
	Spectrogram Spectrogram `yaml:"spectrogram"`
	Ribbit      Ribbit      `yaml:"ribbit"`
	Splitter    Splitter    `yaml:"splitter"`
	Features    Features    `yaml:"features"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		SampleRate: 22050,
		StorePath:  "bioscan.db",
		Workers:    4,
		Spectrogram: Spectrogram{
			WindowSamples:  512,
			OverlapSamples: 256,
			Window:         window.TypeHann.String(),
		},
		Ribbit: Ribbit{
			MinPulseRateHz: 5,
			MaxPulseRateHz: 15,
			WindowDuration: 2,
			WindowOverlap:  0,
		},
		Splitter: Splitter{
			ClipDuration: 5,
			ClipOverlap:  1,
			OutputDir:    "segments",
		},
		Features: Features{
			ThresholdSigma:  2,
			FrequencyBands:  16,
			FrequencyBuffer: 10,
		},
	}
}

// Load reads a YAML file over the defaults. Fields absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// WindowType resolves the configured window name.
func (c Config) WindowType() (window.Type, error) {
	return window.ParseType(c.Spectrogram.Window)
}

// Validate checks the configuration for internally consistent values.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("%w: sample_rate must be > 0", ErrInvalid)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be > 0", ErrInvalid)
	}
	if c.StorePath == "" {
		return fmt.Errorf("%w: store_path must not be empty", ErrInvalid)
	}
	if c.Spectrogram.WindowSamples <= 0 {
		return fmt.Errorf("%w: spectrogram.window_samples must be > 0", ErrInvalid)
	}
	if c.Spectrogram.OverlapSamples < 0 || c.Spectrogram.OverlapSamples >= c.Spectrogram.WindowSamples {
		return fmt.Errorf("%w: spectrogram.overlap_samples must be in [0, window_samples)", ErrInvalid)
	}
	if _, err := window.ParseType(c.Spectrogram.Window); err != nil {
		return fmt.Errorf("%w: spectrogram.window: %v", ErrInvalid, err)
	}
	if c.Ribbit.MinPulseRateHz < 0 || c.Ribbit.MaxPulseRateHz <= c.Ribbit.MinPulseRateHz {
		return fmt.Errorf("%w: ribbit pulse-rate range must satisfy 0 <= min < max", ErrInvalid)
	}
	if c.Ribbit.WindowDuration <= 0 {
		return fmt.Errorf("%w: ribbit.window_duration must be > 0", ErrInvalid)
	}
	if c.Ribbit.WindowOverlap < 0 || c.Ribbit.WindowOverlap >= c.Ribbit.WindowDuration {
		return fmt.Errorf("%w: ribbit.window_overlap must be in [0, window_duration)", ErrInvalid)
	}
	if c.Splitter.ClipDuration <= 0 {
		return fmt.Errorf("%w: splitter.clip_duration must be > 0", ErrInvalid)
	}
	if c.Splitter.ClipOverlap < 0 || c.Splitter.ClipOverlap >= c.Splitter.ClipDuration {
		return fmt.Errorf("%w: splitter.clip_overlap must be in [0, clip_duration)", ErrInvalid)
	}
	if c.Features.ThresholdSigma <= 0 {
		return fmt.Errorf("%w: features.threshold_sigma must be > 0", ErrInvalid)
	}
	if c.Features.FrequencyBands <= 0 {
		return fmt.Errorf("%w: features.frequency_bands must be > 0", ErrInvalid)
	}
	if c.Features.FrequencyBuffer < 0 {
		return fmt.Errorf("%w: features.frequency_buffer must be >= 0", ErrInvalid)
	}
	return nil
}
