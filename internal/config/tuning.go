// Package config loads and validates the analysis tuning parameters.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/swing.report/internal/imu"
)

// TuningConfig represents the tuning parameters for the analysis
// pipeline. Fields are pointers so a partial JSON file only overrides
// what it names; the Get* methods provide fallback defaults.
type TuningConfig struct {
	// Sampling
	SampleIntervalSeconds *float64 `json:"sample_interval_seconds,omitempty"`

	// Calibration params
	StaticWindow         *int     `json:"static_window,omitempty"`
	StaticNoiseThreshold *float64 `json:"static_noise_threshold,omitempty"`
	MinStaticSamples     *int     `json:"min_static_samples,omitempty"`

	// Conditioning params
	AccelCutoffHz *float64 `json:"accel_cutoff_hz,omitempty"`
	GyroCutoffHz  *float64 `json:"gyro_cutoff_hz,omitempty"`
	ProcessNoise  *float64 `json:"process_noise,omitempty"`
	MeasureNoise  *float64 `json:"measurement_noise,omitempty"`

	// Strapdown params
	StaticRateThreshold *float64 `json:"static_rate_threshold,omitempty"`
	StaticVoteWindow    *int     `json:"static_vote_window,omitempty"`
	StaticVotes         *int     `json:"static_votes,omitempty"`
	VelocityDecay       *float64 `json:"velocity_decay,omitempty"`

	// Swing detection params
	SwingRateThreshold *float64 `json:"swing_rate_threshold,omitempty"`
	PostSwingPadding   *float64 `json:"post_swing_padding,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. Fields
// omitted from the file retain their defaults, so partial configs are
// safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c *TuningConfig) Validate() error {
	if c.SampleIntervalSeconds != nil && *c.SampleIntervalSeconds <= 0 {
		return fmt.Errorf("sample_interval_seconds must be positive, got %f", *c.SampleIntervalSeconds)
	}
	if c.AccelCutoffHz != nil && *c.AccelCutoffHz <= 0 {
		return fmt.Errorf("accel_cutoff_hz must be positive, got %f", *c.AccelCutoffHz)
	}
	if c.GyroCutoffHz != nil && *c.GyroCutoffHz <= 0 {
		return fmt.Errorf("gyro_cutoff_hz must be positive, got %f", *c.GyroCutoffHz)
	}
	if c.VelocityDecay != nil && (*c.VelocityDecay < 0 || *c.VelocityDecay > 1) {
		return fmt.Errorf("velocity_decay must be between 0 and 1, got %f", *c.VelocityDecay)
	}
	if c.StaticVoteWindow != nil && c.StaticVotes != nil && *c.StaticVotes > *c.StaticVoteWindow {
		return fmt.Errorf("static_votes (%d) cannot exceed static_vote_window (%d)",
			*c.StaticVotes, *c.StaticVoteWindow)
	}
	if c.SwingRateThreshold != nil && *c.SwingRateThreshold <= 0 {
		return fmt.Errorf("swing_rate_threshold must be positive, got %f", *c.SwingRateThreshold)
	}
	return nil
}

// GetSampleInterval returns the sample_interval_seconds value or the default.
func (c *TuningConfig) GetSampleInterval() float64 {
	if c.SampleIntervalSeconds == nil {
		return 0.01
	}
	return *c.SampleIntervalSeconds
}

// GetStaticWindow returns the static_window value or the default.
func (c *TuningConfig) GetStaticWindow() int {
	if c.StaticWindow == nil {
		return 50
	}
	return *c.StaticWindow
}

// GetStaticNoiseThreshold returns the static_noise_threshold value or the default.
func (c *TuningConfig) GetStaticNoiseThreshold() float64 {
	if c.StaticNoiseThreshold == nil {
		return 0.5
	}
	return *c.StaticNoiseThreshold
}

// GetMinStaticSamples returns the min_static_samples value or the default.
func (c *TuningConfig) GetMinStaticSamples() int {
	if c.MinStaticSamples == nil {
		return 100
	}
	return *c.MinStaticSamples
}

// GetAccelCutoffHz returns the accel_cutoff_hz value or the default.
func (c *TuningConfig) GetAccelCutoffHz() float64 {
	if c.AccelCutoffHz == nil {
		return 30
	}
	return *c.AccelCutoffHz
}

// GetGyroCutoffHz returns the gyro_cutoff_hz value or the default.
func (c *TuningConfig) GetGyroCutoffHz() float64 {
	if c.GyroCutoffHz == nil {
		return 40
	}
	return *c.GyroCutoffHz
}

// GetProcessNoise returns the process_noise value or the default.
func (c *TuningConfig) GetProcessNoise() float64 {
	if c.ProcessNoise == nil {
		return 0.05
	}
	return *c.ProcessNoise
}

// GetMeasureNoise returns the measurement_noise value or the default.
func (c *TuningConfig) GetMeasureNoise() float64 {
	if c.MeasureNoise == nil {
		return 0.1
	}
	return *c.MeasureNoise
}

// GetStaticRateThreshold returns the static_rate_threshold value or the default.
func (c *TuningConfig) GetStaticRateThreshold() float64 {
	if c.StaticRateThreshold == nil {
		return 0.5
	}
	return *c.StaticRateThreshold
}

// GetStaticVoteWindow returns the static_vote_window value or the default.
func (c *TuningConfig) GetStaticVoteWindow() int {
	if c.StaticVoteWindow == nil {
		return 15
	}
	return *c.StaticVoteWindow
}

// GetStaticVotes returns the static_votes value or the default.
func (c *TuningConfig) GetStaticVotes() int {
	if c.StaticVotes == nil {
		return 10
	}
	return *c.StaticVotes
}

// GetVelocityDecay returns the velocity_decay value or the default.
func (c *TuningConfig) GetVelocityDecay() float64 {
	if c.VelocityDecay == nil {
		return 0.5
	}
	return *c.VelocityDecay
}

// GetSwingRateThreshold returns the swing_rate_threshold value or the default.
func (c *TuningConfig) GetSwingRateThreshold() float64 {
	if c.SwingRateThreshold == nil {
		return 3.5
	}
	return *c.SwingRateThreshold
}

// GetPostSwingPadding returns the post_swing_padding value or the default.
func (c *TuningConfig) GetPostSwingPadding() float64 {
	if c.PostSwingPadding == nil {
		return 0.15
	}
	return *c.PostSwingPadding
}

// PipelineConfig materialises the tuning values into the analysis
// pipeline's configuration.
func (c *TuningConfig) PipelineConfig() imu.Config {
	cfg := imu.DefaultConfig()
	cfg.Dt = c.GetSampleInterval()

	cfg.Calibration.StaticWindow = c.GetStaticWindow()
	cfg.Calibration.StaticNoiseThreshold = c.GetStaticNoiseThreshold()
	cfg.Calibration.MinStaticSamples = c.GetMinStaticSamples()

	cfg.Conditioning.AccelCutoffHz = c.GetAccelCutoffHz()
	cfg.Conditioning.GyroCutoffHz = c.GetGyroCutoffHz()
	cfg.Conditioning.Smoother.ProcessNoise = c.GetProcessNoise()
	cfg.Conditioning.Smoother.MeasurementNoise = c.GetMeasureNoise()

	cfg.Strapdown.StaticRateThreshold = c.GetStaticRateThreshold()
	cfg.Strapdown.StaticWindow = c.GetStaticVoteWindow()
	cfg.Strapdown.StaticVotes = c.GetStaticVotes()
	cfg.Strapdown.VelocityDecay = c.GetVelocityDecay()

	cfg.Swing.RateThreshold = c.GetSwingRateThreshold()
	cfg.Swing.PostSwingPadding = c.GetPostSwingPadding()
	return cfg
}
