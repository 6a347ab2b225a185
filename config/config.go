// Package config loads estimator and vehicle simulation settings from JSON files.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/milosgajdos/go-identify/dataset"
	"github.com/milosgajdos/go-identify/vehicle"
)

// maxFileSize limits the size of a config file
const maxFileSize = 1 * 1024 * 1024

// Config is the root configuration.
type Config struct {
	Estimator Estimator `json:"estimator"`
	Vehicle   Vehicle   `json:"vehicle"`
}

// Estimator configures recursive resistance estimation.
type Estimator struct {
	// Prior is the prior parameter estimate [R, b]
	Prior []float64 `json:"prior"`
	// PriorVariance is the diagonal of the prior covariance
	PriorVariance []float64 `json:"prior_variance"`
	// NoiseVariance is voltage measurement noise variance
	NoiseVariance float64 `json:"noise_variance"`
	// Forgetting is the forgetting factor in (0, 1]
	Forgetting float64 `json:"forgetting"`
	// Joseph enables Joseph form covariance update
	Joseph bool `json:"joseph"`
	// Measurements to fit
	Measurements []dataset.Measurement `json:"measurements"`
}

// Vehicle configures the vehicle simulation.
type Vehicle struct {
	Params vehicle.Params `json:"params"`
	// Initial is the initial state [x, v, w_e]
	Initial []float64 `json:"initial_state"`
	// Dt is the integration time step in s
	Dt float64 `json:"dt"`
	// Horizon is the simulated time in s
	Horizon float64 `json:"horizon"`
	Profile vehicle.Profile `json:"profile"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Estimator: Estimator{
			Prior:         []float64{4.0, 0.0},
			PriorVariance: []float64{9.0, 0.2},
			NoiseVariance: 0.0225,
			Forgetting:    1.0,
			Measurements:  dataset.Resistor(),
		},
		Vehicle: Vehicle{
			Params:  vehicle.DefaultParams(),
			Initial: []float64{0, 5, 100},
			Dt:      0.01,
			Horizon: 20,
			Profile: vehicle.DefaultProfile(),
		},
	}
}

// Load loads the configuration from a JSON file at path.
// Fields omitted from the file retain their default values. Arrays given in the file
// replace the default arrays as a whole.
// It returns error if the file is not a .json file, is too large, fails to decode or is invalid.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	def := Default()

	// json reuses the backing arrays of non-nil slices, so arrays in the file
	// would otherwise be merged element-wise with the defaults
	cfg.Estimator.Prior = nil
	cfg.Estimator.PriorVariance = nil
	cfg.Estimator.Measurements = nil
	cfg.Vehicle.Initial = nil
	cfg.Vehicle.Profile.Throttle = nil
	cfg.Vehicle.Profile.Slope = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Estimator.Prior == nil {
		cfg.Estimator.Prior = def.Estimator.Prior
	}
	if cfg.Estimator.PriorVariance == nil {
		cfg.Estimator.PriorVariance = def.Estimator.PriorVariance
	}
	if cfg.Estimator.Measurements == nil {
		cfg.Estimator.Measurements = def.Estimator.Measurements
	}
	if cfg.Vehicle.Initial == nil {
		cfg.Vehicle.Initial = def.Vehicle.Initial
	}
	if cfg.Vehicle.Profile.Throttle == nil {
		cfg.Vehicle.Profile.Throttle = def.Vehicle.Profile.Throttle
	}
	if cfg.Vehicle.Profile.Slope == nil {
		cfg.Vehicle.Profile.Slope = def.Vehicle.Profile.Slope
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate returns error if any of the settings is invalid.
func (c *Config) Validate() error {
	if err := c.Estimator.Validate(); err != nil {
		return fmt.Errorf("estimator: %w", err)
	}

	if err := c.Vehicle.Validate(); err != nil {
		return fmt.Errorf("vehicle: %w", err)
	}

	return nil
}

// Validate returns error if the estimator settings are invalid.
func (e Estimator) Validate() error {
	if len(e.Prior) == 0 || len(e.Prior) != len(e.PriorVariance) {
		return fmt.Errorf("prior dimensions mismatch: %d != %d", len(e.Prior), len(e.PriorVariance))
	}

	for _, v := range e.PriorVariance {
		if v < 0 {
			return fmt.Errorf("invalid prior variance: %f", v)
		}
	}

	if e.NoiseVariance <= 0 {
		return fmt.Errorf("invalid noise variance: %f", e.NoiseVariance)
	}

	if e.Forgetting <= 0 || e.Forgetting > 1 {
		return fmt.Errorf("invalid forgetting factor: %f", e.Forgetting)
	}

	if len(e.Measurements) == 0 {
		return fmt.Errorf("no measurements")
	}

	return nil
}

// Validate returns error if the vehicle settings are invalid.
func (v Vehicle) Validate() error {
	if err := v.Params.Validate(); err != nil {
		return err
	}

	if len(v.Initial) != vehicle.StateDim {
		return fmt.Errorf("invalid initial state dimension: %d", len(v.Initial))
	}

	if v.Initial[vehicle.Velocity] == 0 {
		return vehicle.ErrStalled
	}

	if v.Dt <= 0 || v.Horizon < v.Dt {
		return fmt.Errorf("invalid simulation time: dt=%f horizon=%f", v.Dt, v.Horizon)
	}

	return v.Profile.Validate()
}
