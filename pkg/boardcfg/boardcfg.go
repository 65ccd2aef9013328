// Package boardcfg loads a board profile: the small set of physical
// parameters (steps/mm per drive, pressure-advance settings, delta tower
// geometry, batching thresholds) that turn the generic step-timing engine
// in pkg/motion into a specific machine.
package boardcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DriveConfig is one physical drive's calibration.
type DriveConfig struct {
	Name          string  `yaml:"name"`
	StepsPerUnit  float64 `yaml:"steps_per_unit"`
	PressureAdvance float64 `yaml:"pressure_advance,omitempty"` // extruders only
}

// TowerConfig is one Delta tower's fixed (x, y) base position.
type TowerConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// DeltaConfig describes a linear-delta printer's geometry, mirroring the
// fields kinematics.DeltaConfig needs.
type DeltaConfig struct {
	Radius      float64       `yaml:"radius"`
	ArmLengths  []float64     `yaml:"arm_lengths"`
	Angles      []float64     `yaml:"angles,omitempty"`
	Endstops    []float64     `yaml:"endstops"`
	PrintRadius float64       `yaml:"print_radius,omitempty"`
	MinZ        float64       `yaml:"min_z"`
	Towers      []TowerConfig `yaml:"towers,omitempty"`
}

// TimingConfig carries the batched-stepping tunables, mirroring
// motion.Config.
type TimingConfig struct {
	ClockRateHz              uint64 `yaml:"clock_rate_hz"`
	MinCalcIntervalCartesian uint32 `yaml:"min_calc_interval_cartesian"`
	MinCalcIntervalDelta     uint32 `yaml:"min_calc_interval_delta"`
}

// Config is a complete board profile.
type Config struct {
	Kind    string        `yaml:"kind"` // "cartesian" or "delta"
	Drives  []DriveConfig `yaml:"drives"`
	Delta   *DeltaConfig  `yaml:"delta,omitempty"`
	Timing  TimingConfig  `yaml:"timing"`
	Alloc   int           `yaml:"alloc_records"`
}

// Load reads and validates a board profile from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read board profile: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal board profile: %w", err)
	}

	if cfg.Kind != "cartesian" && cfg.Kind != "delta" {
		return nil, fmt.Errorf("board profile: kind must be \"cartesian\" or \"delta\", got %q", cfg.Kind)
	}
	if len(cfg.Drives) == 0 {
		return nil, fmt.Errorf("board profile: at least one drive is required")
	}
	if cfg.Kind == "delta" && cfg.Delta == nil {
		return nil, fmt.Errorf("board profile: kind=delta requires a delta section")
	}
	if cfg.Timing.ClockRateHz == 0 {
		return nil, fmt.Errorf("board profile: timing.clock_rate_hz must be positive")
	}
	if cfg.Timing.MinCalcIntervalCartesian == 0 {
		cfg.Timing.MinCalcIntervalCartesian = 60
	}
	if cfg.Timing.MinCalcIntervalDelta == 0 {
		cfg.Timing.MinCalcIntervalDelta = 100
	}
	if cfg.Alloc <= 0 {
		cfg.Alloc = 32
	}

	return &cfg, nil
}
