package daub

import (
	"errors"
	"fmt"
	"io"

	"github.com/pelletier/go-toml/v2"
)

// Config collects the tunables of the paint engine.
type Config struct {
	// BrushDiameter is the side of the square brush tile, in surface pixels.
	BrushDiameter int `toml:"brush_diameter"`
	// SoftBrush selects the radial falloff tile instead of the hard disc.
	SoftBrush bool `toml:"soft_brush"`
	// StepDivisor sets the spacing of the interpolated dabs to BrushDiameter/StepDivisor.
	StepDivisor float64 `toml:"step_divisor"`
	// MaxStamps caps the number of dabs laid for a single pointer move.
	MaxStamps int `toml:"max_stamps"`
	// MinDistance is the pointer travel (in pixels) below which moves are ignored as jitter.
	MinDistance float64 `toml:"min_distance"`
	// WinThreshold is the coverage a region must exceed to be completed.
	WinThreshold float64 `toml:"win_threshold"`
	// GridSize is the side of the coverage downsample grid.
	GridSize int `toml:"grid_size"`
	// AsyncCoverage measures the coverage off the event thread. The results
	// are committed by Engine.Poll or Engine.Flush.
	AsyncCoverage bool `toml:"async_coverage"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		BrushDiameter: 100,
		SoftBrush:     true,
		StepDivisor:   3.5,
		MaxStamps:     50,
		MinDistance:   1,
		WinThreshold:  0.90,
		GridSize:      32,
	}
}

// LoadConfig decodes a TOML document on top of the default configuration.
// Keys missing from the document keep their default values.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()

	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("could not decode the configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks that every tunable has a usable value.
func (c Config) Validate() error {
	var errs []error
	if c.BrushDiameter <= 0 {
		errs = append(errs, fmt.Errorf("brush diameter must be positive, got %d", c.BrushDiameter))
	}
	if c.StepDivisor < 1 {
		errs = append(errs, fmt.Errorf("step divisor must be at least 1, got %v", c.StepDivisor))
	}
	if c.MaxStamps <= 0 {
		errs = append(errs, fmt.Errorf("max stamps must be positive, got %d", c.MaxStamps))
	}
	if c.MinDistance < 0 {
		errs = append(errs, fmt.Errorf("min distance cannot be negative, got %v", c.MinDistance))
	}
	if c.WinThreshold <= 0 || c.WinThreshold >= 1 {
		errs = append(errs, fmt.Errorf("win threshold must be in (0, 1), got %v", c.WinThreshold))
	}
	if c.GridSize <= 0 {
		errs = append(errs, fmt.Errorf("grid size must be positive, got %d", c.GridSize))
	}
	return errors.Join(errs...)
}

// stepSize returns the distance between two consecutive interpolated dabs.
func (c Config) stepSize() float64 {
	return float64(c.BrushDiameter) / c.StepDivisor
}
