// Package config loads the optional pcdlod.toml override file described in
// SPEC_FULL.md §3. CLI flags always take precedence over anything it sets.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds the run parameters a pcdlod.toml file may override.
type Config struct {
	// Threshold is the per-cell point budget (spec.md §4.5's "threshold").
	Threshold int `toml:"threshold"`
	// RadiusConstant is a multiplier applied to the sampling radius
	// formula's denominator, for installations that want tighter or looser
	// sub-sampling than sqrt(threshold) per side without changing the
	// budget itself. 0 means "use the default of 1.0".
	RadiusConstant float64 `toml:"radius_constant"`
	// QuadAlphaAsColor selects the encoder's use_alpha_channel_as_color
	// option for the 8-bit quad image (spec.md §4.6).
	QuadAlphaAsColor bool `toml:"quad_alpha_as_color"`
}

// Default returns the built-in defaults: threshold 2^14 (16384), matching
// the original "√threshold points per unit-side image" budget.
func Default() Config {
	return Config{
		Threshold:        1 << 14,
		RadiusConstant:   1.0,
		QuadAlphaAsColor: false,
	}
}

// Load reads path, merging its fields over Default(). A missing file is
// not an error — it just means "use the defaults".
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "loading config %s", path)
	}
	if cfg.RadiusConstant == 0 {
		cfg.RadiusConstant = 1.0
	}
	return cfg, nil
}
