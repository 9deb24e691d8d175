// Package config provides configuration loading and access for the field tools.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/fields/falloff"
	"github.com/pthm-cable/fields/noise"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all tool configuration parameters.
type Config struct {
	Field    FieldConfig    `yaml:"field"`
	Falloff  FalloffConfig  `yaml:"falloff"`
	Noise    NoiseConfig    `yaml:"noise"`
	Lattice  LatticeConfig  `yaml:"lattice"`
	Minimize MinimizeConfig `yaml:"minimize"`
	Preview  PreviewConfig  `yaml:"preview"`
	Log      LogConfig      `yaml:"log"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// FieldConfig holds evaluation parameters shared by all fields.
type FieldConfig struct {
	Step      float64 `yaml:"step"`      // Central-difference step for differential operators
	Tolerance float64 `yaml:"tolerance"` // Allowed grid/point disagreement when checking output
}

// FalloffConfig selects the falloff applied to distance and attractor fields.
type FalloffConfig struct {
	Kind        string  `yaml:"kind"`        // none, inverse, inverse_square, inverse_cubic, inverse_exp, gauss
	Amplitude   float64 `yaml:"amplitude"`   // Value at r = 0
	Coefficient float64 `yaml:"coefficient"` // Decay rate for inverse_exp and gauss
	Clamp       bool    `yaml:"clamp"`       // Cap the result at r
}

// NoiseConfig holds noise field parameters.
type NoiseConfig struct {
	Basis   string  `yaml:"basis"` // perlin, opensimplex, fractal
	Seed    int64   `yaml:"seed"`
	Alpha   float64 `yaml:"alpha"`   // fractal only: weight divisor between octaves
	Beta    float64 `yaml:"beta"`    // fractal only: frequency multiplier between octaves
	Octaves int     `yaml:"octaves"` // fractal only
}

// LatticeConfig describes the sample grid written by the CLI.
type LatticeConfig struct {
	Min        [3]float64 `yaml:"min"`
	Max        [3]float64 `yaml:"max"`
	Resolution [3]int     `yaml:"resolution"` // Samples per axis, each at least 1
}

// MinimizeConfig holds parameters for the geometric median search.
type MinimizeConfig struct {
	MaxIterations     int     `yaml:"max_iterations"`
	GradientThreshold float64 `yaml:"gradient_threshold"`
}

// PreviewConfig holds display settings for the slice viewer.
type PreviewConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	TargetFPS int     `yaml:"target_fps"`
	CellSize  int     `yaml:"cell_size"` // Pixels per sample
	Extent    float64 `yaml:"extent"`    // Half-width of the viewed square in field units
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LogLevel   slog.Level          // Log.Level parsed
	LatticeMin r3.Vec              // Lattice.Min as a vector
	LatticeMax r3.Vec              // Lattice.Max as a vector
	Falloff    falloff.Func        // Built from the falloff section; nil for none
	NoiseBasis noise.Basis         // Noise.Basis parsed
	Fractal    noise.FractalParams // Alpha, Beta, Octaves
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded values and fills Derived.
func (c *Config) computeDerived() error {
	if !(c.Field.Step > 0) {
		return fmt.Errorf("field.step must be positive, got %v", c.Field.Step)
	}
	if !(c.Field.Tolerance >= 0) {
		return fmt.Errorf("field.tolerance must be non-negative, got %v", c.Field.Tolerance)
	}

	if err := c.Derived.LogLevel.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}

	for i := range 3 {
		if c.Lattice.Resolution[i] < 1 {
			return fmt.Errorf("lattice.resolution[%d] must be at least 1, got %d", i, c.Lattice.Resolution[i])
		}
		if c.Lattice.Min[i] > c.Lattice.Max[i] {
			return fmt.Errorf("lattice.min[%d] exceeds lattice.max[%d]", i, i)
		}
	}
	c.Derived.LatticeMin = r3.Vec{X: c.Lattice.Min[0], Y: c.Lattice.Min[1], Z: c.Lattice.Min[2]}
	c.Derived.LatticeMax = r3.Vec{X: c.Lattice.Max[0], Y: c.Lattice.Max[1], Z: c.Lattice.Max[2]}

	kind, err := falloff.ParseKind(c.Falloff.Kind)
	if err != nil {
		return fmt.Errorf("falloff.kind: %w", err)
	}
	c.Derived.Falloff = falloff.MustNew(kind, c.Falloff.Amplitude, c.Falloff.Coefficient, c.Falloff.Clamp)

	basis, err := noise.ParseBasis(c.Noise.Basis)
	if err != nil {
		return fmt.Errorf("noise.basis: %w", err)
	}
	c.Derived.NoiseBasis = basis
	c.Derived.Fractal = noise.FractalParams{Alpha: c.Noise.Alpha, Beta: c.Noise.Beta, Octaves: c.Noise.Octaves}
	if basis == noise.BasisFractal && c.Noise.Octaves < 1 {
		return fmt.Errorf("noise.octaves must be positive for the fractal basis, got %d", c.Noise.Octaves)
	}

	// Preview cells default to a single pixel
	if c.Preview.CellSize < 1 {
		c.Preview.CellSize = 1
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
