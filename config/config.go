// Package config provides configuration loading and access for the
// automata lab.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/askel-dev/voxlife/classify"
	"github.com/askel-dev/voxlife/lattice"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all lab configuration parameters.
type Config struct {
	Run        RunConfig           `yaml:"run"`
	Batch      BatchConfig         `yaml:"batch"`
	Classifier classify.Thresholds `yaml:"classifier"`
	Output     OutputConfig        `yaml:"output"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// RunConfig is the full configuration surface of a single simulation run.
type RunConfig struct {
	Size        int    `yaml:"size"`        // Cubic grid side length; odd, >= 3
	Generations int    `yaml:"generations"` // Generations beyond the seed state
	Variant     string `yaml:"variant"`     // "inclusive27" or "exclusive26"
}

// BatchConfig holds batch orchestration parameters.
type BatchConfig struct {
	// Workers bounds concurrent rule runs; memory grows linearly with it.
	// 0 = GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// OutputConfig holds persistence destinations.
type OutputConfig struct {
	Dir string `yaml:"dir"` // CSV output directory ("" = disabled)
	DB  string `yaml:"db"`  // SQLite database path ("" = disabled)
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Variant lattice.Variant // Parsed Run.Variant
	Volume  int             // Run.Size cubed
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if
// path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. All validation happens
// here, before any simulation starts.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded values and calculates derived ones.
func (c *Config) computeDerived() error {
	variant, err := lattice.ParseVariant(c.Run.Variant)
	if err != nil {
		return fmt.Errorf("run.variant: %w", err)
	}
	if c.Run.Size < 3 || c.Run.Size%2 == 0 {
		return fmt.Errorf("run.size: %w: got %d", lattice.ErrBadSize, c.Run.Size)
	}
	if c.Run.Generations < 0 {
		return fmt.Errorf("run.generations must be >= 0, got %d", c.Run.Generations)
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must be >= 0, got %d", c.Batch.Workers)
	}

	c.Derived.Variant = variant
	c.Derived.Volume = c.Run.Size * c.Run.Size * c.Run.Size
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
