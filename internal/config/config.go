package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultModel    = "elimination"
	DefaultT0       = 0.0
	DefaultTEnd     = 1.0
	DefaultDt       = 0.001
	DefaultRuns     = 1000
	DefaultSeed     = 1
	DefaultKe       = 1.0
	DefaultKeIOV    = 1.0
	DefaultInitialY = 1.0
)

type Config struct {
	Model         string             `yaml:"model"`
	Params        map[string]float64 `yaml:"params,omitempty"`
	T0            float64            `yaml:"t0"`
	TEnd          float64            `yaml:"t_end"`
	Dt            float64            `yaml:"dt"`
	Y0            []float64          `yaml:"y0,omitempty"`
	Runs          int                `yaml:"runs"`
	Seed          uint64             `yaml:"seed"`
	Workers       int                `yaml:"workers,omitempty"`
	ValidateState bool               `yaml:"validate_state,omitempty"`
	StopAbove     float64            `yaml:"stop_above,omitempty"`
}

// DefaultConfig is the reference elimination experiment: 1000
// trajectories of dy = -y dt + N(0, 1) sqrt(dt) from y0 = 1 over [0, 1].
func DefaultConfig() *Config {
	return &Config{
		Model: DefaultModel,
		Params: map[string]float64{
			"ke":     DefaultKe,
			"ke_iov": DefaultKeIOV,
		},
		T0:   DefaultT0,
		TEnd: DefaultTEnd,
		Dt:   DefaultDt,
		Y0:   []float64{DefaultInitialY},
		Runs: DefaultRuns,
		Seed: DefaultSeed,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := DefaultConfig()
	// Params from the file replace the defaults rather than merging into
	// them: the defaults belong to the default model only.
	cfg.Params = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}

// Validate checks the settings the driver needs. The stepper itself accepts
// any span and step size.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("model must be set")
	}
	if c.Dt <= 0 {
		return errors.Errorf("dt must be positive, got %g", c.Dt)
	}
	if c.TEnd < c.T0 {
		return errors.Errorf("t_end (%g) must not precede t0 (%g)", c.TEnd, c.T0)
	}
	if c.Runs <= 0 {
		return errors.Errorf("runs must be positive, got %d", c.Runs)
	}
	if c.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.StopAbove < 0 {
		return errors.Errorf("stop_above must not be negative, got %g", c.StopAbove)
	}
	return nil
}
