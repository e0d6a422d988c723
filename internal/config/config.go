package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/gaslab/internal/gas"
)

// Config is the YAML view of a run configuration. Field semantics match
// [gas.Params]; zero Seed means seed from the wall clock.
type Config struct {
	Particles         int     `yaml:"particles"`
	BoxLength         float64 `yaml:"box_length"`
	Radius            float64 `yaml:"radius"`
	Mass              float64 `yaml:"mass"`
	Boltzmann         float64 `yaml:"boltzmann"`
	Dt                float64 `yaml:"dt"`
	Nu                float64 `yaml:"nu"`
	EquilibrationTime float64 `yaml:"equilibration_time"`
	SamplingTime      float64 `yaml:"sampling_time"`
	Seed              int64   `yaml:"seed"`
	MaxSamples        int     `yaml:"max_samples"`
	MaxHistory        int     `yaml:"max_history"`
}

func DefaultConfig() *Config {
	return FromParams(gas.DefaultParams())
}

func FromParams(p gas.Params) *Config {
	return &Config{
		Particles:         p.N,
		BoxLength:         p.L,
		Radius:            p.R,
		Mass:              p.M,
		Boltzmann:         p.K,
		Dt:                p.Dt,
		Nu:                p.Nu,
		EquilibrationTime: p.EquilibrationTime,
		SamplingTime:      p.SamplingTime,
		Seed:              p.Seed,
		MaxSamples:        p.MaxSamples,
		MaxHistory:        p.MaxHistory,
	}
}

// Params converts to the engine's parameter struct. Validation happens
// in [gas.New], not here.
func (c *Config) Params() gas.Params {
	return gas.Params{
		N:                 c.Particles,
		L:                 c.BoxLength,
		R:                 c.Radius,
		M:                 c.Mass,
		K:                 c.Boltzmann,
		Dt:                c.Dt,
		Nu:                c.Nu,
		EquilibrationTime: c.EquilibrationTime,
		SamplingTime:      c.SamplingTime,
		Seed:              c.Seed,
		MaxSamples:        c.MaxSamples,
		MaxHistory:        c.MaxHistory,
	}
}

// Load reads a YAML file over the defaults, so partial files only
// override the keys they name.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
