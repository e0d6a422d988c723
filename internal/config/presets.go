package config

import "sort"

// Presets are named run configurations, each a full Config built over
// the defaults.
var Presets = map[string]*Config{
	"quick": preset(func(c *Config) {
		c.Particles = 100
		c.EquilibrationTime = 2
		c.SamplingTime = 8
	}),
	"dilute": preset(func(c *Config) {
		c.Particles = 100
		c.BoxLength = 20
		c.Radius = 0.05
	}),
	"dense": preset(func(c *Config) {
		c.Particles = 512
		c.BoxLength = 6
		c.Radius = 0.25
		c.Dt = 0.005
		c.EquilibrationTime = 15
	}),
	"ballistic": preset(func(c *Config) {
		c.Nu = 0
	}),
	"coupled": preset(func(c *Config) {
		c.Nu = 2.0
	}),
	"big": preset(func(c *Config) {
		c.Particles = 1000
		c.BoxLength = 16
		c.SamplingTime = 60
	}),
}

func preset(mutate func(*Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
