package gas

import "math"

// Params fixes one run's physical and sampling configuration. A run
// never mutates its Params; changing anything means constructing a new
// Engine.
type Params struct {
	N  int     `json:"n"`  // particle count
	L  float64 `json:"l"`  // box side length
	R  float64 `json:"r"`  // particle radius
	M  float64 `json:"m"`  // particle mass
	K  float64 `json:"k"`  // Boltzmann constant, normalized units
	Dt float64 `json:"dt"` // timestep
	Nu float64 `json:"nu"` // thermostat collision frequency, 0 disables

	EquilibrationTime float64 `json:"equilibration_time"`
	SamplingTime      float64 `json:"sampling_time"`

	Seed       int64 `json:"seed"` // 0 seeds from the wall clock
	MaxSamples int   `json:"max_samples"`
	MaxHistory int   `json:"max_history"`
}

func DefaultParams() Params {
	return Params{
		N:                 200,
		L:                 10.0,
		R:                 0.1,
		M:                 1.0,
		K:                 1.0,
		Dt:                0.01,
		Nu:                0.5,
		EquilibrationTime: 10.0,
		SamplingTime:      30.0,
		MaxSamples:        20000,
		MaxHistory:        600,
	}
}

// GridSide is the particle grid dimension used for initial placement,
// ceil(N^(1/3)).
func (p Params) GridSide() int {
	if p.N < 1 {
		return 0
	}
	side := int(math.Ceil(math.Cbrt(float64(p.N))))
	for side*side*side < p.N {
		side++
	}
	return side
}

// PackingFraction is the density heuristic N*(4/3)*pi*R^3 / L^3. Values
// approaching 0.5 make the grid placement and fixed-dt collision pass
// unreliable; this is documentation, not an enforced bound.
func (p Params) PackingFraction() float64 {
	if p.L <= 0 {
		return 0
	}
	return float64(p.N) * (4.0 / 3.0) * math.Pi * p.R * p.R * p.R / (p.L * p.L * p.L)
}

// Validate rejects non-physical configurations with a
// ConfigurationError naming the offending field. Beyond positivity it
// requires grid placement feasibility: a cell must fit one sphere.
func (p Params) Validate() error {
	if p.N < 1 {
		return invalidParam("n", float64(p.N), "must be at least 1")
	}
	if !positive(p.L) {
		return invalidParam("l", p.L, "must be positive and finite")
	}
	if !positive(p.R) {
		return invalidParam("r", p.R, "must be positive and finite")
	}
	if !positive(p.M) {
		return invalidParam("m", p.M, "must be positive and finite")
	}
	if !positive(p.K) {
		return invalidParam("k", p.K, "must be positive and finite")
	}
	if !positive(p.Dt) {
		return invalidParam("dt", p.Dt, "must be positive and finite")
	}
	if math.IsNaN(p.Nu) || math.IsInf(p.Nu, 0) || p.Nu < 0 {
		return invalidParam("nu", p.Nu, "must be non-negative and finite")
	}
	if math.IsNaN(p.EquilibrationTime) || math.IsInf(p.EquilibrationTime, 0) || p.EquilibrationTime < 0 {
		return invalidParam("equilibration_time", p.EquilibrationTime, "must be non-negative and finite")
	}
	if math.IsNaN(p.SamplingTime) || math.IsInf(p.SamplingTime, 0) || p.SamplingTime < 0 {
		return invalidParam("sampling_time", p.SamplingTime, "must be non-negative and finite")
	}
	if p.MaxSamples < p.N {
		return invalidParam("max_samples", float64(p.MaxSamples), "must hold at least one per-particle snapshot")
	}
	if p.MaxHistory < 1 {
		return invalidParam("max_history", float64(p.MaxHistory), "must be at least 1")
	}

	spacing := p.L / float64(p.GridSide())
	if 2*p.R >= spacing {
		return &ConfigurationError{
			Field:   "r",
			Value:   p.R,
			Reason:  "sphere diameter exceeds placement grid spacing",
			Wrapped: ErrInfeasiblePacking,
		}
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
