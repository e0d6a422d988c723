package metrics

import (
	"math"

	"github.com/san-kum/gaslab/internal/gas"
)

// TemperatureDrift tracks the worst percent deviation of the
// instantaneous temperature from the thermostat target.
type TemperatureDrift struct {
	name    string
	maxAbs  float64
	samples int
}

func NewTemperatureDrift() *TemperatureDrift {
	return &TemperatureDrift{name: "temp_drift_pct"}
}

func (d *TemperatureDrift) Name() string { return d.name }

func (d *TemperatureDrift) Observe(s gas.Stats) {
	d.samples++
	if s.TargetTemperature == 0 {
		return
	}
	pct := math.Abs(100 * (s.Temperature - s.TargetTemperature) / s.TargetTemperature)
	d.maxAbs = math.Max(d.maxAbs, pct)
}

func (d *TemperatureDrift) Value() float64 {
	return d.maxAbs
}

func (d *TemperatureDrift) Reset() {
	d.maxAbs = 0
	d.samples = 0
}

// EnergyDrift tracks the worst relative drift of total kinetic energy
// from the first observed value.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (d *EnergyDrift) Name() string { return d.name }

func (d *EnergyDrift) Observe(s gas.Stats) {
	if d.samples == 0 {
		d.initial = s.TotalEnergy
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(s.TotalEnergy-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *EnergyDrift) Value() float64 {
	return d.maxDrift
}

func (d *EnergyDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}
