package metrics

import (
	"math"

	"github.com/san-kum/gaslab/internal/gas"
)

// MeanSpeedError reports the percent error of the latest mean speed
// against an expected value, usually the Maxwell mean sqrt(8kT/(pi*m)).
type MeanSpeedError struct {
	name     string
	expected float64
	latest   float64
}

func NewMeanSpeedError(expected float64) *MeanSpeedError {
	return &MeanSpeedError{name: "mean_speed_error_pct", expected: expected}
}

func (m *MeanSpeedError) Name() string { return m.name }

func (m *MeanSpeedError) Observe(s gas.Stats) {
	m.latest = s.MeanSpeed
}

func (m *MeanSpeedError) Value() float64 {
	if m.expected == 0 {
		return 0
	}
	return math.Abs(100 * (m.latest - m.expected) / m.expected)
}

func (m *MeanSpeedError) Reset() {
	m.latest = 0
}

// PressureGap reports the relative gap between the measured wall
// pressure and the ideal-gas prediction, from the latest observation.
type PressureGap struct {
	name     string
	ideal    float64
	measured float64
}

func NewPressureGap() *PressureGap {
	return &PressureGap{name: "pressure_gap"}
}

func (p *PressureGap) Name() string { return p.name }

func (p *PressureGap) Observe(s gas.Stats) {
	p.ideal = s.Pressure
	p.measured = s.WallPressure
}

func (p *PressureGap) Value() float64 {
	if p.ideal == 0 {
		return 0
	}
	return math.Abs(p.measured-p.ideal) / p.ideal
}

func (p *PressureGap) Reset() {
	p.ideal = 0
	p.measured = 0
}
