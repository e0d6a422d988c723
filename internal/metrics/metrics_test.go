package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/gaslab/internal/gas"
)

func TestTemperatureDriftTracksWorstDeviation(t *testing.T) {
	m := NewTemperatureDrift()

	m.Observe(gas.Stats{Temperature: 1.05, TargetTemperature: 1.0})
	m.Observe(gas.Stats{Temperature: 0.90, TargetTemperature: 1.0})
	m.Observe(gas.Stats{Temperature: 1.02, TargetTemperature: 1.0})

	if math.Abs(m.Value()-10.0) > 1e-9 {
		t.Errorf("expected worst drift 10%%, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero after reset")
	}
}

func TestTemperatureDriftIgnoresZeroTarget(t *testing.T) {
	m := NewTemperatureDrift()
	m.Observe(gas.Stats{Temperature: 5, TargetTemperature: 0})
	if m.Value() != 0 {
		t.Errorf("expected degenerate target to be skipped, got %f", m.Value())
	}
}

func TestEnergyDriftBaseline(t *testing.T) {
	m := NewEnergyDrift()

	m.Observe(gas.Stats{TotalEnergy: 100})
	m.Observe(gas.Stats{TotalEnergy: 101})
	m.Observe(gas.Stats{TotalEnergy: 98})

	if math.Abs(m.Value()-0.02) > 1e-12 {
		t.Errorf("expected max drift 0.02, got %f", m.Value())
	}
}

func TestCollisionRate(t *testing.T) {
	m := NewCollisionRate()

	m.Observe(gas.Stats{Collisions: 40, Time: 2.0})
	if math.Abs(m.Value()-20.0) > 1e-12 {
		t.Errorf("expected rate 20, got %f", m.Value())
	}

	m.Observe(gas.Stats{Collisions: 90, Time: 3.0})
	if math.Abs(m.Value()-30.0) > 1e-12 {
		t.Errorf("expected rate 30, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero rate at zero time")
	}
}

func TestMeanSpeedError(t *testing.T) {
	m := NewMeanSpeedError(2.0)

	m.Observe(gas.Stats{MeanSpeed: 2.1})
	if math.Abs(m.Value()-5.0) > 1e-9 {
		t.Errorf("expected 5%% error, got %f", m.Value())
	}
}

func TestPressureGap(t *testing.T) {
	m := NewPressureGap()

	m.Observe(gas.Stats{Pressure: 0.2, WallPressure: 0.19})
	if math.Abs(m.Value()-0.05) > 1e-9 {
		t.Errorf("expected gap 0.05, got %f", m.Value())
	}

	m.Observe(gas.Stats{Pressure: 0, WallPressure: 0.19})
	if m.Value() != 0 {
		t.Errorf("expected zero ideal pressure to be guarded, got %f", m.Value())
	}
}
