package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/gaslab/internal/gas"
)

func TestAutocorrelationConstantVelocity(t *testing.T) {
	v := gas.Vec3{X: 1, Y: 2, Z: 3}
	frames := make([][]gas.Vec3, 5)
	for i := range frames {
		frames[i] = []gas.Vec3{v, v, v}
	}

	c := Autocorrelation(frames, 4)
	if len(c) != 5 {
		t.Fatalf("expected 5 lags, got %d", len(c))
	}
	for lag, got := range c {
		if math.Abs(got-14.0) > 1e-12 {
			t.Errorf("lag %d: expected 14, got %g", lag, got)
		}
	}
}

func TestAutocorrelationAlternatingSign(t *testing.T) {
	frames := make([][]gas.Vec3, 6)
	for i := range frames {
		x := 1.0
		if i%2 == 1 {
			x = -1.0
		}
		frames[i] = []gas.Vec3{{X: x}}
	}

	c := Autocorrelation(frames, 2)
	want := []float64{1, -1, 1}
	for lag, expected := range want {
		if math.Abs(c[lag]-expected) > 1e-12 {
			t.Errorf("lag %d: expected %g, got %g", lag, expected, c[lag])
		}
	}
}

func TestAutocorrelationGuards(t *testing.T) {
	if c := Autocorrelation(nil, 4); c != nil {
		t.Errorf("expected nil for empty series, got %v", c)
	}
	if c := Autocorrelation([][]gas.Vec3{{}}, 4); c != nil {
		t.Errorf("expected nil for empty frames, got %v", c)
	}

	frames := [][]gas.Vec3{
		{{X: 1}},
		{{X: 1}},
		{{X: 1}},
	}
	c := Autocorrelation(frames, 10)
	if len(c) != 3 {
		t.Errorf("expected lag clamped to 3 entries, got %d", len(c))
	}
}

func TestNormalize(t *testing.T) {
	c := Normalize([]float64{4, 2, 1})
	want := []float64{1, 0.5, 0.25}
	for i, expected := range want {
		if math.Abs(c[i]-expected) > 1e-12 {
			t.Errorf("index %d: expected %g, got %g", i, expected, c[i])
		}
	}

	zero := Normalize([]float64{0, 5})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("expected zero series for zero lead, got %v", zero)
	}
}

func TestDiffusionCoefficientExponential(t *testing.T) {
	dt := 0.01
	c := make([]float64, 1001)
	for i := range c {
		c[i] = math.Exp(-float64(i) * dt)
	}

	d := DiffusionCoefficient(c, dt)
	expected := (1 - math.Exp(-10)) / 3.0
	if math.Abs(d-expected) > 1e-4 {
		t.Errorf("expected D near %g, got %g", expected, d)
	}
}

func TestDiffusionCoefficientGuards(t *testing.T) {
	if d := DiffusionCoefficient([]float64{1}, 0.01); d != 0 {
		t.Errorf("expected 0 for short series, got %g", d)
	}
	if d := DiffusionCoefficient([]float64{1, 0.5}, 0); d != 0 {
		t.Errorf("expected 0 for zero dt, got %g", d)
	}
}

func TestSpectrumCosinePeak(t *testing.T) {
	n := 256
	cycles := 8
	c := make([]float64, n)
	for i := range c {
		c[i] = math.Cos(2 * math.Pi * float64(cycles) * float64(i) / float64(n))
	}

	ps := Spectrum(c)
	if len(ps) != n/2 {
		t.Fatalf("expected %d bins, got %d", n/2, len(ps))
	}

	peak := 0
	for i := range ps {
		if ps[i] > ps[peak] {
			peak = i
		}
	}
	if peak != cycles {
		t.Errorf("expected peak at bin %d, got %d", cycles, peak)
	}
	if math.Abs(ps[peak]-float64(n)/2) > 1e-6 {
		t.Errorf("expected peak magnitude %g, got %g", float64(n)/2, ps[peak])
	}
}

func TestSpectrumShortSeries(t *testing.T) {
	if ps := Spectrum([]float64{1}); ps != nil {
		t.Errorf("expected nil for short series, got %v", ps)
	}
}

func TestVelocitiesSnapshot(t *testing.T) {
	particles := []gas.Particle{
		{Vel: gas.Vec3{X: 1}},
		{Vel: gas.Vec3{Y: 2}},
	}

	frame := Velocities(particles)
	if len(frame) != 2 {
		t.Fatalf("expected 2 velocities, got %d", len(frame))
	}

	particles[0].Vel.X = 99
	if frame[0].X != 1 {
		t.Errorf("expected snapshot independent of source, got %g", frame[0].X)
	}
}

func TestAutocorrelationEquipartition(t *testing.T) {
	p := gas.DefaultParams()
	p.N = 64
	p.Nu = 0
	p.Seed = 7

	eng, err := gas.New(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frames := make([][]gas.Vec3, 0, 50)
	for i := 0; i < 50; i++ {
		frames = append(frames, Velocities(eng.Particles()))
		for j := 0; j < 5; j++ {
			eng.Step()
		}
	}

	c := Autocorrelation(frames, 0)
	expected := 3 * p.K * eng.TargetTemperature() / p.M
	if math.Abs(c[0]-expected)/expected > 1e-9 {
		t.Errorf("expected C(0)=3kT/m=%g, got %g", expected, c[0])
	}
}
