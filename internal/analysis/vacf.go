package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/san-kum/gaslab/internal/gas"
)

// Velocities copies the velocity of every particle in a snapshot.
// Callers record one frame per sampling interval and hand the series
// to [Autocorrelation].
func Velocities(particles []gas.Particle) []gas.Vec3 {
	out := make([]gas.Vec3, len(particles))
	for i, p := range particles {
		out[i] = p.Vel
	}
	return out
}

// Autocorrelation computes the velocity autocorrelation function
// C(τ) = ⟨v(t)·v(t+τ)⟩ from a recorded series of per-particle
// velocities, averaging over particles and time origins.
//
// frames[t][i] is the velocity of particle i at sample t. The result
// has maxLag+1 entries; maxLag is clamped to len(frames)-1.
func Autocorrelation(frames [][]gas.Vec3, maxLag int) []float64 {
	n := len(frames)
	if n == 0 || len(frames[0]) == 0 {
		return nil
	}
	if maxLag < 0 || maxLag >= n {
		maxLag = n - 1
	}

	c := make([]float64, maxLag+1)
	for lag := 0; lag <= maxLag; lag++ {
		sum := 0.0
		count := 0
		for t := 0; t+lag < n; t++ {
			now := frames[t]
			later := frames[t+lag]
			for i := range now {
				sum += now[i].Dot(later[i])
				count++
			}
		}
		if count > 0 {
			c[lag] = sum / float64(count)
		}
	}
	return c
}

// Normalize rescales a correlation series so that C(0) = 1.
func Normalize(c []float64) []float64 {
	out := make([]float64, len(c))
	if len(c) == 0 || c[0] == 0 {
		return out
	}
	for i, v := range c {
		out[i] = v / c[0]
	}
	return out
}

// DiffusionCoefficient integrates the unnormalized autocorrelation
// with the trapezoidal rule, per the Green-Kubo relation
// D = (1/3)∫C(t)dt. dt is the sampling interval of the series.
func DiffusionCoefficient(c []float64, dt float64) float64 {
	if len(c) < 2 || dt <= 0 {
		return 0
	}
	integral := 0.0
	for i := 1; i < len(c); i++ {
		integral += 0.5 * (c[i-1] + c[i]) * dt
	}
	return integral / 3.0
}

// Spectrum returns the magnitude spectrum of a correlation series,
// one entry per frequency bin up to the Nyquist limit.
func Spectrum(c []float64) []float64 {
	if len(c) < 2 {
		return nil
	}

	buf := make([]complex128, len(c))
	for i, v := range c {
		buf[i] = complex(v, 0)
	}
	spectrum := fft.FFT(buf)

	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}
