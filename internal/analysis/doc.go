// Package analysis provides post-run analysis of recorded particle
// velocities.
//
// The package includes:
//
//   - [Autocorrelation]: velocity autocorrelation over a sampled window
//   - [DiffusionCoefficient]: Green-Kubo self-diffusion estimate
//   - [Spectrum]: magnitude spectrum of a correlation series
//
// # Green-Kubo
//
// The self-diffusion coefficient follows from the time integral of the
// velocity autocorrelation function:
//
//	c := analysis.Autocorrelation(frames, 200)
//	d := analysis.DiffusionCoefficient(c, dt)
package analysis
