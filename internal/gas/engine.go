package gas

import (
	"math"
	"time"

	"github.com/san-kum/gaslab/internal/stats"
)

const (
	histogramBins = 30
	// Speed histograms span [0, speedRange*v_rms] of the target
	// temperature; the energy range is the matching kinetic energy.
	speedRange = 3.5
	// CollectSamples accepts at most one collection per interval of
	// simulated time.
	sampleInterval = 0.1
)

type Phase string

const (
	PhaseEquilibrating Phase = "equilibrating"
	PhaseCollecting    Phase = "collecting"
	PhaseFinished      Phase = "finished"
)

// Stats is an instantaneous, side-effect-free snapshot of a run.
type Stats struct {
	Time              float64 `json:"time"`
	Phase             Phase   `json:"phase"`
	Progress          float64 `json:"progress"`
	Temperature       float64 `json:"temperature"`
	TargetTemperature float64 `json:"target_temperature"`
	Pressure          float64 `json:"pressure"`      // ideal gas, N*k*T/L^3
	WallPressure      float64 `json:"wall_pressure"` // measured from wall impulse
	MeanSpeed         float64 `json:"mean_speed"`
	RMSSpeed          float64 `json:"rms_speed"`
	TotalEnergy       float64 `json:"total_energy"`
	Collisions        uint64  `json:"collisions"`
	Samples           int     `json:"samples"`
}

// ChartData is a recomputed-from-scratch histogram snapshot plus the
// bounded temperature/energy history.
type ChartData struct {
	Speed     []stats.Bin      `json:"speed"`
	Energy    []stats.Bin      `json:"energy"`
	LogEnergy []stats.LogPoint `json:"log_energy"`
	History   []stats.Record   `json:"history"`
	Samples   int              `json:"samples"`
}

// Engine owns all particle state and simulated time for one run. It has
// no internal concurrency: exactly one external driver may mutate it,
// and the query methods are read-only snapshots for that same driver.
type Engine struct {
	params Params
	rng    *rng

	particles  []Particle
	time       float64
	targetTemp float64
	sigma      float64 // thermostat resample stddev, sqrt(k*T/m)

	speedHist  *stats.Histogram
	energyHist *stats.Histogram
	speeds     *stats.SampleBuffer
	energies   *stats.SampleBuffer
	history    *stats.History
	lastSample float64

	collisions  uint64
	wallImpulse float64
}

// New validates params and builds a fully initialized engine: particles
// placed on a jittered grid, velocities drawn from a standard normal,
// target temperature fixed by equipartition, and histogram layouts fixed
// from that target so chart axes never move during the run.
func New(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Seed == 0 {
		p.Seed = time.Now().UnixNano()
	}

	e := &Engine{
		params:     p,
		rng:        newRNG(p.Seed),
		particles:  make([]Particle, p.N),
		speeds:     stats.NewSampleBuffer(p.MaxSamples, p.N),
		energies:   stats.NewSampleBuffer(p.MaxSamples, p.N),
		history:    stats.NewHistory(p.MaxHistory),
		lastSample: math.Inf(-1),
	}

	e.placeParticles()
	e.drawVelocities()

	kT := p.K * e.targetTemp
	e.sigma = math.Sqrt(kT / p.M)

	vMax := speedRange * stats.RMSSpeed(p.M, kT)
	eMax := 0.5 * p.M * vMax * vMax
	mass := p.M
	e.speedHist = stats.NewHistogram(vMax, histogramBins, func(v float64) float64 {
		return stats.SpeedPDF(v, mass, kT)
	})
	e.energyHist = stats.NewHistogram(eMax, histogramBins, func(en float64) float64 {
		return stats.EnergyPDF(en, kT)
	})

	return e, nil
}

// placeParticles fills a ceil(N^(1/3)) grid, one particle per cell at
// the cell center plus a uniform jitter within 20% of half the spacing,
// clamped into [R, L-R]. O(N) setup with no overlap resolution needed.
func (e *Engine) placeParticles() {
	p := e.params
	side := p.GridSide()
	spacing := p.L / float64(side)
	jitter := 0.2 * spacing / 2
	lo, hi := p.R, p.L-p.R

	for i := range e.particles {
		cx := i % side
		cy := (i / side) % side
		cz := i / (side * side)
		e.particles[i].Pos = Vec3{
			X: clamp((float64(cx)+0.5)*spacing+e.rng.Jitter(jitter), lo, hi),
			Y: clamp((float64(cy)+0.5)*spacing+e.rng.Jitter(jitter), lo, hi),
			Z: clamp((float64(cz)+0.5)*spacing+e.rng.Jitter(jitter), lo, hi),
		}
	}
}

// drawVelocities samples each component from a standard normal and fixes
// the target temperature from the resulting ensemble by equipartition.
// The target is the thermostat setpoint for the whole run and is never
// recomputed, even as the actual temperature fluctuates.
func (e *Engine) drawVelocities() {
	total := 0.0
	for i := range e.particles {
		e.particles[i].Vel = Vec3{e.rng.Normal(), e.rng.Normal(), e.rng.Normal()}
		e.particles[i].refresh(e.params.M)
		total += e.particles[i].Energy
	}
	e.targetTemp = temperature(total, e.params.N, e.params.K)
}

// temperature applies the equipartition relation T = 2*E/(3*N*k).
func temperature(totalEnergy float64, n int, k float64) float64 {
	if n < 1 || k <= 0 {
		return 0
	}
	return 2 * totalEnergy / (3 * float64(n) * k)
}

// Step advances simulated time by exactly Dt through three ordered full
// passes: free flight with wall reflection and thermostat resampling,
// pairwise collision resolution, then a refresh of derived quantities.
// No sub-stepping: a fast pair can tunnel within one dt, accepted for
// the intended dt/radius ranges.
func (e *Engine) Step() {
	e.advance()
	e.collide()
	for i := range e.particles {
		e.particles[i].refresh(e.params.M)
	}
	e.time += e.params.Dt
}

// advance moves every particle one dt and resolves wall crossings by
// per-axis specular reflection: clamp to the face and negate that axis
// component. Corners resolve as sequential single-axis reflections.
// Each particle then has probability Nu*dt of an Andersen thermostat
// resample at the target temperature.
func (e *Engine) advance() {
	p := e.params
	lo, hi := p.R, p.L-p.R
	resample := p.Nu * p.Dt

	for i := range e.particles {
		pt := &e.particles[i]
		pt.Pos = pt.Pos.Add(pt.Vel.Scale(p.Dt))

		if pt.Pos.X < lo {
			pt.Pos.X = lo
			pt.Vel.X = -pt.Vel.X
			e.wallImpulse += 2 * p.M * math.Abs(pt.Vel.X)
		} else if pt.Pos.X > hi {
			pt.Pos.X = hi
			pt.Vel.X = -pt.Vel.X
			e.wallImpulse += 2 * p.M * math.Abs(pt.Vel.X)
		}
		if pt.Pos.Y < lo {
			pt.Pos.Y = lo
			pt.Vel.Y = -pt.Vel.Y
			e.wallImpulse += 2 * p.M * math.Abs(pt.Vel.Y)
		} else if pt.Pos.Y > hi {
			pt.Pos.Y = hi
			pt.Vel.Y = -pt.Vel.Y
			e.wallImpulse += 2 * p.M * math.Abs(pt.Vel.Y)
		}
		if pt.Pos.Z < lo {
			pt.Pos.Z = lo
			pt.Vel.Z = -pt.Vel.Z
			e.wallImpulse += 2 * p.M * math.Abs(pt.Vel.Z)
		} else if pt.Pos.Z > hi {
			pt.Pos.Z = hi
			pt.Vel.Z = -pt.Vel.Z
			e.wallImpulse += 2 * p.M * math.Abs(pt.Vel.Z)
		}

		if resample > 0 && e.rng.Float64() < resample {
			pt.Vel = Vec3{
				X: e.sigma * e.rng.Normal(),
				Y: e.sigma * e.rng.Normal(),
				Z: e.sigma * e.rng.Normal(),
			}
		}
	}
}

// collide runs the brute-force O(N^2) pair pass. Cheap per-axis checks
// reject most pairs before the squared-distance test; overlapping pairs
// that are separating are skipped so a collision is never resolved
// twice. Equal masses make the elastic impulse an exchange of the normal
// velocity components.
func (e *Engine) collide() {
	p := e.params
	n := len(e.particles)
	minDist := 2 * p.R
	minDist2 := minDist * minDist
	maxPush := 0.5 * p.R
	lo, hi := p.R, p.L-p.R

	for i := 0; i < n; i++ {
		pi := &e.particles[i]
		for j := i + 1; j < n; j++ {
			pj := &e.particles[j]

			dx := pj.Pos.X - pi.Pos.X
			if dx > minDist || dx < -minDist {
				continue
			}
			dy := pj.Pos.Y - pi.Pos.Y
			if dy > minDist || dy < -minDist {
				continue
			}
			dz := pj.Pos.Z - pi.Pos.Z
			if dz > minDist || dz < -minDist {
				continue
			}

			d2 := dx*dx + dy*dy + dz*dz
			if d2 >= minDist2 || d2 == 0 {
				continue
			}

			dist := math.Sqrt(d2)
			nx, ny, nz := dx/dist, dy/dist, dz/dist

			// relative velocity along the contact normal
			vn := (pj.Vel.X-pi.Vel.X)*nx + (pj.Vel.Y-pi.Vel.Y)*ny + (pj.Vel.Z-pi.Vel.Z)*nz
			if vn >= 0 {
				continue
			}

			pi.Vel.X += vn * nx
			pi.Vel.Y += vn * ny
			pi.Vel.Z += vn * nz
			pj.Vel.X -= vn * nx
			pj.Vel.Y -= vn * ny
			pj.Vel.Z -= vn * nz

			// push apart by half the overlap each, capped to keep deep
			// interpenetration from exploding
			push := (minDist - dist) / 2
			if push > maxPush {
				push = maxPush
			}
			pi.Pos.X = clamp(pi.Pos.X-push*nx, lo, hi)
			pi.Pos.Y = clamp(pi.Pos.Y-push*ny, lo, hi)
			pi.Pos.Z = clamp(pi.Pos.Z-push*nz, lo, hi)
			pj.Pos.X = clamp(pj.Pos.X+push*nx, lo, hi)
			pj.Pos.Y = clamp(pj.Pos.Y+push*ny, lo, hi)
			pj.Pos.Z = clamp(pj.Pos.Z+push*nz, lo, hi)

			e.collisions++
		}
	}
}

// CollectSamples appends one per-particle snapshot to the sample buffers
// and one record to the history. It only fires during the collecting
// phase and at most once per 0.1 time units, so drivers may safely call
// it every step.
func (e *Engine) CollectSamples() {
	if e.phase() != PhaseCollecting {
		return
	}
	if e.time-e.lastSample < sampleInterval {
		return
	}
	e.lastSample = e.time

	speeds := make([]float64, len(e.particles))
	energies := make([]float64, len(e.particles))
	total := 0.0
	for i := range e.particles {
		speeds[i] = e.particles[i].Speed
		energies[i] = e.particles[i].Energy
		total += e.particles[i].Energy
	}
	e.speeds.Append(speeds...)
	e.energies.Append(energies...)

	t := temperature(total, e.params.N, e.params.K)
	errPct := 0.0
	if e.targetTemp != 0 {
		errPct = 100 * (t - e.targetTemp) / e.targetTemp
	}
	e.history.Append(stats.Record{Time: e.time, TempErrorPct: errPct, TotalEnergy: total})
}

func (e *Engine) phase() Phase {
	p := e.params
	switch {
	case e.time < p.EquilibrationTime:
		return PhaseEquilibrating
	case e.time < p.EquilibrationTime+p.SamplingTime:
		return PhaseCollecting
	default:
		return PhaseFinished
	}
}

// progress is the fractional position within the current phase window,
// clamped to [0,1] and guarded for zero-length windows.
func (e *Engine) progress() float64 {
	p := e.params
	frac := 1.0
	switch e.phase() {
	case PhaseEquilibrating:
		if p.EquilibrationTime > 0 {
			frac = e.time / p.EquilibrationTime
		}
	case PhaseCollecting:
		if p.SamplingTime > 0 {
			frac = (e.time - p.EquilibrationTime) / p.SamplingTime
		}
	}
	return clamp(frac, 0, 1)
}

// Stats returns a pure snapshot. It is total: degenerate configurations
// (zero temperature, zero time) produce zeros, never a fault.
func (e *Engine) Stats() Stats {
	p := e.params
	total, sum, sum2 := 0.0, 0.0, 0.0
	for i := range e.particles {
		total += e.particles[i].Energy
		sum += e.particles[i].Speed
		sum2 += e.particles[i].Speed * e.particles[i].Speed
	}
	t := temperature(total, p.N, p.K)

	s := Stats{
		Time:              e.time,
		Phase:             e.phase(),
		Progress:          e.progress(),
		Temperature:       t,
		TargetTemperature: e.targetTemp,
		TotalEnergy:       total,
		Collisions:        e.collisions,
		Samples:           e.speeds.Len(),
	}
	if n := float64(p.N); n > 0 {
		s.MeanSpeed = sum / n
		s.RMSSpeed = math.Sqrt(sum2 / n)
	}
	if vol := p.L * p.L * p.L; vol > 0 {
		s.Pressure = float64(p.N) * p.K * t / vol
	}
	if area := 6 * p.L * p.L; e.time > 0 && area > 0 {
		s.WallPressure = e.wallImpulse / (e.time * area)
	}
	return s
}

// Chart recomputes histogram counts from scratch against the fixed bin
// layouts. accumulated=false bins the live per-particle arrays for the
// instantaneous view; accumulated=true bins the bounded sample buffers
// for the final view. With zero samples every count and probability is
// zero and the log series is empty.
func (e *Engine) Chart(accumulated bool) ChartData {
	var speeds, energies []float64
	if accumulated {
		speeds = e.speeds.Values()
		energies = e.energies.Values()
	} else {
		speeds = make([]float64, len(e.particles))
		energies = make([]float64, len(e.particles))
		for i := range e.particles {
			speeds[i] = e.particles[i].Speed
			energies[i] = e.particles[i].Energy
		}
	}

	data := ChartData{
		Speed:   e.speedHist.Fill(speeds),
		Energy:  e.energyHist.Fill(energies),
		History: e.history.Records(),
		Samples: len(speeds),
	}
	data.LogEnergy = stats.LogSeries(data.Energy)
	return data
}

// Particles exposes the live slice for render layers. Callers must treat
// it as read-only; the engine is the sole mutator.
func (e *Engine) Particles() []Particle { return e.particles }

// Phase reports the lifecycle phase: equilibrating until
// EquilibrationTime, collecting until EquilibrationTime+SamplingTime,
// finished afterwards. Transitions are monotone in time.
func (e *Engine) Phase() Phase { return e.phase() }

func (e *Engine) Time() float64 { return e.time }

func (e *Engine) Params() Params { return e.params }

// TargetTemperature is the fixed thermostat setpoint derived at
// construction.
func (e *Engine) TargetTemperature() float64 { return e.targetTemp }
