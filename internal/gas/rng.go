package gas

import (
	"math"
	"math/rand"
)

// rng wraps a seeded source with a Box-Muller normal generator. The
// transform yields two independent normals per pair of uniform draws;
// the second is cached for the next call.
type rng struct {
	*rand.Rand
	spare    float64
	hasSpare bool
}

func newRNG(seed int64) *rng {
	return &rng{Rand: rand.New(rand.NewSource(seed))}
}

// Normal returns a standard normal draw.
func (r *rng) Normal() float64 {
	if r.hasSpare {
		r.hasSpare = false
		return r.spare
	}

	u := r.Float64()
	for u == 0 {
		u = r.Float64()
	}
	v := r.Float64()

	mag := math.Sqrt(-2 * math.Log(u))
	r.spare = mag * math.Sin(2*math.Pi*v)
	r.hasSpare = true
	return mag * math.Cos(2*math.Pi*v)
}

// Jitter returns a uniform draw in [-amp, amp].
func (r *rng) Jitter(amp float64) float64 {
	return (r.Float64()*2 - 1) * amp
}
