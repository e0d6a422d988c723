package gas

// Particle is one hard sphere. Pos stays within [R, L-R] per axis; Speed
// and Energy are derived from Vel and refreshed at the end of every step.
// The engine is the sole mutator.
type Particle struct {
	Pos    Vec3    `json:"pos"`
	Vel    Vec3    `json:"vel"`
	Speed  float64 `json:"speed"`
	Energy float64 `json:"energy"`
}

func (p *Particle) refresh(mass float64) {
	p.Speed = p.Vel.Norm()
	p.Energy = 0.5 * mass * p.Speed * p.Speed
}
