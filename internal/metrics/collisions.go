package metrics

import "github.com/san-kum/gaslab/internal/gas"

// CollisionRate reports cumulative pair collisions per unit of simulated
// time, from the latest observation.
type CollisionRate struct {
	name       string
	collisions uint64
	time       float64
}

func NewCollisionRate() *CollisionRate {
	return &CollisionRate{name: "collision_rate"}
}

func (c *CollisionRate) Name() string { return c.name }

func (c *CollisionRate) Observe(s gas.Stats) {
	c.collisions = s.Collisions
	c.time = s.Time
}

func (c *CollisionRate) Value() float64 {
	if c.time <= 0 {
		return 0
	}
	return float64(c.collisions) / c.time
}

func (c *CollisionRate) Reset() {
	c.collisions = 0
	c.time = 0
}
