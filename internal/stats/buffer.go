package stats

// SampleBuffer accumulates scalar samples up to a cap. Once the cap is
// exceeded the oldest batch-sized block is dropped, so steady-state
// appends of one snapshot evict exactly one older snapshot.
type SampleBuffer struct {
	max   int
	batch int
	data  []float64
}

func NewSampleBuffer(max, batch int) *SampleBuffer {
	if max < 1 {
		max = 1
	}
	if batch < 1 {
		batch = 1
	}
	return &SampleBuffer{max: max, batch: batch}
}

func (b *SampleBuffer) Append(vals ...float64) {
	b.data = append(b.data, vals...)
	for len(b.data) > b.max {
		drop := b.batch
		if drop > len(b.data) {
			drop = len(b.data)
		}
		b.data = b.data[drop:]
	}
}

func (b *SampleBuffer) Len() int { return len(b.data) }

// Values exposes the underlying samples for read-only consumption.
func (b *SampleBuffer) Values() []float64 { return b.data }

// Record is one history entry: simulated time, percent deviation of the
// instantaneous temperature from the target, and total kinetic energy.
type Record struct {
	Time         float64 `json:"time"`
	TempErrorPct float64 `json:"temp_error_pct"`
	TotalEnergy  float64 `json:"total_energy"`
}

// History keeps a bounded time series, dropping the single oldest record
// when full.
type History struct {
	max  int
	recs []Record
}

func NewHistory(max int) *History {
	if max < 1 {
		max = 1
	}
	return &History{max: max}
}

func (h *History) Append(r Record) {
	h.recs = append(h.recs, r)
	if len(h.recs) > h.max {
		h.recs = h.recs[1:]
	}
}

func (h *History) Len() int { return len(h.recs) }

// Records returns a copy so snapshots stay stable while the run goes on.
func (h *History) Records() []Record {
	out := make([]Record, len(h.recs))
	copy(out, h.recs)
	return out
}
