package gas

import (
	"context"
	"fmt"
	"math"
	"sync"
)

// RunSummary is one ensemble member's outcome.
type RunSummary struct {
	Seed  int64
	Final Stats
}

// Ensemble runs independent engines with sequential seeds. Each member
// gets its own engine and its own driver goroutine, so the one-writer
// rule holds per instance while members run concurrently.
type Ensemble struct {
	params    Params
	numRuns   int
	seedStart int64
}

func NewEnsemble(p Params, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{params: p, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context) ([]RunSummary, error) {
	if e.numRuns < 1 {
		return nil, fmt.Errorf("gas: ensemble needs at least one run, got %d", e.numRuns)
	}

	summaries := make([]RunSummary, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			p := e.params
			p.Seed = e.seedStart + int64(idx)

			eng, err := New(p)
			if err != nil {
				errs[idx] = err
				return
			}
			res, err := NewRunner(eng).Run(ctx)
			if err != nil {
				errs[idx] = err
				return
			}
			summaries[idx] = RunSummary{Seed: p.Seed, Final: res.Final}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

// Aggregate is a cross-run mean and standard deviation.
type Aggregate struct {
	Mean   float64
	StdDev float64
}

// Summarize reduces ensemble outcomes to per-quantity aggregates.
func Summarize(sums []RunSummary) map[string]Aggregate {
	pick := func(f func(Stats) float64) Aggregate {
		vals := make([]float64, len(sums))
		for i, s := range sums {
			vals[i] = f(s.Final)
		}
		return aggregate(vals)
	}
	return map[string]Aggregate{
		"temperature":  pick(func(s Stats) float64 { return s.Temperature }),
		"pressure":     pick(func(s Stats) float64 { return s.Pressure }),
		"mean_speed":   pick(func(s Stats) float64 { return s.MeanSpeed }),
		"rms_speed":    pick(func(s Stats) float64 { return s.RMSSpeed }),
		"total_energy": pick(func(s Stats) float64 { return s.TotalEnergy }),
	}
}

func aggregate(vals []float64) Aggregate {
	if len(vals) == 0 {
		return Aggregate{}
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))

	variance := 0.0
	for _, v := range vals {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(vals))

	return Aggregate{Mean: mean, StdDev: math.Sqrt(variance)}
}
