package gas

import "context"

// Metric observes per-step snapshots during a driven run.
type Metric interface {
	Name() string
	Observe(s Stats)
	Value() float64
	Reset()
}

// Result of a completed headless run.
type Result struct {
	Final   Stats
	Chart   ChartData
	Metrics map[string]float64
	Steps   int
}

// Runner is a single-threaded external driver: it steps one engine to
// the finished phase, collecting samples every step and feeding metrics.
// One Runner owns one Engine for its whole lifetime.
type Runner struct {
	engine  *Engine
	metrics []Metric
}

func NewRunner(e *Engine) *Runner {
	return &Runner{engine: e}
}

func (r *Runner) AddMetric(m Metric) { r.metrics = append(r.metrics, m) }

func (r *Runner) Engine() *Engine { return r.engine }

func (r *Runner) Run(ctx context.Context) (*Result, error) {
	for _, m := range r.metrics {
		m.Reset()
	}

	steps := 0
	for r.engine.Phase() != PhaseFinished {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		r.engine.Step()
		r.engine.CollectSamples()
		steps++

		if len(r.metrics) > 0 {
			s := r.engine.Stats()
			for _, m := range r.metrics {
				m.Observe(s)
			}
		}
	}

	res := &Result{
		Final:   r.engine.Stats(),
		Chart:   r.engine.Chart(true),
		Metrics: make(map[string]float64),
		Steps:   steps,
	}
	for _, m := range r.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, nil
}
