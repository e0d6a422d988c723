package stats

import "math"

// Bin is one half-open interval [Start, End) with its empirical count,
// the normalized probability density count/(total*width), and the
// theoretical density evaluated once at the bin midpoint.
type Bin struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Count       int     `json:"count"`
	Probability float64 `json:"probability"`
	Theory      float64 `json:"theory"`
}

func (b Bin) Mid() float64   { return (b.Start + b.End) / 2 }
func (b Bin) Width() float64 { return b.End - b.Start }

// Histogram holds a fixed bin layout. Edges and theoretical densities
// are derived once at construction and never change afterwards, so chart
// axes stay stable across a run; Fill computes counts against the layout
// without mutating it.
type Histogram struct {
	width  float64
	layout []Bin
}

// NewHistogram lays out bins equally over [0, max). pdf, if non-nil, is
// evaluated at each bin midpoint for the Theory field. A non-positive
// max yields a degenerate zero-width layout that Fill guards against.
func NewHistogram(max float64, bins int, pdf func(float64) float64) *Histogram {
	if bins < 1 {
		bins = 1
	}
	width := 0.0
	if max > 0 {
		width = max / float64(bins)
	}
	layout := make([]Bin, bins)
	for i := range layout {
		start := float64(i) * width
		layout[i] = Bin{Start: start, End: start + width}
		if pdf != nil {
			layout[i].Theory = pdf(start + width/2)
		}
	}
	return &Histogram{width: width, layout: layout}
}

func (h *Histogram) Width() float64 { return h.width }
func (h *Histogram) Bins() int      { return len(h.layout) }

// Fill bins the samples into a fresh copy of the layout. Samples at or
// beyond the last edge clamp into the last bin so no mass is lost.
// Probabilities stay zero when the sample set is empty or the layout is
// degenerate.
func (h *Histogram) Fill(samples []float64) []Bin {
	out := make([]Bin, len(h.layout))
	copy(out, h.layout)
	if len(samples) == 0 || h.width <= 0 {
		return out
	}

	last := len(out) - 1
	for _, s := range samples {
		idx := int(s / h.width)
		if idx > last {
			idx = last
		}
		if idx < 0 {
			idx = 0
		}
		out[idx].Count++
	}

	norm := 1.0 / (float64(len(samples)) * h.width)
	for i := range out {
		out[i].Probability = float64(out[i].Count) * norm
	}
	return out
}

// LogFloor is the smallest probability admitted to semi-log series; bins
// at or below it are dropped instead of producing -Inf.
const LogFloor = 0.001

// LogPoint is one semi-log sample: bin midpoint against log10 of the
// empirical and theoretical densities.
type LogPoint struct {
	X      float64 `json:"x"`
	LogP   float64 `json:"log_p"`
	Theory float64 `json:"theory"`
}

// LogSeries maps filled bins onto log10 space for semi-log comparison
// against the theoretical curve.
func LogSeries(bins []Bin) []LogPoint {
	pts := make([]LogPoint, 0, len(bins))
	for _, b := range bins {
		if b.Probability <= LogFloor {
			continue
		}
		th := b.Theory
		if th < LogFloor {
			th = LogFloor
		}
		pts = append(pts, LogPoint{
			X:      b.Mid(),
			LogP:   math.Log10(b.Probability),
			Theory: math.Log10(th),
		})
	}
	return pts
}
