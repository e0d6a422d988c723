package stats_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gaslab/internal/stats"
)

var _ = Describe("Histogram", func() {
	var h *stats.Histogram

	BeforeEach(func() {
		h = stats.NewHistogram(10, 20, nil)
	})

	It("lays out equal-width bins over the range", func() {
		Expect(h.Bins()).To(Equal(20))
		Expect(h.Width()).To(BeNumerically("~", 0.5, 1e-12))

		bins := h.Fill(nil)
		Expect(bins[0].Start).To(Equal(0.0))
		Expect(bins[0].End).To(BeNumerically("~", 0.5, 1e-12))
		Expect(bins[19].End).To(BeNumerically("~", 10.0, 1e-12))
	})

	It("keeps the layout untouched across fills", func() {
		h.Fill([]float64{1, 2, 3})
		bins := h.Fill(nil)
		for _, b := range bins {
			Expect(b.Count).To(BeZero())
			Expect(b.Probability).To(BeZero())
		}
	})

	It("bins by integer division against the width", func() {
		bins := h.Fill([]float64{0.1, 0.49, 0.5, 9.99})
		Expect(bins[0].Count).To(Equal(2))
		Expect(bins[1].Count).To(Equal(1))
		Expect(bins[19].Count).To(Equal(1))
	})

	It("clamps overflow samples into the last bin", func() {
		bins := h.Fill([]float64{10.0, 25.0, 1e6})
		Expect(bins[19].Count).To(Equal(3))
	})

	It("normalizes probability density to unit mass", func() {
		samples := []float64{0.2, 1.1, 2.7, 3.3, 4.8, 5.5, 6.1, 7.9, 8.4, 9.6}
		bins := h.Fill(samples)

		total := 0.0
		for _, b := range bins {
			total += b.Probability * b.Width()
		}
		Expect(total).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("evaluates the theory density at bin midpoints once", func() {
		th := stats.NewHistogram(3, 3, func(x float64) float64 { return x * x })
		bins := th.Fill(nil)
		Expect(bins[0].Theory).To(BeNumerically("~", 0.25, 1e-12))
		Expect(bins[1].Theory).To(BeNumerically("~", 2.25, 1e-12))
		Expect(bins[2].Theory).To(BeNumerically("~", 6.25, 1e-12))
	})

	It("guards a degenerate zero-width layout", func() {
		z := stats.NewHistogram(0, 30, nil)
		bins := z.Fill([]float64{0, 0, 0})
		Expect(bins).To(HaveLen(30))
		for _, b := range bins {
			Expect(b.Count).To(BeZero())
			Expect(b.Probability).To(BeZero())
		}
	})
})

var _ = Describe("LogSeries", func() {
	It("drops bins at or below the floor", func() {
		bins := []stats.Bin{
			{Start: 0, End: 1, Probability: 0.5, Theory: 0.4},
			{Start: 1, End: 2, Probability: stats.LogFloor},
			{Start: 2, End: 3, Probability: 0},
		}
		pts := stats.LogSeries(bins)
		Expect(pts).To(HaveLen(1))
		Expect(pts[0].X).To(BeNumerically("~", 0.5, 1e-12))
		Expect(pts[0].LogP).To(BeNumerically("~", math.Log10(0.5), 1e-12))
		Expect(pts[0].Theory).To(BeNumerically("~", math.Log10(0.4), 1e-12))
	})

	It("floors tiny theory values instead of diverging", func() {
		bins := []stats.Bin{{Start: 0, End: 1, Probability: 0.1, Theory: 0}}
		pts := stats.LogSeries(bins)
		Expect(pts).To(HaveLen(1))
		Expect(pts[0].Theory).To(BeNumerically("~", math.Log10(stats.LogFloor), 1e-12))
	})
})

var _ = Describe("Maxwell", func() {
	const (
		mass = 1.0
		kT   = 1.5
	)

	It("orders the characteristic speeds", func() {
		vp := stats.MostProbableSpeed(mass, kT)
		vm := stats.MeanSpeed(mass, kT)
		vr := stats.RMSSpeed(mass, kT)
		Expect(vp).To(BeNumerically("<", vm))
		Expect(vm).To(BeNumerically("<", vr))
	})

	It("peaks the speed density at the most probable speed", func() {
		vp := stats.MostProbableSpeed(mass, kT)
		peak := stats.SpeedPDF(vp, mass, kT)
		Expect(stats.SpeedPDF(vp*0.8, mass, kT)).To(BeNumerically("<", peak))
		Expect(stats.SpeedPDF(vp*1.2, mass, kT)).To(BeNumerically("<", peak))
	})

	It("integrates the speed density to one", func() {
		upper := 6 * stats.RMSSpeed(mass, kT)
		n := 4000
		dv := upper / float64(n)
		sum := 0.0
		for i := 0; i < n; i++ {
			v := (float64(i) + 0.5) * dv
			sum += stats.SpeedPDF(v, mass, kT) * dv
		}
		Expect(sum).To(BeNumerically("~", 1.0, 1e-4))
	})

	It("integrates the energy density to one", func() {
		upper := 20 * kT
		n := 8000
		de := upper / float64(n)
		sum := 0.0
		for i := 0; i < n; i++ {
			en := (float64(i) + 0.5) * de
			sum += stats.EnergyPDF(en, kT) * de
		}
		Expect(sum).To(BeNumerically("~", 1.0, 1e-3))
	})

	It("returns zero for non-physical inputs", func() {
		Expect(stats.SpeedPDF(1, 0, kT)).To(BeZero())
		Expect(stats.SpeedPDF(1, mass, 0)).To(BeZero())
		Expect(stats.SpeedPDF(-1, mass, kT)).To(BeZero())
		Expect(stats.EnergyPDF(1, -2)).To(BeZero())
		Expect(stats.RMSSpeed(0, 0)).To(BeZero())
		Expect(stats.MeanSpeed(-1, 1)).To(BeZero())
	})
})

var _ = Describe("SampleBuffer", func() {
	It("appends until the cap", func() {
		b := stats.NewSampleBuffer(10, 3)
		b.Append(1, 2, 3)
		b.Append(4, 5, 6)
		Expect(b.Len()).To(Equal(6))
		Expect(b.Values()[0]).To(Equal(1.0))
	})

	It("evicts one batch once the cap is exceeded", func() {
		b := stats.NewSampleBuffer(9, 3)
		b.Append(1, 2, 3)
		b.Append(4, 5, 6)
		b.Append(7, 8, 9)
		b.Append(10, 11, 12)
		Expect(b.Len()).To(Equal(9))
		Expect(b.Values()[0]).To(Equal(4.0))
	})

	It("never grows past the cap under repeated appends", func() {
		b := stats.NewSampleBuffer(50, 7)
		for i := 0; i < 200; i++ {
			b.Append(1, 2, 3, 4, 5, 6, 7)
		}
		Expect(b.Len()).To(BeNumerically("<=", 50))
	})
})

var _ = Describe("History", func() {
	It("drops the single oldest record when full", func() {
		h := stats.NewHistory(3)
		for i := 0; i < 5; i++ {
			h.Append(stats.Record{Time: float64(i)})
		}
		recs := h.Records()
		Expect(recs).To(HaveLen(3))
		Expect(recs[0].Time).To(Equal(2.0))
		Expect(recs[2].Time).To(Equal(4.0))
	})

	It("snapshots records by copy", func() {
		h := stats.NewHistory(5)
		h.Append(stats.Record{Time: 1})
		recs := h.Records()
		h.Append(stats.Record{Time: 2})
		Expect(recs).To(HaveLen(1))
	})
})
