package analysis_test

import (
	"context"
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/numlab/internal/analysis"
	"github.com/san-kum/numlab/internal/numeric"
	"github.com/san-kum/numlab/internal/testfn"
)

var _ = Describe("EvaluateDerivatives", func() {
	poly := testfn.Polynomial()

	It("covers the grid end to end", func() {
		report, err := analysis.EvaluateDerivatives(poly, -2, 2, 100, numeric.DefaultStep)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Rows).To(HaveLen(100))
		Expect(report.Rows[0].X).To(BeNumerically("~", -2, 1e-12))
		Expect(report.Rows[99].X).To(BeNumerically("~", 2, 1e-12))
		Expect(report.Step).To(Equal(numeric.DefaultStep))
		Expect(report.Function).To(Equal("polynomial"))
	})

	It("keeps first-order errors small for the default step", func() {
		report, err := analysis.EvaluateDerivatives(poly, -2, 2, 100, numeric.DefaultStep)
		Expect(err).NotTo(HaveOccurred())

		sum := 0.0
		for _, row := range report.Rows {
			Expect(row.Exact).To(Equal(poly.Derivative(row.X)))
			Expect(row.ForwardErr).To(BeNumerically("<", 0.02))
			Expect(row.BackwardErr).To(BeNumerically("<", 0.02))
			sum += row.ForwardErr
		}
		Expect(report.AvgForwardError()).To(BeNumerically("~", sum/100, 1e-15))
		Expect(report.ForwardMetrics["max_abs_error"]).To(BeNumerically(">=", report.AvgForwardError()))
		Expect(report.BackwardMetrics).To(HaveKey("rms_error"))
	})

	It("rejects an empty grid", func() {
		_, err := analysis.EvaluateDerivatives(poly, -2, 2, 0, numeric.DefaultStep)
		Expect(errors.Is(err, analysis.ErrInvalidPointCount)).To(BeTrue())
	})

	It("passes a zero step through as NaN", func() {
		report, err := analysis.EvaluateDerivatives(poly, 0, 1, 3, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsNaN(report.Rows[1].Forward)).To(BeTrue())
	})

	It("samples the requested rows only", func() {
		report, _ := analysis.EvaluateDerivatives(poly, -2, 2, 100, numeric.DefaultStep)
		rows := analysis.Sample(report, []int{0, 10, 20, 30, 40, 100, -1})
		Expect(rows).To(HaveLen(5))
		Expect(rows[1]).To(Equal(report.Rows[10]))
	})
})

var _ = Describe("EvaluateIntegration", func() {
	intervals := []analysis.Interval{{A: -1, B: 1}, {A: 0, B: 2}}

	It("is exact for the cubic polynomial with Simpson", func() {
		results := analysis.EvaluateIntegration(testfn.Polynomial(), intervals, numeric.DefaultSubintervals)
		Expect(results).To(HaveLen(2))
		Expect(results[0].Exact).To(BeNumerically("~", -34.0/3, 1e-12))

		for _, r := range results {
			Expect(r.Simpsons.AbsError).To(BeNumerically("<", 1e-10))
			Expect(r.Trapezoidal.AbsError).To(BeNumerically(">", r.Simpsons.AbsError))
			Expect(r.Trapezoidal.RelError).To(BeNumerically("~", 100*r.Trapezoidal.AbsError/math.Abs(r.Exact), 1e-12))
		}
	})

	It("reports a non-finite relative error when the exact value is zero", func() {
		results := analysis.EvaluateIntegration(testfn.Trigonometric(), intervals[:1], numeric.DefaultSubintervals)
		rel := results[0].Trapezoidal.RelError
		Expect(math.IsInf(rel, 1) || math.IsNaN(rel)).To(BeTrue())
	})
})

var _ = Describe("Convergence", func() {
	ctx := context.Background()
	trig := testfn.Trigonometric()

	It("keeps sweep order and observes second and fourth order", func() {
		report, err := analysis.Convergence(ctx, trig, 0, 1, analysis.DefaultSweep, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Exact).To(BeNumerically("~", 1-math.Cos(1), 1e-15))
		Expect(report.Points).To(HaveLen(5))

		for i, p := range report.Points {
			Expect(p.N).To(Equal(analysis.DefaultSweep[i]))
			Expect(p.SimpsonsError).To(BeNumerically("<", p.TrapezoidalError))
			if i == 0 {
				Expect(math.IsNaN(p.TrapezoidalOrder)).To(BeTrue())
				continue
			}
			Expect(p.TrapezoidalOrder).To(BeNumerically("~", 2, 0.05))
			Expect(p.SimpsonsOrder).To(BeNumerically("~", 4, 0.1))
		}
	})

	It("gives the same answer with a single worker", func() {
		parallel, err := analysis.Convergence(ctx, trig, 0, 1, analysis.DefaultSweep, 0)
		Expect(err).NotTo(HaveOccurred())
		serial, err := analysis.Convergence(ctx, trig, 0, 1, analysis.DefaultSweep, 1)
		Expect(err).NotTo(HaveOccurred())

		for i := range serial.Points {
			Expect(serial.Points[i].TrapezoidalError).To(Equal(parallel.Points[i].TrapezoidalError))
			Expect(serial.Points[i].SimpsonsError).To(Equal(parallel.Points[i].SimpsonsError))
		}
	})

	It("rejects an empty sweep", func() {
		_, err := analysis.Convergence(ctx, trig, 0, 1, nil, 0)
		Expect(err).To(MatchError(analysis.ErrEmptySweep))
	})

	It("reports the offending sweep entry", func() {
		_, err := analysis.Convergence(ctx, trig, 0, 1, []int{10, 0, 40}, 0)
		Expect(errors.Is(err, analysis.ErrInvalidSubintervals)).To(BeTrue())

		var se *analysis.SweepError
		Expect(errors.As(err, &se)).To(BeTrue())
		Expect(se.Index).To(Equal(1))
	})

	It("stops on a canceled context", func() {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := analysis.Convergence(canceled, trig, 0, 1, analysis.DefaultSweep, 2)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
	})
})

var _ = Describe("StepConvergence", func() {
	ctx := context.Background()

	It("observes first order for both differences", func() {
		report, err := analysis.StepConvergence(ctx, testfn.Polynomial(), 0.5, []float64{1e-2, 5e-3, 2.5e-3}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Exact).To(Equal(testfn.Polynomial().Derivative(0.5)))

		for _, p := range report.Points[1:] {
			Expect(p.ForwardOrder).To(BeNumerically("~", 1, 0.05))
			Expect(p.BackwardOrder).To(BeNumerically("~", 1, 0.05))
		}
	})

	It("rejects a zero step", func() {
		_, err := analysis.StepConvergence(ctx, testfn.Cubic(), 1, []float64{1e-2, 0}, 0)
		Expect(errors.Is(err, analysis.ErrInvalidStep)).To(BeTrue())
	})
})

var _ = Describe("EmpiricalOrder", func() {
	It("recovers the exponent from a refinement", func() {
		Expect(analysis.EmpiricalOrder(4e-2, 1e-2, 2)).To(BeNumerically("~", 2, 1e-12))
		Expect(analysis.EmpiricalOrder(1.6e-3, 1e-4, 2)).To(BeNumerically("~", 4, 1e-12))
	})

	It("is NaN when both errors vanish", func() {
		Expect(math.IsNaN(analysis.EmpiricalOrder(0, 0, 2))).To(BeTrue())
	})
})
