package analysis

import (
	"context"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/numlab/internal/numeric"
	"github.com/san-kum/numlab/internal/testfn"
)

// DefaultSweep doubles the subdivision count from 10 to 160.
var DefaultSweep = []int{10, 20, 40, 80, 160}

type ConvergencePoint struct {
	N                int     `json:"n"`
	TrapezoidalError float64 `json:"trapezoidal_error"`
	SimpsonsError    float64 `json:"simpsons_error"`
	TrapezoidalOrder float64 `json:"trapezoidal_order"`
	SimpsonsOrder    float64 `json:"simpsons_order"`
}

type ConvergenceReport struct {
	Function string             `json:"function"`
	A        float64            `json:"a"`
	B        float64            `json:"b"`
	Exact    float64            `json:"exact"`
	Points   []ConvergencePoint `json:"points"`
}

// Convergence integrates tf over [a, b] once per entry of ns with both rules.
// workers bounds the number of concurrent evaluations; workers <= 0 means
// no limit. Orders are only meaningful for strictly increasing ns; a
// repeated count has refinement ratio 1 and its order is NaN.
func Convergence(ctx context.Context, tf testfn.Function, a, b float64, ns []int, workers int) (*ConvergenceReport, error) {
	if len(ns) == 0 {
		return nil, ErrEmptySweep
	}
	for i, n := range ns {
		if n <= 0 {
			return nil, &SweepError{Index: i, Value: float64(n), Wrapped: ErrInvalidSubintervals}
		}
	}

	exact := tf.Integral(a, b)
	points := make([]ConvergencePoint, len(ns))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, n := range ns {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			trap := numeric.TrapezoidalRule(tf.Fn, a, b, numeric.Subintervals(n))
			simp := numeric.SimpsonsRule(tf.Fn, a, b, numeric.Subintervals(n))
			points[i] = ConvergencePoint{
				N:                n,
				TrapezoidalError: math.Abs(trap - exact),
				SimpsonsError:    math.Abs(simp - exact),
			}
			logrus.WithFields(logrus.Fields{
				"function": tf.Key,
				"n":        n,
			}).Debug("convergence point evaluated")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for k := range points {
		if k == 0 {
			points[k].TrapezoidalOrder = math.NaN()
			points[k].SimpsonsOrder = math.NaN()
			continue
		}
		ratio := float64(points[k].N) / float64(points[k-1].N)
		points[k].TrapezoidalOrder = EmpiricalOrder(points[k-1].TrapezoidalError, points[k].TrapezoidalError, ratio)
		points[k].SimpsonsOrder = EmpiricalOrder(points[k-1].SimpsonsError, points[k].SimpsonsError, ratio)
	}

	return &ConvergenceReport{
		Function: tf.Key,
		A:        a,
		B:        b,
		Exact:    exact,
		Points:   points,
	}, nil
}

// EmpiricalOrder is ln(prevErr/curErr) / ln(refinement).
func EmpiricalOrder(prevErr, curErr, refinement float64) float64 {
	return math.Log(prevErr/curErr) / math.Log(refinement)
}

type StepPoint struct {
	H             float64 `json:"h"`
	ForwardError  float64 `json:"forward_error"`
	BackwardError float64 `json:"backward_error"`
	ForwardOrder  float64 `json:"forward_order"`
	BackwardOrder float64 `json:"backward_order"`
}

type StepReport struct {
	Function string      `json:"function"`
	X        float64     `json:"x"`
	Exact    float64     `json:"exact"`
	Points   []StepPoint `json:"points"`
}

// StepConvergence estimates tf'(x) once per step in hs with both difference
// estimators. The order between entries uses the step ratio h[k-1]/h[k].
func StepConvergence(ctx context.Context, tf testfn.Function, x float64, hs []float64, workers int) (*StepReport, error) {
	if len(hs) == 0 {
		return nil, ErrEmptySweep
	}
	for i, h := range hs {
		if h == 0 {
			return nil, &SweepError{Index: i, Value: h, Wrapped: ErrInvalidStep}
		}
	}

	exact := tf.Derivative(x)
	points := make([]StepPoint, len(hs))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, h := range hs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fwd := numeric.ForwardDifference(tf.Fn, x, numeric.Step(h))
			bwd := numeric.BackwardDifference(tf.Fn, x, numeric.Step(h))
			points[i] = StepPoint{
				H:             h,
				ForwardError:  math.Abs(fwd - exact),
				BackwardError: math.Abs(bwd - exact),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for k := range points {
		if k == 0 {
			points[k].ForwardOrder = math.NaN()
			points[k].BackwardOrder = math.NaN()
			continue
		}
		ratio := math.Abs(points[k-1].H / points[k].H)
		points[k].ForwardOrder = EmpiricalOrder(points[k-1].ForwardError, points[k].ForwardError, ratio)
		points[k].BackwardOrder = EmpiricalOrder(points[k-1].BackwardError, points[k].BackwardError, ratio)
	}

	return &StepReport{
		Function: tf.Key,
		X:        x,
		Exact:    exact,
		Points:   points,
	}, nil
}
