package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/numlab/internal/metrics"
	"github.com/san-kum/numlab/internal/numeric"
	"github.com/san-kum/numlab/internal/testfn"
)

type DerivativeRow struct {
	X           float64 `json:"x"`
	Exact       float64 `json:"exact"`
	Forward     float64 `json:"forward"`
	Backward    float64 `json:"backward"`
	ForwardErr  float64 `json:"forward_err"`
	BackwardErr float64 `json:"backward_err"`
}

type DerivativeReport struct {
	Function        string             `json:"function"`
	Step            float64            `json:"step"`
	Rows            []DerivativeRow    `json:"rows"`
	ForwardMetrics  map[string]float64 `json:"forward_metrics"`
	BackwardMetrics map[string]float64 `json:"backward_metrics"`
}

// AvgForwardError is the mean absolute forward-difference error over the grid.
func (r *DerivativeReport) AvgForwardError() float64 {
	return r.ForwardMetrics["mean_abs_error"]
}

func (r *DerivativeReport) AvgBackwardError() float64 {
	return r.BackwardMetrics["mean_abs_error"]
}

// EvaluateDerivatives compares both difference estimators with the exact
// derivative on numPoints evenly spaced points of [xStart, xEnd].
func EvaluateDerivatives(tf testfn.Function, xStart, xEnd float64, numPoints int, h float64) (*DerivativeReport, error) {
	if numPoints < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPointCount, numPoints)
	}

	fwdMetrics := metrics.Default()
	bwdMetrics := metrics.Default()

	xs := numeric.Linspace(xStart, xEnd, numPoints)
	rows := make([]DerivativeRow, len(xs))
	for i, x := range xs {
		exact := tf.Derivative(x)
		fwd := numeric.ForwardDifference(tf.Fn, x, numeric.Step(h))
		bwd := numeric.BackwardDifference(tf.Fn, x, numeric.Step(h))

		rows[i] = DerivativeRow{
			X:           x,
			Exact:       exact,
			Forward:     fwd,
			Backward:    bwd,
			ForwardErr:  math.Abs(fwd - exact),
			BackwardErr: math.Abs(bwd - exact),
		}

		for _, m := range fwdMetrics {
			m.Observe(fwd, exact)
		}
		for _, m := range bwdMetrics {
			m.Observe(bwd, exact)
		}
	}

	return &DerivativeReport{
		Function:        tf.Key,
		Step:            h,
		Rows:            rows,
		ForwardMetrics:  metrics.Collect(fwdMetrics),
		BackwardMetrics: metrics.Collect(bwdMetrics),
	}, nil
}

// Sample picks the rows at the given indices, skipping any out of range.
func Sample(r *DerivativeReport, indices []int) []DerivativeRow {
	out := make([]DerivativeRow, 0, len(indices))
	for _, idx := range indices {
		if idx >= 0 && idx < len(r.Rows) {
			out = append(out, r.Rows[idx])
		}
	}
	return out
}
