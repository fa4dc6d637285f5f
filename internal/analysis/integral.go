package analysis

import (
	"math"

	"github.com/san-kum/numlab/internal/numeric"
	"github.com/san-kum/numlab/internal/testfn"
)

type Interval struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

type Estimate struct {
	Value    float64 `json:"value"`
	AbsError float64 `json:"abs_error"`
	// RelError is a percentage; an exact value of zero makes it Inf or NaN.
	RelError float64 `json:"rel_error"`
}

type IntegrationResult struct {
	Interval    Interval `json:"interval"`
	Exact       float64  `json:"exact"`
	Trapezoidal Estimate `json:"trapezoidal"`
	Simpsons    Estimate `json:"simpsons"`
}

func newEstimate(value, exact float64) Estimate {
	diff := value - exact
	return Estimate{
		Value:    value,
		AbsError: math.Abs(diff),
		RelError: math.Abs(diff/exact) * 100,
	}
}

// EvaluateIntegration runs both quadrature rules with n sub-intervals over
// every interval and compares them with the exact integral.
func EvaluateIntegration(tf testfn.Function, intervals []Interval, n int) []IntegrationResult {
	results := make([]IntegrationResult, 0, len(intervals))
	for _, iv := range intervals {
		exact := tf.Integral(iv.A, iv.B)
		trap := numeric.TrapezoidalRule(tf.Fn, iv.A, iv.B, numeric.Subintervals(n))
		simp := numeric.SimpsonsRule(tf.Fn, iv.A, iv.B, numeric.Subintervals(n))

		results = append(results, IntegrationResult{
			Interval:    iv,
			Exact:       exact,
			Trapezoidal: newEstimate(trap, exact),
			Simpsons:    newEstimate(simp, exact),
		})
	}
	return results
}
