// Package stats computes descriptive statistics over sampled function values.
package stats

import (
	"math"

	moremath "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/numlab/internal/numeric"
)

// Summary describes a sample. Variance and StdDev are population moments.
type Summary struct {
	N              int     `json:"n"`
	Sum            float64 `json:"sum"`
	Mean           float64 `json:"mean"`
	Variance       float64 `json:"variance"`
	StdDev         float64 `json:"std_dev"`
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Median         float64 `json:"median"`
	MeanDifference float64 `json:"mean_difference"`
}

// Describe summarizes xs without modifying it. An empty sample has a zero sum
// and NaN everywhere else.
func Describe(xs []float64) Summary {
	nan := math.NaN()
	s := Summary{
		N:              len(xs),
		Mean:           nan,
		Variance:       nan,
		StdDev:         nan,
		Min:            nan,
		Max:            nan,
		Median:         nan,
		MeanDifference: nan,
	}
	if len(xs) == 0 {
		return s
	}

	s.Sum = floats.Sum(xs)
	s.Mean, s.Variance = stat.PopMeanVariance(xs, nil)
	s.StdDev = math.Sqrt(s.Variance)

	sample := moremath.Sample{Xs: append([]float64(nil), xs...)}
	s.Min, s.Max = sample.Bounds()
	sample.Sort()
	s.Median = sample.Quantile(0.5)

	if d := numeric.Differences(xs); len(d) > 0 {
		s.MeanDifference = stat.Mean(d, nil)
	}
	return s
}

// DescribeFunc samples f on num evenly spaced points of [start, end] and
// summarizes the values.
func DescribeFunc(f numeric.Func, start, end float64, num int) Summary {
	return Describe(numeric.Tabulate(f, numeric.Linspace(start, end, num)))
}
