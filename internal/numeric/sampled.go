package numeric

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

// Linspace returns num evenly spaced points over [start, end], both ends
// included. num == 1 yields [start]; num <= 0 yields an empty slice.
func Linspace(start, end float64, num int) []float64 {
	switch {
	case num <= 0:
		return []float64{}
	case num == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, num), start, end)
}

// Tabulate evaluates f at every point of xs.
func Tabulate(f Func, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	return ys
}

// Differences returns the adjacent differences ys[i+1] - ys[i].
func Differences(ys []float64) []float64 {
	if len(ys) < 2 {
		return []float64{}
	}
	d := make([]float64, len(ys)-1)
	for i := range d {
		d[i] = ys[i+1] - ys[i]
	}
	return d
}

// SampledTrapezoid integrates pre-sampled data (xs ascending, ys = f(xs))
// with the trapezoid rule. It panics if the lengths differ or fewer than
// two samples are given.
func SampledTrapezoid(xs, ys []float64) float64 {
	return integrate.Trapezoidal(xs, ys)
}
