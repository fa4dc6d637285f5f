package numeric

// ForwardDifference estimates f'(x) as (f(x+h) - f(x)) / h.
func ForwardDifference(f Func, x float64, opts ...DiffOption) float64 {
	h := newDiffParams(opts).h
	return (f(x+h) - f(x)) / h
}

// BackwardDifference estimates f'(x) as (f(x) - f(x-h)) / h.
func BackwardDifference(f Func, x float64, opts ...DiffOption) float64 {
	h := newDiffParams(opts).h
	return (f(x) - f(x-h)) / h
}
