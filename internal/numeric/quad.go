package numeric

// TrapezoidalRule estimates the integral of f over [a, b] using n equal
// sub-intervals: endpoints weighted 1/2, interior nodes weighted 1.
func TrapezoidalRule(f Func, a, b float64, opts ...QuadOption) float64 {
	n := newQuadParams(opts).n
	h := (b - a) / float64(n)

	sum := f(a)/2 + f(b)/2
	for i := 1; i < n; i++ {
		sum += f(a + float64(i)*h)
	}
	return h * sum
}

// SimpsonsRule estimates the integral of f over [a, b] with the composite
// Simpson 1/3 rule. An odd n is bumped to n+1 so the 1-4-2-...-4-1 weights
// stay symmetric.
func SimpsonsRule(f Func, a, b float64, opts ...QuadOption) float64 {
	n := newQuadParams(opts).n
	if n%2 != 0 {
		n++
	}
	h := (b - a) / float64(n)

	sum := f(a) + f(b)
	for i := 1; i < n; i++ {
		coeff := 4.0
		if i%2 == 0 {
			coeff = 2.0
		}
		sum += coeff * f(a+float64(i)*h)
	}
	return h / 3 * sum
}
