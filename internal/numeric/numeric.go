package numeric

// Func is a real scalar function treated as a black box.
type Func func(x float64) float64

const (
	DefaultStep         = 0.001
	DefaultSubintervals = 100
)

type diffParams struct{ h float64 }

// DiffOption configures a difference estimator.
type DiffOption func(*diffParams)

// Step overrides the difference step h. Any value is accepted, including 0.
func Step(h float64) DiffOption {
	return func(p *diffParams) { p.h = h }
}

func newDiffParams(opts []DiffOption) diffParams {
	p := diffParams{h: DefaultStep}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

type quadParams struct{ n int }

// QuadOption configures a quadrature rule.
type QuadOption func(*quadParams)

// Subintervals overrides the number of equal sub-intervals n.
func Subintervals(n int) QuadOption {
	return func(p *quadParams) { p.n = n }
}

func newQuadParams(opts []QuadOption) quadParams {
	p := quadParams{n: DefaultSubintervals}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}
