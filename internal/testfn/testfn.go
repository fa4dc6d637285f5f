// Package testfn holds scalar test functions with known analytic derivatives
// and integrals, used to measure the error of the numeric estimators.
package testfn

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/numlab/internal/numeric"
)

// Function pairs f with its exact derivative and definite integral.
type Function struct {
	Key        string
	Name       string
	Fn         numeric.Func
	Derivative numeric.Func
	Integral   func(a, b float64) float64
}

// Polynomial is x³ - 2x² + 3x - 5.
func Polynomial() Function {
	return Function{
		Key:        "polynomial",
		Name:       "f(x) = x³ - 2x² + 3x - 5",
		Fn:         func(x float64) float64 { return x*x*x - 2*x*x + 3*x - 5 },
		Derivative: func(x float64) float64 { return 3*x*x - 4*x + 3 },
		Integral: func(a, b float64) float64 {
			F := func(x float64) float64 { return x*x*x*x/4 - 2*x*x*x/3 + 3*x*x/2 - 5*x }
			return F(b) - F(a)
		},
	}
}

func Trigonometric() Function {
	return Function{
		Key:        "trigonometric",
		Name:       "f(x) = sin(x)",
		Fn:         math.Sin,
		Derivative: math.Cos,
		Integral:   func(a, b float64) float64 { return math.Cos(a) - math.Cos(b) },
	}
}

func Exponential() Function {
	return Function{
		Key:        "exponential",
		Name:       "f(x) = exp(x)",
		Fn:         math.Exp,
		Derivative: math.Exp,
		Integral:   func(a, b float64) float64 { return math.Exp(b) - math.Exp(a) },
	}
}

func Cubic() Function {
	return Function{
		Key:        "cubic",
		Name:       "f(x) = x³",
		Fn:         func(x float64) float64 { return x * x * x },
		Derivative: func(x float64) float64 { return 3 * x * x },
		Integral:   func(a, b float64) float64 { return (b*b*b*b - a*a*a*a) / 4 },
	}
}

// Gaussian is exp(-x²); its integral is expressed through erf.
func Gaussian() Function {
	return Function{
		Key:        "gaussian",
		Name:       "f(x) = exp(-x²)",
		Fn:         func(x float64) float64 { return math.Exp(-x * x) },
		Derivative: func(x float64) float64 { return -2 * x * math.Exp(-x*x) },
		Integral: func(a, b float64) float64 {
			return math.Sqrt(math.Pi) / 2 * (math.Erf(b) - math.Erf(a))
		},
	}
}

type Registry struct {
	functions map[string]func() Function
}

func NewRegistry() *Registry {
	r := &Registry{functions: make(map[string]func() Function)}

	r.Register("polynomial", Polynomial)
	r.Register("trigonometric", Trigonometric)
	r.Register("exponential", Exponential)
	r.Register("cubic", Cubic)
	r.Register("gaussian", Gaussian)

	return r
}

func (r *Registry) Register(key string, ctor func() Function) {
	r.functions[key] = ctor
}

func (r *Registry) Get(key string) (Function, error) {
	fn, ok := r.functions[key]
	if !ok {
		return Function{}, fmt.Errorf("unknown function: %s", key)
	}
	return fn(), nil
}

// Names returns the registered keys in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Showcase returns the functions the default report walks through.
func (r *Registry) Showcase() []Function {
	return []Function{Polynomial(), Trigonometric()}
}
