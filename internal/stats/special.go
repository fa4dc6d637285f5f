package stats

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

type SpecialValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Special evaluates a fixed set of special functions at small arguments.
func Special() []SpecialValue {
	return []SpecialValue{
		{Name: "gamma(5)", Value: math.Gamma(5)},
		{Name: "beta(2, 3)", Value: mathext.Beta(2, 3)},
		{Name: "bessel J0(1)", Value: math.J0(1)},
		{Name: "erf(1)", Value: math.Erf(1)},
	}
}
