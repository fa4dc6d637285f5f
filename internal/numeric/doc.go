// Package numeric provides elementary finite-difference and quadrature rules
// for scalar functions.
//
// The package exposes four estimators over an opaque [Func]:
//
//   - [ForwardDifference]: (f(x+h) - f(x)) / h, first order
//   - [BackwardDifference]: (f(x) - f(x-h)) / h, first order
//   - [TrapezoidalRule]: composite trapezoid, second order
//   - [SimpsonsRule]: composite Simpson 1/3, fourth order, exact for cubics
//
// Step size and subdivision count are optional and default to [DefaultStep]
// and [DefaultSubintervals]:
//
//	d := numeric.ForwardDifference(math.Sin, 1)
//	d = numeric.ForwardDifference(math.Sin, 1, numeric.Step(1e-5))
//	area := numeric.SimpsonsRule(math.Sin, 0, math.Pi, numeric.Subintervals(10))
//
// # Input Handling
//
// Inputs are not validated. A zero step yields ±Inf or NaN, a negative step
// mirrors the difference direction, a reversed interval flips the sign of the
// integral and a non-positive subdivision count produces whatever IEEE-754
// arithmetic produces. Callers that need guarded behaviour should check their
// parameters first.
//
// Every function is pure and safe for concurrent use as long as f is.
package numeric
