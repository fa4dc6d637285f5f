// Package analysis measures the error of the numeric estimators against
// functions with known analytic results.
//
// The harness looks at the same estimators from several angles:
//
//   - [EvaluateDerivatives]: forward/backward differences over a grid of points
//   - [EvaluateIntegration]: trapezoid and Simpson over a list of intervals
//   - [Convergence]: quadrature error across a sweep of subdivision counts,
//     with the empirical order of convergence between sweep entries
//   - [StepConvergence]: difference error across a sweep of step sizes
//
// # Empirical Order
//
// For successive sweep entries k-1 and k the observed order is
//
//	p = ln(e[k-1] / e[k]) / ln(n[k] / n[k-1])
//
// which approaches 2 for the trapezoid rule and 4 for Simpson's rule on
// smooth integrands. When both errors are zero (Simpson on a cubic) the
// order is NaN.
//
// # Concurrency
//
// Sweep entries are independent and run on a bounded worker group. Results
// are stored by sweep index, so output order does not depend on scheduling.
package analysis
