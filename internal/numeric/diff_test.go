package numeric

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"
)

func identity(x float64) float64 { return x }
func square(x float64) float64   { return x * x }

func TestDifference_LinearIsExact(t *testing.T) {
	steps := []float64{1, 0.5, 0.25, 1.0 / 1024, -0.5}
	points := []float64{-3, -1, 0, 2, 7}

	for _, h := range steps {
		for _, x := range points {
			if got := ForwardDifference(identity, x, Step(h)); got != 1 {
				t.Errorf("forward x=%v h=%v: got %v, expected 1", x, h, got)
			}
			if got := BackwardDifference(identity, x, Step(h)); got != 1 {
				t.Errorf("backward x=%v h=%v: got %v, expected 1", x, h, got)
			}
		}
	}
}

func TestDifference_DefaultStep(t *testing.T) {
	x := 1.5
	if got, want := ForwardDifference(square, x), ForwardDifference(square, x, Step(DefaultStep)); got != want {
		t.Errorf("forward default: got %v, expected %v", got, want)
	}
	if got, want := BackwardDifference(square, x), BackwardDifference(square, x, Step(DefaultStep)); got != want {
		t.Errorf("backward default: got %v, expected %v", got, want)
	}

	// (x+h)^2 - x^2 over h is 2x + h
	if got := ForwardDifference(square, x); math.Abs(got-(2*x+DefaultStep)) > 1e-9 {
		t.Errorf("forward default step: got %.12f, expected %.12f", got, 2*x+DefaultStep)
	}
}

func TestDifference_FirstOrderConvergence(t *testing.T) {
	tests := []struct {
		name string
		fn   func(Func, float64, ...DiffOption) float64
	}{
		{"forward", ForwardDifference},
		{"backward", BackwardDifference},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, x := range []float64{-2, 0.5, 3} {
				exact := 2 * x
				h := 1e-2
				prev := math.Abs(tt.fn(square, x, Step(h)) - exact)
				for i := 0; i < 4; i++ {
					h /= 2
					cur := math.Abs(tt.fn(square, x, Step(h)) - exact)
					ratio := prev / cur
					if math.Abs(ratio-2) > 1e-3 {
						t.Errorf("x=%v h=%v: error ratio %.6f, expected ~2", x, h, ratio)
					}
					prev = cur
				}
			}
		})
	}
}

func TestDifference_ZeroStep(t *testing.T) {
	if got := ForwardDifference(square, 1, Step(0)); !math.IsNaN(got) {
		t.Errorf("forward h=0: got %v, expected NaN", got)
	}
	if got := BackwardDifference(square, 1, Step(0)); !math.IsNaN(got) {
		t.Errorf("backward h=0: got %v, expected NaN", got)
	}
}

func TestDifference_NegativeStepMirrors(t *testing.T) {
	x, h := 0.7, 0.01
	fwd := ForwardDifference(math.Sin, x, Step(-h))
	bwd := BackwardDifference(math.Sin, x, Step(h))
	if math.Abs(fwd-bwd) > 1e-12 {
		t.Errorf("forward(-h) = %v, backward(h) = %v", fwd, bwd)
	}
}

func TestDifference_MatchesGonum(t *testing.T) {
	for _, x := range []float64{-1.2, 0, 0.3, 2.5} {
		for _, h := range []float64{1e-2, 1e-3, 1e-4} {
			want := fd.Derivative(math.Exp, x, &fd.Settings{Formula: fd.Forward, Step: h})
			if got := ForwardDifference(math.Exp, x, Step(h)); math.Abs(got-want) > 1e-9 {
				t.Errorf("forward x=%v h=%v: got %v, gonum %v", x, h, got, want)
			}

			want = fd.Derivative(math.Exp, x, &fd.Settings{Formula: fd.Backward, Step: h})
			if got := BackwardDifference(math.Exp, x, Step(h)); math.Abs(got-want) > 1e-9 {
				t.Errorf("backward x=%v h=%v: got %v, gonum %v", x, h, got, want)
			}
		}
	}
}
