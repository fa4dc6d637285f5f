package numeric

import (
	"math"
	"testing"
)

func TestLinspace(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
		num        int
		expected   []float64
	}{
		{"empty", 0, 1, 0, []float64{}},
		{"negative", 0, 1, -3, []float64{}},
		{"single", 2, 5, 1, []float64{2}},
		{"pair", -1, 1, 2, []float64{-1, 1}},
		{"five", 0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
		{"descending", 2, -2, 3, []float64{2, 0, -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Linspace(tt.start, tt.end, tt.num)
			if len(got) != len(tt.expected) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if math.Abs(got[i]-tt.expected[i]) > 1e-12 {
					t.Errorf("[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestDifferences(t *testing.T) {
	if got := Differences(nil); len(got) != 0 {
		t.Errorf("nil input: got %v", got)
	}
	if got := Differences([]float64{4}); len(got) != 0 {
		t.Errorf("single input: got %v", got)
	}

	got := Differences([]float64{1, 4, 9, 16})
	want := []float64{3, 5, 7}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSampledTrapezoid_MatchesRule(t *testing.T) {
	for _, n := range []int{1, 10, 100} {
		xs := Linspace(0, math.Pi, n+1)
		got := SampledTrapezoid(xs, Tabulate(math.Sin, xs))
		want := TrapezoidalRule(math.Sin, 0, math.Pi, Subintervals(n))
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("n=%d: sampled %v, rule %v", n, got, want)
		}
	}
}

func TestSampledTrapezoid_Showcase(t *testing.T) {
	// 1000 samples, h = pi/999
	xs := Linspace(0, math.Pi, 1000)
	got := SampledTrapezoid(xs, Tabulate(math.Sin, xs))
	if math.Abs(got-2) > 1e-5 {
		t.Errorf("got %.10f, expected 2", got)
	}
}

func TestSampledTrapezoid_LengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on length mismatch")
		}
	}()
	SampledTrapezoid([]float64{0, 1, 2}, []float64{0, 1})
}
