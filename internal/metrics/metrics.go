package metrics

import "math"

// Metric accumulates the error of a sequence of estimates against exact values.
type Metric interface {
	Name() string
	Observe(estimate, exact float64)
	Value() float64
	Reset()
}

type MeanAbsError struct {
	name    string
	sum     float64
	samples int
}

func NewMeanAbsError() *MeanAbsError {
	return &MeanAbsError{name: "mean_abs_error"}
}

func (m *MeanAbsError) Name() string { return m.name }

func (m *MeanAbsError) Observe(estimate, exact float64) {
	m.sum += math.Abs(estimate - exact)
	m.samples++
}

func (m *MeanAbsError) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAbsError) Reset() {
	m.sum = 0
	m.samples = 0
}

type MaxAbsError struct {
	name string
	max  float64
}

func NewMaxAbsError() *MaxAbsError {
	return &MaxAbsError{name: "max_abs_error"}
}

func (m *MaxAbsError) Name() string { return m.name }

// Observe keeps the first NaN; later finite errors do not replace it.
func (m *MaxAbsError) Observe(estimate, exact float64) {
	e := math.Abs(estimate - exact)
	if math.IsNaN(e) || e > m.max {
		m.max = e
	}
}

func (m *MaxAbsError) Value() float64 { return m.max }

func (m *MaxAbsError) Reset() { m.max = 0 }

type RMSError struct {
	name    string
	sumSq   float64
	samples int
}

func NewRMSError() *RMSError {
	return &RMSError{name: "rms_error"}
}

func (r *RMSError) Name() string { return r.name }

func (r *RMSError) Observe(estimate, exact float64) {
	d := estimate - exact
	r.sumSq += d * d
	r.samples++
}

func (r *RMSError) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Sqrt(r.sumSq / float64(r.samples))
}

func (r *RMSError) Reset() {
	r.sumSq = 0
	r.samples = 0
}

// Default returns a fresh set of the standard error metrics.
func Default() []Metric {
	return []Metric{
		NewMeanAbsError(),
		NewMaxAbsError(),
		NewRMSError(),
	}
}

// Collect reads every metric into a name-keyed map.
func Collect(ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
