package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/numlab/internal/analysis"
)

func sampleRun() *Run {
	return &Run{
		Subintervals: 100,
		XStart:       -2,
		XEnd:         2,
		Derivatives: &analysis.DerivativeReport{
			Function: "cubic",
			Step:     0.001,
			Rows: []analysis.DerivativeRow{
				{X: -2, Exact: 12, Forward: 11.994, Backward: 12.006, ForwardErr: 0.006, BackwardErr: 0.006},
				{X: 0, Exact: 0, Forward: 1e-6, Backward: 1e-6, ForwardErr: 1e-6, BackwardErr: 1e-6},
			},
			ForwardMetrics:  map[string]float64{"mean_abs_error": 0.003, "max_abs_error": 0.006},
			BackwardMetrics: map[string]float64{"mean_abs_error": 0.003, "max_abs_error": math.Inf(1)},
		},
		Integration: []analysis.IntegrationResult{
			{
				Interval:    analysis.Interval{A: -1, B: 1},
				Exact:       0,
				Trapezoidal: analysis.Estimate{Value: 0, AbsError: 0, RelError: math.NaN()},
				Simpsons:    analysis.Estimate{Value: 1e-17, AbsError: 1e-17, RelError: math.Inf(1)},
			},
		},
		Convergence: &analysis.ConvergenceReport{
			Function: "cubic",
			A:        0,
			B:        1,
			Exact:    0.25,
			Points: []analysis.ConvergencePoint{
				{N: 10, TrapezoidalError: 2.5e-3, SimpsonsError: 1e-17, TrapezoidalOrder: math.NaN(), SimpsonsOrder: math.NaN()},
				{N: 20, TrapezoidalError: 6.25e-4, SimpsonsError: 1e-17, TrapezoidalOrder: 2, SimpsonsOrder: 0},
			},
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(sampleRun())
	require.NoError(t, err)
	assert.Contains(t, runID, "cubic_")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "cubic", meta.Function)
	assert.Equal(t, Number(0.001), meta.Step)
	assert.Equal(t, 2, meta.Points)
	assert.Equal(t, 1, meta.Intervals)
	assert.Equal(t, Number(0.006), meta.Metrics["forward_max_abs_error"])
	assert.True(t, math.IsInf(float64(meta.Metrics["backward_max_abs_error"]), 1))
	require.NotNil(t, meta.Convergence)
	assert.Equal(t, Number(0.25), meta.Convergence.Exact)
}

func TestStoreRoundTripsTables(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	run := sampleRun()
	runID, err := st.Save(run)
	require.NoError(t, err)

	rows, err := st.LoadDerivatives(runID)
	require.NoError(t, err)
	assert.Equal(t, run.Derivatives.Rows, rows)

	results, err := st.LoadIntegration(runID)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, run.Integration[0].Interval, results[0].Interval)
	assert.True(t, math.IsNaN(results[0].Trapezoidal.RelError))
	assert.True(t, math.IsInf(results[0].Simpsons.RelError, 1))

	conv, err := st.LoadConvergence(runID)
	require.NoError(t, err)
	assert.Equal(t, "cubic", conv.Function)
	assert.Equal(t, 0.25, conv.Exact)
	require.Len(t, conv.Points, 2)
	assert.Equal(t, 20, conv.Points[1].N)
	assert.True(t, math.IsNaN(conv.Points[0].TrapezoidalOrder))
	assert.Equal(t, 2.0, conv.Points[1].TrapezoidalOrder)
}

func TestStoreWithoutConvergence(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	run := sampleRun()
	run.Convergence = nil
	runID, err := st.Save(run)
	require.NoError(t, err)

	_, err = st.LoadConvergence(runID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	data, err := st.Collect(runID)
	require.NoError(t, err)
	assert.Empty(t, data.Convergence)
}

func TestStoreSaveRejectsEmptyRun(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Save(&Run{})
	assert.ErrorIs(t, err, ErrEmptyRun)
}

func TestStoreSaveRemovesPartialRun(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	errDisk := errors.New("disk full")
	createFile = func(path string) (*os.File, error) {
		if filepath.Base(path) == integrationFile {
			return nil, errDisk
		}
		return os.Create(path)
	}
	t.Cleanup(func() { createFile = os.Create })

	_, err := st.Save(sampleRun())
	assert.ErrorIs(t, err, errDisk)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := st.Save(sampleRun())
	require.NoError(t, err)
	second, err := st.Save(sampleRun())
	require.NoError(t, err)

	// stray directories are skipped
	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))
	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope_1")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	require.NoError(t, st.Init())

	runID, err := st.Save(sampleRun())
	require.NoError(t, err)

	for _, name := range []string{"metadata.json", "derivatives.csv", "integration.csv", "convergence.csv"} {
		assert.FileExists(t, filepath.Join(tmpDir, runID, name))
	}

	raw, err := os.ReadFile(filepath.Join(tmpDir, runID, "derivatives.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "x,exact,forward,backward,forward_err,backward_err\n")
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(sampleRun())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.Export(runID, &buf))
	assert.Contains(t, buf.String(), `"rel_error": "NaN"`)
	assert.Contains(t, buf.String(), `"rel_error": "+Inf"`)

	var decoded ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, runID, decoded.Run.ID)
	assert.Len(t, decoded.Derivatives, 2)
	assert.Len(t, decoded.Convergence, 2)
	assert.True(t, math.IsNaN(float64(decoded.Convergence[0].SimpsonsOrder)))

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, st.ExportFile(runID, path))
	assert.FileExists(t, path)
}

func TestNumberJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1.5, `1.5`},
		{0, `0`},
		{math.NaN(), `"NaN"`},
		{math.Inf(1), `"+Inf"`},
		{math.Inf(-1), `"-Inf"`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(Number(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(data))

		var back Number
		require.NoError(t, json.Unmarshal(data, &back))
		if math.IsNaN(tt.in) {
			assert.True(t, math.IsNaN(float64(back)))
		} else {
			assert.Equal(t, tt.in, float64(back))
		}
	}

	var bad Number
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}
