package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/numlab/internal/analysis"
)

const (
	metadataFile    = "metadata.json"
	derivativesFile = "derivatives.csv"
	integrationFile = "integration.csv"
	convergenceFile = "convergence.csv"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrEmptyRun    = errors.New("storage: run has no derivative report")
)

var (
	derivativesHeader = []string{"x", "exact", "forward", "backward", "forward_err", "backward_err"}
	integrationHeader = []string{"a", "b", "exact", "trapezoidal", "trapezoidal_abs", "trapezoidal_rel", "simpsons", "simpsons_abs", "simpsons_rel"}
	convergenceHeader = []string{"n", "trapezoidal_error", "simpsons_error", "trapezoidal_order", "simpsons_order"}
)

// createFile opens run files for writing. Swapped out in tests.
var createFile = os.Create

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// Run is one full analysis of a single test function.
type Run struct {
	Subintervals int
	XStart       float64
	XEnd         float64
	Derivatives  *analysis.DerivativeReport
	Integration  []analysis.IntegrationResult
	Convergence  *analysis.ConvergenceReport
}

type ConvergenceMeta struct {
	A     Number `json:"a"`
	B     Number `json:"b"`
	Exact Number `json:"exact"`
}

type RunMetadata struct {
	ID           string            `json:"id"`
	Function     string            `json:"function"`
	Timestamp    time.Time         `json:"timestamp"`
	Step         Number            `json:"step"`
	Subintervals int               `json:"subintervals"`
	Points       int               `json:"points"`
	XStart       Number            `json:"x_start"`
	XEnd         Number            `json:"x_end"`
	Intervals    int               `json:"intervals"`
	Convergence  *ConvergenceMeta  `json:"convergence,omitempty"`
	Metrics      map[string]Number `json:"metrics"`
}

func (s *Store) Save(run *Run) (string, error) {
	if run == nil || run.Derivatives == nil {
		return "", ErrEmptyRun
	}
	d := run.Derivatives

	if err := s.Init(); err != nil {
		return "", err
	}

	now := time.Now()
	runID := fmt.Sprintf("%s_%d", d.Function, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)
	for i := 1; ; i++ {
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			break
		}
		if !os.IsExist(err) {
			return "", err
		}
		runID = fmt.Sprintf("%s_%d_%d", d.Function, now.UnixNano(), i)
		runDir = filepath.Join(s.baseDir, runID)
	}

	meta := RunMetadata{
		ID:           runID,
		Function:     d.Function,
		Timestamp:    now,
		Step:         Number(d.Step),
		Subintervals: run.Subintervals,
		Points:       len(d.Rows),
		XStart:       Number(run.XStart),
		XEnd:         Number(run.XEnd),
		Intervals:    len(run.Integration),
		Metrics:      make(map[string]Number),
	}
	for k, v := range d.ForwardMetrics {
		meta.Metrics["forward_"+k] = Number(v)
	}
	for k, v := range d.BackwardMetrics {
		meta.Metrics["backward_"+k] = Number(v)
	}
	if c := run.Convergence; c != nil {
		meta.Convergence = &ConvergenceMeta{A: Number(c.A), B: Number(c.B), Exact: Number(c.Exact)}
	}

	if err := writeRun(runDir, meta, run); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			logrus.WithError(rmErr).WithField("run", runID).Warn("failed to remove partial run")
		}
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"run":      runID,
		"function": d.Function,
		"points":   len(d.Rows),
	}).Debug("run saved")

	return runID, nil
}

// writeRun writes the metadata and every table of run into runDir.
func writeRun(runDir string, meta RunMetadata, run *Run) error {
	d := run.Derivatives
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}

	rows := make([][]string, 0, len(d.Rows))
	for _, r := range d.Rows {
		rows = append(rows, formatRow(r.X, r.Exact, r.Forward, r.Backward, r.ForwardErr, r.BackwardErr))
	}
	if err := writeCSV(filepath.Join(runDir, derivativesFile), derivativesHeader, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range run.Integration {
		rows = append(rows, formatRow(
			r.Interval.A, r.Interval.B, r.Exact,
			r.Trapezoidal.Value, r.Trapezoidal.AbsError, r.Trapezoidal.RelError,
			r.Simpsons.Value, r.Simpsons.AbsError, r.Simpsons.RelError,
		))
	}
	if err := writeCSV(filepath.Join(runDir, integrationFile), integrationHeader, rows); err != nil {
		return err
	}

	if c := run.Convergence; c != nil {
		rows = rows[:0]
		for _, p := range c.Points {
			rows = append(rows, append([]string{strconv.Itoa(p.N)},
				formatRow(p.TrapezoidalError, p.SimpsonsError, p.TrapezoidalOrder, p.SimpsonsOrder)...))
		}
		if err := writeCSV(filepath.Join(runDir, convergenceFile), convergenceHeader, rows); err != nil {
			return err
		}
	}
	return nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			logrus.WithError(err).WithField("dir", entry.Name()).Debug("skipping unreadable run")
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadDerivatives(runID string) ([]analysis.DerivativeRow, error) {
	records, err := s.readCSV(runID, derivativesFile, len(derivativesHeader))
	if err != nil {
		return nil, err
	}

	rows := make([]analysis.DerivativeRow, 0, len(records))
	for _, v := range records {
		rows = append(rows, analysis.DerivativeRow{
			X:           v[0],
			Exact:       v[1],
			Forward:     v[2],
			Backward:    v[3],
			ForwardErr:  v[4],
			BackwardErr: v[5],
		})
	}
	return rows, nil
}

func (s *Store) LoadIntegration(runID string) ([]analysis.IntegrationResult, error) {
	records, err := s.readCSV(runID, integrationFile, len(integrationHeader))
	if err != nil {
		return nil, err
	}

	results := make([]analysis.IntegrationResult, 0, len(records))
	for _, v := range records {
		results = append(results, analysis.IntegrationResult{
			Interval:    analysis.Interval{A: v[0], B: v[1]},
			Exact:       v[2],
			Trapezoidal: analysis.Estimate{Value: v[3], AbsError: v[4], RelError: v[5]},
			Simpsons:    analysis.Estimate{Value: v[6], AbsError: v[7], RelError: v[8]},
		})
	}
	return results, nil
}

// LoadConvergence rebuilds the convergence report of a run. Runs saved
// without a sweep return ErrRunNotFound.
func (s *Store) LoadConvergence(runID string) (*analysis.ConvergenceReport, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	if meta.Convergence == nil {
		return nil, fmt.Errorf("%w: %s has no convergence sweep", ErrRunNotFound, runID)
	}

	records, err := s.readCSV(runID, convergenceFile, len(convergenceHeader))
	if err != nil {
		return nil, err
	}

	points := make([]analysis.ConvergencePoint, 0, len(records))
	for _, v := range records {
		points = append(points, analysis.ConvergencePoint{
			N:                int(v[0]),
			TrapezoidalError: v[1],
			SimpsonsError:    v[2],
			TrapezoidalOrder: v[3],
			SimpsonsOrder:    v[4],
		})
	}

	return &analysis.ConvergenceReport{
		Function: meta.Function,
		A:        float64(meta.Convergence.A),
		B:        float64(meta.Convergence.B),
		Exact:    float64(meta.Convergence.Exact),
		Points:   points,
	}, nil
}

func (s *Store) readCSV(runID, name string, fields int) ([][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = fields

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s for %s: %w", name, runID, err)
	}
	if len(records) < 2 {
		return [][]float64{}, nil
	}

	out := make([][]float64, 0, len(records)-1)
	for i, record := range records[1:] {
		vals, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", name, i+2, err)
		}
		out = append(out, vals)
	}
	return out, nil
}

func writeJSON(path string, v any) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, rows [][]string) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Sync()
}
