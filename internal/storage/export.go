package storage

import (
	"encoding/json"
	"errors"
	"io"
	"os"
)

type ExportRow struct {
	X           Number `json:"x"`
	Exact       Number `json:"exact"`
	Forward     Number `json:"forward"`
	Backward    Number `json:"backward"`
	ForwardErr  Number `json:"forward_err"`
	BackwardErr Number `json:"backward_err"`
}

type ExportEstimate struct {
	Value    Number `json:"value"`
	AbsError Number `json:"abs_error"`
	RelError Number `json:"rel_error"`
}

type ExportIntegration struct {
	A           Number         `json:"a"`
	B           Number         `json:"b"`
	Exact       Number         `json:"exact"`
	Trapezoidal ExportEstimate `json:"trapezoidal"`
	Simpsons    ExportEstimate `json:"simpsons"`
}

type ExportPoint struct {
	N                int    `json:"n"`
	TrapezoidalError Number `json:"trapezoidal_error"`
	SimpsonsError    Number `json:"simpsons_error"`
	TrapezoidalOrder Number `json:"trapezoidal_order"`
	SimpsonsOrder    Number `json:"simpsons_order"`
}

type ExportData struct {
	Run         RunMetadata         `json:"run"`
	Derivatives []ExportRow         `json:"derivatives"`
	Integration []ExportIntegration `json:"integration"`
	Convergence []ExportPoint       `json:"convergence,omitempty"`
}

// Collect gathers everything stored for a run into one document.
func (s *Store) Collect(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	data := &ExportData{Run: *meta}

	rows, err := s.LoadDerivatives(runID)
	if err != nil {
		return nil, err
	}
	data.Derivatives = make([]ExportRow, len(rows))
	for i, r := range rows {
		data.Derivatives[i] = ExportRow{
			X:           Number(r.X),
			Exact:       Number(r.Exact),
			Forward:     Number(r.Forward),
			Backward:    Number(r.Backward),
			ForwardErr:  Number(r.ForwardErr),
			BackwardErr: Number(r.BackwardErr),
		}
	}

	results, err := s.LoadIntegration(runID)
	if err != nil {
		return nil, err
	}
	data.Integration = make([]ExportIntegration, len(results))
	for i, r := range results {
		data.Integration[i] = ExportIntegration{
			A:     Number(r.Interval.A),
			B:     Number(r.Interval.B),
			Exact: Number(r.Exact),
			Trapezoidal: ExportEstimate{
				Value:    Number(r.Trapezoidal.Value),
				AbsError: Number(r.Trapezoidal.AbsError),
				RelError: Number(r.Trapezoidal.RelError),
			},
			Simpsons: ExportEstimate{
				Value:    Number(r.Simpsons.Value),
				AbsError: Number(r.Simpsons.AbsError),
				RelError: Number(r.Simpsons.RelError),
			},
		}
	}

	conv, err := s.LoadConvergence(runID)
	switch {
	case errors.Is(err, ErrRunNotFound) && meta.Convergence == nil:
	case err != nil:
		return nil, err
	default:
		for _, p := range conv.Points {
			data.Convergence = append(data.Convergence, ExportPoint{
				N:                p.N,
				TrapezoidalError: Number(p.TrapezoidalError),
				SimpsonsError:    Number(p.SimpsonsError),
				TrapezoidalOrder: Number(p.TrapezoidalOrder),
				SimpsonsOrder:    Number(p.SimpsonsOrder),
			})
		}
	}

	return data, nil
}

func (s *Store) Export(runID string, w io.Writer) error {
	data, err := s.Collect(runID)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (s *Store) ExportFile(runID, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return s.Export(runID, file)
}
