package optim

import (
	"context"
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/numlab/internal/analysis"
	"github.com/san-kum/numlab/internal/testfn"
)

var (
	ErrNoCandidate = errors.New("optim: no finite objective value on the grid")
	ErrEmptyGrid   = errors.New("optim: step grid is empty")
)

// Objective scores one point of the grid. Lower is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the grid and returns the one with
// the smallest finite objective. NaN scores never win.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	if err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams); err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, ErrNoCandidate
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil {
			return err
		}
		if val < *best {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// StepGrid is num steps spaced evenly in log10 between hMax and hMin,
// largest first.
func StepGrid(hMax, hMin float64, num int) []float64 {
	switch {
	case num <= 0:
		return []float64{}
	case num == 1:
		return []float64{hMax}
	}
	grid := floats.LogSpan(make([]float64, num), hMin, hMax)
	sort.Sort(sort.Reverse(sort.Float64Slice(grid)))
	return grid
}

type StepResult struct {
	Forward       float64
	ForwardError  float64
	Backward      float64
	BackwardError float64
}

// BestStep finds, for each difference estimator, the step in hs with the
// smallest mean absolute error over numPoints points of [xStart, xEnd].
func BestStep(ctx context.Context, tf testfn.Function, xStart, xEnd float64, numPoints int, hs []float64) (*StepResult, error) {
	if len(hs) == 0 {
		return nil, ErrEmptyGrid
	}
	search := NewGridSearch([]string{"step"}, [][]float64{hs})

	score := func(pick func(*analysis.DerivativeReport) float64) Objective {
		return func(ctx context.Context, p map[string]float64) (float64, error) {
			r, err := analysis.EvaluateDerivatives(tf, xStart, xEnd, numPoints, p["step"])
			if err != nil {
				return 0, err
			}
			return pick(r), nil
		}
	}

	fwd, fwdErr, err := search.Search(ctx, score((*analysis.DerivativeReport).AvgForwardError))
	if err != nil {
		return nil, err
	}
	bwd, bwdErr, err := search.Search(ctx, score((*analysis.DerivativeReport).AvgBackwardError))
	if err != nil {
		return nil, err
	}

	return &StepResult{
		Forward:       fwd["step"],
		ForwardError:  fwdErr,
		Backward:      bwd["step"],
		BackwardError: bwdErr,
	}, nil
}
