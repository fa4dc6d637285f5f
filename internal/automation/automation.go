package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/numlab/internal/analysis"
	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/storage"
	"github.com/san-kum/numlab/internal/testfn"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario is a scripted sequence of analyses. Each step is a partial
// config laid over the base config the scenario runs with.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Steps       []yaml.Node `yaml:"steps"`
}

type StepResult struct {
	Config *config.Config
	Run    *storage.Run
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// Configs resolves every step against base without running anything.
func (s *Scenario) Configs(base *config.Config) ([]*config.Config, error) {
	cfgs := make([]*config.Config, 0, len(s.Steps))
	for i := range s.Steps {
		cfg := base.Clone()
		if err := s.Steps[i].Decode(cfg); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		cfgs = append(cfgs, cfg)
	}
	return cfgs, nil
}

// Analyze runs the derivative grid, the interval table and the convergence
// sweep for one configuration.
func Analyze(ctx context.Context, cfg *config.Config, reg *testfn.Registry) (*storage.Run, error) {
	tf, err := reg.Get(cfg.Function)
	if err != nil {
		return nil, err
	}

	deriv, err := analysis.EvaluateDerivatives(tf, cfg.Domain.Start, cfg.Domain.End, cfg.Points, cfg.Step)
	if err != nil {
		return nil, err
	}

	integ := analysis.EvaluateIntegration(tf, cfg.Intervals, cfg.Subintervals)

	conv, err := analysis.Convergence(ctx, tf, cfg.Convergence.A, cfg.Convergence.B, cfg.Convergence.Sweep, cfg.Workers)
	if err != nil {
		return nil, err
	}

	return &storage.Run{
		Subintervals: cfg.Subintervals,
		XStart:       cfg.Domain.Start,
		XEnd:         cfg.Domain.End,
		Derivatives:  deriv,
		Integration:  integ,
		Convergence:  conv,
	}, nil
}

// RunScenario executes the steps in order. A nil store skips saving.
// Results gathered before a failing step are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, reg *testfn.Registry, st *storage.Store) ([]StepResult, error) {
	cfgs, err := scenario.Configs(base)
	if err != nil {
		return nil, err
	}

	results := make([]StepResult, 0, len(cfgs))
	for i, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		logrus.WithFields(logrus.Fields{
			"scenario": scenario.Name,
			"step":     fmt.Sprintf("%d/%d", i+1, len(cfgs)),
			"function": cfg.Function,
		}).Info("running step")

		run, err := Analyze(ctx, cfg, reg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		res := StepResult{Config: cfg, Run: run}
		if st != nil {
			id, err := st.Save(run)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			res.RunID = id
		}
		results = append(results, res)
	}

	return results, nil
}
