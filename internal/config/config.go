package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/numlab/internal/analysis"
	"github.com/san-kum/numlab/internal/numeric"
)

const (
	DefaultFunction    = "polynomial"
	DefaultPoints      = 100
	DefaultDomainStart = -2.0
	DefaultDomainEnd   = 2.0
	DefaultDataDir     = ".numlab"
	DefaultLogLevel    = "info"
	EnvPrefix          = "NUMLAB_"
)

var (
	ErrNoFunction     = errors.New("config: function is required")
	ErrPoints         = errors.New("config: points must be positive")
	ErrEmptySweep     = errors.New("config: convergence sweep is empty")
	ErrSweepEntry     = errors.New("config: convergence sweep entries must be positive")
	ErrSweepOrder     = errors.New("config: convergence sweep must be strictly increasing")
	ErrNegativeWorker = errors.New("config: workers must not be negative")
)

type Config struct {
	Function      string              `yaml:"function" env:"FUNCTION"`
	Step          float64             `yaml:"step" env:"STEP"`
	Subintervals  int                 `yaml:"subintervals" env:"SUBINTERVALS"`
	Points        int                 `yaml:"points" env:"POINTS"`
	Domain        DomainConfig        `yaml:"domain"`
	Intervals     []analysis.Interval `yaml:"intervals"`
	Convergence   ConvergenceConfig   `yaml:"convergence"`
	SampleIndices []int               `yaml:"sample_indices"`
	Workers       int                 `yaml:"workers" env:"WORKERS"`
	DataDir       string              `yaml:"data_dir" env:"DATA_DIR"`
	LogLevel      string              `yaml:"log_level" env:"LOG_LEVEL"`
}

type DomainConfig struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

type ConvergenceConfig struct {
	A     float64 `yaml:"a"`
	B     float64 `yaml:"b"`
	Sweep []int   `yaml:"sweep" env:"SWEEP" envSeparator:","`
}

func DefaultConfig() *Config {
	return &Config{
		Function:     DefaultFunction,
		Step:         numeric.DefaultStep,
		Subintervals: numeric.DefaultSubintervals,
		Points:       DefaultPoints,
		Domain: DomainConfig{
			Start: DefaultDomainStart,
			End:   DefaultDomainEnd,
		},
		Intervals: []analysis.Interval{{A: -1, B: 1}, {A: 0, B: 2}},
		Convergence: ConvergenceConfig{
			A:     0,
			B:     1,
			Sweep: append([]int(nil), analysis.DefaultSweep...),
		},
		SampleIndices: []int{0, 10, 20, 30, 40},
		DataDir:       DefaultDataDir,
		LogLevel:      DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overlays NUMLAB_* environment variables; unset variables leave
// the current values alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Resolve builds a config from defaults, an optional preset, an optional
// file and the environment, in that order.
func Resolve(preset, path string) (*Config, error) {
	cfg := DefaultConfig()
	if preset != "" {
		p := GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, ListPresets())
		}
		cfg = p
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the analysis harness cannot run. Step and
// subdivision values are passed to the estimators as-is.
func (c *Config) Validate() error {
	if c.Function == "" {
		return ErrNoFunction
	}
	if c.Points < 1 {
		return fmt.Errorf("%w: got %d", ErrPoints, c.Points)
	}
	if len(c.Convergence.Sweep) == 0 {
		return ErrEmptySweep
	}
	for i, n := range c.Convergence.Sweep {
		if n <= 0 {
			return fmt.Errorf("%w: got %d", ErrSweepEntry, n)
		}
		if i > 0 && n <= c.Convergence.Sweep[i-1] {
			return fmt.Errorf("%w: %d follows %d", ErrSweepOrder, n, c.Convergence.Sweep[i-1])
		}
	}
	if c.Workers < 0 {
		return ErrNegativeWorker
	}
	return nil
}

func (c *Config) Clone() *Config {
	cp := *c
	cp.Intervals = append([]analysis.Interval(nil), c.Intervals...)
	cp.Convergence.Sweep = append([]int(nil), c.Convergence.Sweep...)
	cp.SampleIndices = append([]int(nil), c.SampleIndices...)
	return &cp
}
