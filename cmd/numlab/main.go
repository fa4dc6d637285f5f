package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/numlab/internal/analysis"
	"github.com/san-kum/numlab/internal/automation"
	"github.com/san-kum/numlab/internal/config"
	"github.com/san-kum/numlab/internal/export"
	"github.com/san-kum/numlab/internal/numeric"
	"github.com/san-kum/numlab/internal/optim"
	"github.com/san-kum/numlab/internal/report"
	"github.com/san-kum/numlab/internal/stats"
	"github.com/san-kum/numlab/internal/storage"
	"github.com/san-kum/numlab/internal/testfn"
	"github.com/san-kum/numlab/internal/tui"
)

var (
	configFile string
	preset     string
	dataDir    string
	logLevel   string
	workers    int

	step         float64
	subintervals int
	points       int
	intA         float64
	intB         float64
	sweep        []int
	stepSweep    int

	save     bool
	plot     bool
	svgPath  string
	special  bool
	outPath  string
	gridSize int

	cfg      *config.Config
	registry = testfn.NewRegistry()
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "numlab",
		Short:             "numerical differentiation and integration lab",
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
		RunE:              runShowcase,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "concurrent sweep evaluations (0 = unlimited)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [function...]",
		Short: "full error report for one or more test functions",
		RunE:  analyzeFunctions,
	}
	analyzeCmd.Flags().Float64Var(&step, "step", numeric.DefaultStep, "difference step h")
	analyzeCmd.Flags().IntVar(&subintervals, "n", numeric.DefaultSubintervals, "quadrature subintervals")
	analyzeCmd.Flags().IntVar(&points, "points", config.DefaultPoints, "derivative grid points")
	analyzeCmd.Flags().BoolVar(&save, "save", false, "save the run")

	diffCmd := &cobra.Command{
		Use:   "diff [function] [x]",
		Short: "forward and backward difference at a point",
		Args:  cobra.ExactArgs(2),
		RunE:  diffPoint,
	}
	diffCmd.Flags().Float64Var(&step, "step", numeric.DefaultStep, "difference step h")
	diffCmd.Flags().IntVar(&stepSweep, "halvings", 0, "also sweep h over this many halvings")

	integrateCmd := &cobra.Command{
		Use:   "integrate [function] [a] [b]",
		Short: "trapezoidal and simpson estimates over an interval",
		Args:  cobra.ExactArgs(3),
		RunE:  integrateInterval,
	}
	integrateCmd.Flags().IntVar(&subintervals, "n", numeric.DefaultSubintervals, "quadrature subintervals")

	convergeCmd := &cobra.Command{
		Use:   "converge [function]",
		Short: "error and empirical order over a subinterval sweep",
		Args:  cobra.MaximumNArgs(1),
		RunE:  convergeFunction,
	}
	convergeCmd.Flags().Float64Var(&intA, "a", 0, "interval start")
	convergeCmd.Flags().Float64Var(&intB, "b", 1, "interval end")
	convergeCmd.Flags().IntSliceVar(&sweep, "sweep", analysis.DefaultSweep, "subinterval sweep")
	convergeCmd.Flags().BoolVar(&plot, "plot", false, "plot log10 errors")
	convergeCmd.Flags().StringVar(&svgPath, "svg", "", "write a log-log chart to this file")

	statsCmd := &cobra.Command{
		Use:   "stats [start] [end] [num]",
		Short: "descriptive statistics of sin(x) over a linspace",
		Args:  cobra.MaximumNArgs(3),
		RunE:  describeSamples,
	}
	statsCmd.Flags().BoolVar(&special, "special", false, "show special function values")

	tuneCmd := &cobra.Command{
		Use:   "tune [function]",
		Short: "search for the step with the smallest mean difference error",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneStep,
	}
	tuneCmd.Flags().IntVar(&gridSize, "grid", 13, "number of log-spaced steps between 1e-1 and 1e-13")
	tuneCmd.Flags().IntVar(&points, "points", config.DefaultPoints, "derivative grid points")

	functionsCmd := &cobra.Command{
		Use:   "functions",
		Short: "list test functions",
		RunE:  listFunctions,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration to a yaml file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a saved run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	batchCmd := &cobra.Command{
		Use:   "batch [scenario]",
		Short: "run every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().BoolVar(&save, "save", false, "save every run")

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive estimator explorer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(registry, tui.Settings{
				X:            (cfg.Domain.Start + cfg.Domain.End) / 2,
				Step:         cfg.Step,
				Subintervals: cfg.Subintervals,
				A:            cfg.Convergence.A,
				B:            cfg.Convergence.B,
				XStart:       cfg.Domain.Start,
				XEnd:         cfg.Domain.End,
			})
		},
	}

	rootCmd.AddCommand(analyzeCmd, diffCmd, integrateCmd, convergeCmd, tuneCmd, statsCmd, functionsCmd, presetsCmd, initCmd, listCmd, showCmd, exportCmd, batchCmd, exploreCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig resolves defaults, preset, file and environment, then applies
// any flags set on the command line.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Resolve(preset, configFile)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		c.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if flags.Changed("workers") {
		c.Workers = workers
	}
	if flags.Changed("step") {
		c.Step = step
	}
	if flags.Changed("n") {
		c.Subintervals = subintervals
	}
	if flags.Changed("points") {
		c.Points = points
	}
	if flags.Changed("a") {
		c.Convergence.A = intA
	}
	if flags.Changed("b") {
		c.Convergence.B = intB
	}
	if flags.Changed("sweep") {
		c.Convergence.Sweep = append([]int(nil), sweep...)
	}

	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(lvl)

	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c

	logrus.WithFields(logrus.Fields{
		"function":     cfg.Function,
		"step":         cfg.Step,
		"subintervals": cfg.Subintervals,
		"preset":       preset,
	}).Debug("configuration resolved")
	return nil
}

func runShowcase(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	report.Title(out, "numerical differentiation and integration showcase")
	for _, tf := range registry.Showcase() {
		c := cfg.Clone()
		c.Function = tf.Key
		run, err := automation.Analyze(cmd.Context(), c, registry)
		if err != nil {
			return err
		}
		if err := printRun(out, tf, c, run); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)
	report.Title(out, "analysis complete")
	return nil
}

func analyzeFunctions(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{cfg.Function}
	}

	var st *storage.Store
	if save {
		st = storage.New(cfg.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	for _, key := range args {
		tf, err := registry.Get(key)
		if err != nil {
			return err
		}

		c := cfg.Clone()
		c.Function = key
		run, err := automation.Analyze(cmd.Context(), c, registry)
		if err != nil {
			return err
		}
		if err := printRun(out, tf, c, run); err != nil {
			return err
		}

		if st != nil {
			runID, err := st.Save(run)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nrun id: %s\n", runID)
		}
	}
	return nil
}

func printRun(out io.Writer, tf testfn.Function, c *config.Config, run *storage.Run) error {
	fmt.Fprintf(out, "\n----- analyzing %s -----\n\n", tf.Name)

	report.Section(out, "differentiation analysis")
	if err := report.Derivatives(out, tf.Name, run.Derivatives, c.SampleIndices); err != nil {
		return err
	}

	fmt.Fprintln(out)
	report.Section(out, "integration analysis")
	if err := report.Integration(out, tf.Name, c.Subintervals, run.Integration); err != nil {
		return err
	}

	fmt.Fprintln(out)
	report.Section(out, "convergence analysis")
	return report.Convergence(out, run.Convergence)
}

func diffPoint(cmd *cobra.Command, args []string) error {
	tf, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	x, err := parseFloatArg("x", args[1])
	if err != nil {
		return err
	}

	exact := tf.Derivative(x)
	fwd := numeric.ForwardDifference(tf.Fn, x, numeric.Step(cfg.Step))
	bwd := numeric.BackwardDifference(tf.Fn, x, numeric.Step(cfg.Step))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s at x=%g (h=%g)\n", tf.Name, x, cfg.Step)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "method\testimate\terror")
	fmt.Fprintf(w, "exact\t%.10f\t\n", exact)
	fmt.Fprintf(w, "forward\t%.10f\t%.4e\n", fwd, math.Abs(fwd-exact))
	fmt.Fprintf(w, "backward\t%.10f\t%.4e\n", bwd, math.Abs(bwd-exact))
	if err := w.Flush(); err != nil {
		return err
	}

	if stepSweep <= 0 {
		return nil
	}
	hs := make([]float64, stepSweep+1)
	for i := range hs {
		hs[i] = cfg.Step / math.Pow(2, float64(i))
	}
	r, err := analysis.StepConvergence(cmd.Context(), tf, x, hs, cfg.Workers)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	return report.Steps(out, r)
}

func integrateInterval(cmd *cobra.Command, args []string) error {
	tf, err := registry.Get(args[0])
	if err != nil {
		return err
	}
	a, err := parseFloatArg("a", args[1])
	if err != nil {
		return err
	}
	b, err := parseFloatArg("b", args[2])
	if err != nil {
		return err
	}

	results := analysis.EvaluateIntegration(tf, []analysis.Interval{{A: a, B: b}}, cfg.Subintervals)
	return report.Integration(cmd.OutOrStdout(), tf.Name, cfg.Subintervals, results)
}

func convergeFunction(cmd *cobra.Command, args []string) error {
	key := cfg.Function
	if len(args) > 0 {
		key = args[0]
	}
	tf, err := registry.Get(key)
	if err != nil {
		return err
	}

	c := cfg.Convergence
	r, err := analysis.Convergence(cmd.Context(), tf, c.A, c.B, c.Sweep, cfg.Workers)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.Convergence(out, r); err != nil {
		return err
	}
	if plot {
		fmt.Fprintln(out)
		fmt.Fprintln(out, report.ConvergencePlot(r))
	}
	if svgPath != "" {
		if err := export.WriteConvergenceSVG(svgPath, r, 800, 400); err != nil {
			return err
		}
		fmt.Fprintf(out, "wrote %s\n", svgPath)
	}
	return nil
}

func tuneStep(cmd *cobra.Command, args []string) error {
	key := cfg.Function
	if len(args) > 0 {
		key = args[0]
	}
	tf, err := registry.Get(key)
	if err != nil {
		return err
	}

	if gridSize < 1 {
		return fmt.Errorf("--grid must be at least 1, got %d", gridSize)
	}
	hs := optim.StepGrid(1e-1, 1e-13, gridSize)
	res, err := optim.BestStep(cmd.Context(), tf, cfg.Domain.Start, cfg.Domain.End, cfg.Points, hs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s on [%g, %g], %d points, %d candidate steps\n", tf.Name, cfg.Domain.Start, cfg.Domain.End, cfg.Points, len(hs))
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "method\tbest h\tmean error")
	fmt.Fprintf(w, "forward\t%g\t%.4e\n", res.Forward, res.ForwardError)
	fmt.Fprintf(w, "backward\t%g\t%.4e\n", res.Backward, res.BackwardError)
	return w.Flush()
}

func describeSamples(cmd *cobra.Command, args []string) error {
	start, end, num := -5.0, 5.0, 100
	var err error
	if len(args) > 0 {
		if start, err = parseFloatArg("start", args[0]); err != nil {
			return err
		}
	}
	if len(args) > 1 {
		if end, err = parseFloatArg("end", args[1]); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		if num, err = strconv.Atoi(args[2]); err != nil {
			return fmt.Errorf("invalid num %q: %w", args[2], err)
		}
	}

	out := cmd.OutOrStdout()
	if special {
		report.Section(out, "special functions")
		report.Special(out, stats.Special())
		fmt.Fprintln(out)
	}

	report.Section(out, "statistics")
	if err := report.Summary(out, fmt.Sprintf("sin(x) on [%g, %g]", start, end), stats.DescribeFunc(math.Sin, start, end, num)); err != nil {
		return err
	}

	const samples = 1000
	xs := numeric.Linspace(0, math.Pi, samples)
	approx := numeric.SampledTrapezoid(xs, numeric.Tabulate(math.Sin, xs))
	fmt.Fprintln(out)
	report.Section(out, "sampled integration")
	fmt.Fprintf(out, "sin(x) on [0, π] from %d samples: %.12f (error %.4e)\n", samples, approx, math.Abs(approx-2))

	table, err := analysis.EvaluateDerivatives(testfn.Trigonometric(), -2, 2, 5, 1e-4)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	report.Section(out, "forward differences of sin(x), h=1e-4")
	return report.ForwardTable(out, table)
}

func listFunctions(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tFUNCTION")
	for _, key := range registry.Names() {
		tf, err := registry.Get(key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", key, tf.Name)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSTEP\tN\tPOINTS\tSWEEP")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%g\t%d\t%d\t%v\n", name, p.Step, p.Subintervals, p.Points, p.Convergence.Sweep)
	}
	return w.Flush()
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(cfg.DataDir).List()
	if err != nil {
		return err
	}
	return report.Runs(cmd.OutOrStdout(), runs)
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report.Run(out, meta)

	results, err := st.LoadIntegration(meta.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := report.Integration(out, meta.Function, meta.Subintervals, results); err != nil {
		return err
	}

	if meta.Convergence == nil {
		return nil
	}
	conv, err := st.LoadConvergence(meta.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	return report.Convergence(out, conv)
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	if outPath == "" {
		return st.Export(args[0], cmd.OutOrStdout())
	}
	if err := st.ExportFile(args[0], outPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outPath)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if save {
		st = storage.New(cfg.DataDir)
	}

	results, err := automation.RunScenario(cmd.Context(), sc, cfg, registry, st)
	if len(results) > 0 {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "scenario %s: %d/%d steps\n", sc.Name, len(results), len(sc.Steps))
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STEP\tFUNCTION\tH\tN\tFWD ERR\tBWD ERR\tRUN")
		for i, r := range results {
			runID := r.RunID
			if runID == "" {
				runID = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%g\t%d\t%.3e\t%.3e\t%s\n",
				i+1,
				r.Config.Function,
				r.Config.Step,
				r.Config.Subintervals,
				r.Run.Derivatives.AvgForwardError(),
				r.Run.Derivatives.AvgBackwardError(),
				runID,
			)
		}
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}
	return err
}

func parseFloatArg(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}
