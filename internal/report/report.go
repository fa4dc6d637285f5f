// Package report prints analysis results as plain-text tables and plots.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/numlab/internal/analysis"
	"github.com/san-kum/numlab/internal/stats"
	"github.com/san-kum/numlab/internal/storage"
)

// log10Floor stands in for log10(0) when an estimate is exact.
const log10Floor = -17.0

func Title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Render("=== "+s+" ==="))
}

func Section(w io.Writer, s string) {
	fmt.Fprintln(w, sectionStyle.Render("* "+s+" *"))
}

func field(w io.Writer, label string, value string) {
	fmt.Fprintf(w, "%s %s\n", labelStyle.Render(label+":"), valueStyle.Render(value))
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// Derivatives prints the sampled rows of a derivative report followed by
// the average forward and backward errors.
func Derivatives(w io.Writer, name string, r *analysis.DerivativeReport, indices []int) error {
	fmt.Fprintf(w, "results for %s (h=%g):\n", name, r.Step)

	tw := newTable(w)
	fmt.Fprintln(tw, "x\texact\tforward\tbackward\tforward err\tbackward err")
	for _, row := range analysis.Sample(r, indices) {
		fmt.Fprintf(tw, "%.2f\t%.4f\t%.4f\t%.4f\t%.2e\t%.2e\n",
			row.X, row.Exact, row.Forward, row.Backward, row.ForwardErr, row.BackwardErr)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "average errors:")
	field(w, "  forward difference", fmt.Sprintf("%.4e", r.AvgForwardError()))
	field(w, "  backward difference", fmt.Sprintf("%.4e", r.AvgBackwardError()))
	return nil
}

func Integration(w io.Writer, name string, n int, results []analysis.IntegrationResult) error {
	fmt.Fprintf(w, "integration results for %s (n=%d):\n", name, n)

	tw := newTable(w)
	fmt.Fprintln(tw, "interval\texact\tmethod\tvalue\terror\trel. error")
	for _, r := range results {
		iv := fmt.Sprintf("[%g, %g]", r.Interval.A, r.Interval.B)
		fmt.Fprintf(tw, "%s\t%.8f\ttrapezoidal\t%.8f\t%.4e\t%.4f%%\n",
			iv, r.Exact, r.Trapezoidal.Value, r.Trapezoidal.AbsError, r.Trapezoidal.RelError)
		fmt.Fprintf(tw, "\t\tsimpson\t%.8f\t%.4e\t%.4f%%\n",
			r.Simpsons.Value, r.Simpsons.AbsError, r.Simpsons.RelError)
	}
	return tw.Flush()
}

func Convergence(w io.Writer, r *analysis.ConvergenceReport) error {
	fmt.Fprintf(w, "convergence for interval [%g, %g], exact value: %.8f\n", r.A, r.B, r.Exact)

	tw := newTable(w)
	fmt.Fprintln(tw, "n\ttrapezoidal\torder\tsimpson\torder")
	for _, p := range r.Points {
		fmt.Fprintf(tw, "%d\t%.4e\t%s\t%.4e\t%s\n",
			p.N, p.TrapezoidalError, order(p.TrapezoidalOrder), p.SimpsonsError, order(p.SimpsonsOrder))
	}
	return tw.Flush()
}

func Steps(w io.Writer, r *analysis.StepReport) error {
	fmt.Fprintf(w, "step sweep at x=%g, exact derivative: %.8f\n", r.X, r.Exact)

	tw := newTable(w)
	fmt.Fprintln(tw, "h\tforward\torder\tbackward\torder")
	for _, p := range r.Points {
		fmt.Fprintf(tw, "%g\t%.4e\t%s\t%.4e\t%s\n",
			p.H, p.ForwardError, order(p.ForwardOrder), p.BackwardError, order(p.BackwardOrder))
	}
	return tw.Flush()
}

// ForwardTable prints every row of r with the forward estimate only.
func ForwardTable(w io.Writer, r *analysis.DerivativeReport) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "x\texact\tforward\terror")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%g\t%.8f\t%.8f\t%.2e\n", row.X, row.Exact, row.Forward, row.ForwardErr)
	}
	return tw.Flush()
}

func order(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// ConvergencePlot draws log10 of both error series against the sweep index.
func ConvergencePlot(r *analysis.ConvergenceReport) string {
	if len(r.Points) == 0 {
		return ""
	}
	trap := make([]float64, len(r.Points))
	simp := make([]float64, len(r.Points))
	for i, p := range r.Points {
		trap[i] = log10(p.TrapezoidalError)
		simp[i] = log10(p.SimpsonsError)
	}

	return asciigraph.PlotMany([][]float64{trap, simp},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green),
		asciigraph.Caption(fmt.Sprintf("log10 error, %s on [%g, %g] (blue: trapezoidal, green: simpson)", r.Function, r.A, r.B)),
	)
}

func log10(v float64) float64 {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return log10Floor
	}
	return math.Max(math.Log10(v), log10Floor)
}

func Summary(w io.Writer, label string, s stats.Summary) error {
	fmt.Fprintf(w, "statistics of %s (%d samples):\n", label, s.N)

	tw := newTable(w)
	fmt.Fprintf(tw, "sum\t%.10g\n", s.Sum)
	fmt.Fprintf(tw, "mean\t%.10g\n", s.Mean)
	fmt.Fprintf(tw, "std dev\t%.10g\n", s.StdDev)
	fmt.Fprintf(tw, "variance\t%.10g\n", s.Variance)
	fmt.Fprintf(tw, "min\t%.10g\n", s.Min)
	fmt.Fprintf(tw, "max\t%.10g\n", s.Max)
	fmt.Fprintf(tw, "median\t%.10g\n", s.Median)
	fmt.Fprintf(tw, "mean difference\t%.10g\n", s.MeanDifference)
	return tw.Flush()
}

func Special(w io.Writer, values []stats.SpecialValue) {
	for _, v := range values {
		field(w, v.Name, fmt.Sprintf("%.10g", v.Value))
	}
}

func Runs(w io.Writer, runs []storage.RunMetadata) error {
	if len(runs) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no runs found"))
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "id\tfunction\tstep\tn\tpoints\tfwd mean err\tbwd mean err\ttimestamp")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%d\t%d\t%.3e\t%.3e\t%s\n",
			r.ID, r.Function, float64(r.Step), r.Subintervals, r.Points,
			float64(r.Metrics["forward_mean_abs_error"]),
			float64(r.Metrics["backward_mean_abs_error"]),
			r.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func Run(w io.Writer, meta *storage.RunMetadata) {
	field(w, "run", meta.ID)
	field(w, "function", meta.Function)
	field(w, "step", fmt.Sprintf("%g", float64(meta.Step)))
	field(w, "subintervals", fmt.Sprintf("%d", meta.Subintervals))
	field(w, "grid", fmt.Sprintf("%d points on [%g, %g]", meta.Points, float64(meta.XStart), float64(meta.XEnd)))

	names := make([]string, 0, len(meta.Metrics))
	for k := range meta.Metrics {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		field(w, "  "+k, fmt.Sprintf("%.4e", float64(meta.Metrics[k])))
	}
}
