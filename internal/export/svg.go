// Package export renders analysis results to standalone files.
package export

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/san-kum/numlab/internal/analysis"
)

type Point struct {
	X, Y float64
}

type Series struct {
	Label  string
	Stroke string
	Points []Point
}

// ConvergenceSeries turns a sweep into log10(n) against log10(error) for
// both rules. Points with a zero or non-finite error are dropped.
func ConvergenceSeries(r *analysis.ConvergenceReport) []Series {
	trap := Series{Label: "trapezoidal", Stroke: "#00ccff"}
	simp := Series{Label: "simpson", Stroke: "#00ff88"}
	for _, p := range r.Points {
		x := math.Log10(float64(p.N))
		if y, ok := logError(p.TrapezoidalError); ok {
			trap.Points = append(trap.Points, Point{X: x, Y: y})
		}
		if y, ok := logError(p.SimpsonsError); ok {
			simp.Points = append(simp.Points, Point{X: x, Y: y})
		}
	}
	return []Series{trap, simp}
}

func logError(e float64) (float64, bool) {
	if e <= 0 || math.IsNaN(e) || math.IsInf(e, 0) {
		return 0, false
	}
	return math.Log10(e), true
}

// SeriesToSVG draws every series with at least two points into one chart
// sharing a single set of bounds.
func SeriesToSVG(series []Series, width, height int, title string) string {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	drawn := 0
	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		drawn++
		for _, p := range s.Points {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
			minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
		}
	}
	if drawn == 0 {
		return ""
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<text x="8" y="16" fill="#888899" font-family="monospace" font-size="12">%s</text>
`, width, height, width, height, escape(title)))

	legendY := 32
	for _, s := range series {
		if len(s.Points) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, s.Stroke))
		for i, p := range s.Points {
			x := (p.X - minX) / rangeX * float64(width)
			y := float64(height) - (p.Y-minY)/rangeY*float64(height)

			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
		}
		sb.WriteString("\"/>\n")
		sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="%s" font-family="monospace" font-size="12">%s</text>
`, legendY, s.Stroke, escape(s.Label)))
		legendY += 16
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func ConvergenceSVG(r *analysis.ConvergenceReport, width, height int) string {
	title := fmt.Sprintf("%s on [%g, %g]: log10 error vs log10 n", r.Function, r.A, r.B)
	return SeriesToSVG(ConvergenceSeries(r), width, height, title)
}

// WriteConvergenceSVG writes the chart to path. A sweep with nothing to
// draw is an error.
func WriteConvergenceSVG(path string, r *analysis.ConvergenceReport, width, height int) error {
	svg := ConvergenceSVG(r, width, height)
	if svg == "" {
		return fmt.Errorf("export: nothing to plot for %s", r.Function)
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

func escape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(s)
}
