package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/numlab/internal/numeric"
	"github.com/san-kum/numlab/internal/testfn"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const (
	minStep = 1e-12
	maxStep = 1.0
	maxN    = 1 << 20
)

// Settings are the starting values of the explorer.
type Settings struct {
	X            float64
	Step         float64
	Subintervals int
	A, B         float64
	XStart, XEnd float64
}

type state int

const (
	stateMenu state = iota
	stateExplore
)

type model struct {
	state    state
	cursor   int
	keys     []string
	registry *testfn.Registry
	selected testfn.Function

	settings Settings
	x        float64
	h        float64
	n        int
	dx       float64

	editing bool
	editBuf string

	width  int
	height int
}

func newModel(reg *testfn.Registry, s Settings) model {
	m := model{
		state:    stateMenu,
		keys:     reg.Names(),
		registry: reg,
		settings: s,
		width:    80,
		height:   24,
	}
	m.reset()
	return m
}

func (m *model) reset() {
	m.x = m.settings.X
	m.h = m.settings.Step
	m.n = m.settings.Subintervals
	m.dx = (m.settings.XEnd - m.settings.XStart) / 40
	if m.dx <= 0 {
		m.dx = 0.1
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateExplore:
		if m.editing {
			return m.editKey(msg)
		}
		return m.exploreKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.keys)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.keys) == 0 {
			return m, nil
		}
		tf, err := m.registry.Get(m.keys[m.cursor])
		if err != nil {
			return m, nil
		}
		m.selected = tf
		m.reset()
		m.state = stateExplore
	}
	return m, nil
}

func (m model) exploreKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.state = stateMenu
	case "left", "h":
		m.x -= m.dx
	case "right", "l":
		m.x += m.dx
	case "-", "_":
		m.h = math.Max(m.h/2, minStep)
	case "+", "=":
		m.h = math.Min(m.h*2, maxStep)
	case "down", "j":
		if m.n > 1 {
			m.n /= 2
		}
	case "up", "k":
		if m.n < maxN {
			m.n *= 2
		}
	case "0":
		m.reset()
	case "e", "enter":
		m.editing = true
		m.editBuf = strconv.FormatFloat(m.x, 'g', -1, 64)
	}
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if v, err := strconv.ParseFloat(m.editBuf, 64); err == nil {
			m.x = v
		}
		m.editing = false
		m.editBuf = ""
	case "esc":
		m.editing = false
		m.editBuf = ""
	case "backspace":
		if len(m.editBuf) > 0 {
			m.editBuf = m.editBuf[:len(m.editBuf)-1]
		}
	default:
		if len(msg.String()) == 1 {
			c := msg.String()[0]
			if (c >= '0' && c <= '9') || c == '.' || c == '-' || c == 'e' {
				m.editBuf += string(c)
			}
		}
	}
	return m, nil
}

type estimates struct {
	fx          float64
	exactDeriv  float64
	forward     float64
	backward    float64
	exactInteg  float64
	trapezoidal float64
	simpsons    float64
	forwardErr  float64
	backwardErr float64
	trapErr     float64
	simpsonsErr float64
	effectiveN  int
}

func evaluate(tf testfn.Function, x, h, a, b float64, n int) estimates {
	e := estimates{
		fx:          tf.Fn(x),
		exactDeriv:  tf.Derivative(x),
		forward:     numeric.ForwardDifference(tf.Fn, x, numeric.Step(h)),
		backward:    numeric.BackwardDifference(tf.Fn, x, numeric.Step(h)),
		exactInteg:  tf.Integral(a, b),
		trapezoidal: numeric.TrapezoidalRule(tf.Fn, a, b, numeric.Subintervals(n)),
		simpsons:    numeric.SimpsonsRule(tf.Fn, a, b, numeric.Subintervals(n)),
		effectiveN:  n,
	}
	if n%2 != 0 {
		e.effectiveN = n + 1
	}
	e.forwardErr = math.Abs(e.forward - e.exactDeriv)
	e.backwardErr = math.Abs(e.backward - e.exactDeriv)
	e.trapErr = math.Abs(e.trapezoidal - e.exactInteg)
	e.simpsonsErr = math.Abs(e.simpsons - e.exactInteg)
	return e
}

func (m model) View() string {
	switch m.state {
	case stateMenu:
		return m.viewMenu()
	case stateExplore:
		return m.viewExplore()
	}
	return ""
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("            " + cyan.Render("n u m l a b") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, key := range m.keys {
		desc := ""
		if tf, err := m.registry.Get(key); err == nil {
			desc = tf.Name
		}
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-16s", key)) + dim.Render(desc) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-16s", key)) + dimmer.Render(desc) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter explore   q quit") + "\n")

	return b.String()
}

func (m model) viewExplore() string {
	s := m.settings
	e := evaluate(m.selected, m.x, m.h, s.A, s.B, m.n)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("      " + cyan.Render(m.selected.Key) + "  " + dim.Render(m.selected.Name) + "\n")
	b.WriteString(dimmer.Render("      "+strings.Repeat("─", 50)) + "\n\n")

	width := m.width - 12
	if width > 60 {
		width = 60
	}
	if width < 10 {
		width = 10
	}
	xs := numeric.Linspace(s.XStart, s.XEnd, width)
	b.WriteString("      " + green.Render(sparkline(numeric.Tabulate(m.selected.Fn, xs))) + "\n")
	b.WriteString("      " + dim.Render(marker(m.x, s.XStart, s.XEnd, width)) + "\n\n")

	xVal := fmt.Sprintf("%.6g", m.x)
	if m.editing {
		xVal = m.editBuf + "▋"
	}
	b.WriteString(row("x", magenta.Render(xVal)))
	b.WriteString(row("h", magenta.Render(fmt.Sprintf("%.3g", m.h))))
	b.WriteString(row("f(x)", white.Render(fmt.Sprintf("%.8f", e.fx))))
	b.WriteString("\n")
	b.WriteString(row("f'(x) exact", white.Render(fmt.Sprintf("%.8f", e.exactDeriv))))
	b.WriteString(row("forward", white.Render(fmt.Sprintf("%.8f", e.forward))+"  "+errStyle(e.forwardErr)))
	b.WriteString(row("backward", white.Render(fmt.Sprintf("%.8f", e.backward))+"  "+errStyle(e.backwardErr)))
	b.WriteString("\n")
	b.WriteString(row("interval", magenta.Render(fmt.Sprintf("[%g, %g]", s.A, s.B))))
	b.WriteString(row("n", magenta.Render(fmt.Sprintf("%d", m.n))+dim.Render(fmt.Sprintf("  (simpson uses %d)", e.effectiveN))))
	b.WriteString(row("∫ exact", white.Render(fmt.Sprintf("%.8f", e.exactInteg))))
	b.WriteString(row("trapezoidal", white.Render(fmt.Sprintf("%.8f", e.trapezoidal))+"  "+errStyle(e.trapErr)))
	b.WriteString(row("simpson", white.Render(fmt.Sprintf("%.8f", e.simpsons))+"  "+errStyle(e.simpsonsErr)))

	b.WriteString("\n")
	if m.editing {
		b.WriteString(dim.Render("      type x   enter apply   esc cancel") + "\n")
	} else {
		b.WriteString(dim.Render("      ←→ move x  +- step  ↑↓ n  e edit x  0 reset  esc back") + "\n")
	}
	return b.String()
}

func row(label, value string) string {
	return "      " + dim.Render(fmt.Sprintf("%-14s", label)) + value + "\n"
}

func errStyle(e float64) string {
	s := fmt.Sprintf("err %.3e", e)
	switch {
	case math.IsNaN(e) || math.IsInf(e, 0):
		return magenta.Render(s)
	case e < 1e-6:
		return green.Render(s)
	default:
		return yellow.Render(s)
	}
}

func sparkline(data []float64) string {
	if len(data) == 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	rang := maxVal - minVal
	if rang == 0 {
		rang = 1
	}
	var sb strings.Builder
	for _, v := range data {
		idx := int((v - minVal) / rang * 7)
		if idx > 7 {
			idx = 7
		}
		if idx < 0 {
			idx = 0
		}
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

// marker puts a caret under the column closest to x, or an arrow at the
// edge when x is outside [start, end].
func marker(x, start, end float64, width int) string {
	if width < 1 {
		return ""
	}
	if end == start {
		return "^"
	}
	pos := int(math.Round((x - start) / (end - start) * float64(width-1)))
	switch {
	case pos < 0:
		return "◂"
	case pos >= width:
		return strings.Repeat(" ", width-1) + "▸"
	}
	return strings.Repeat(" ", pos) + "^"
}

func Run(reg *testfn.Registry, s Settings) error {
	p := tea.NewProgram(newModel(reg, s), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
