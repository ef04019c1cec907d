package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpendulum/internal/metrics"
	"github.com/san-kum/dpendulum/internal/physics"
	"github.com/san-kum/dpendulum/internal/sim"
)

const (
	canvasWidth  = 60
	canvasHeight = 24
	panelWidth   = 42

	tickRate     = time.Second / 30
	trailLength  = 120
	graphHistory = 300

	minSpeed = 1.0 / 16
	maxSpeed = 64.0
)

type TickMsg time.Time

type dot struct{ x, y int }

// Replay plays a trajectory back in real time, scaled by a speed factor.
type Replay struct {
	tr       *sim.Trajectory
	params   physics.Params
	energies []float64

	canvas *Canvas
	trail  []dot

	cursor  float64 // fractional index into tr
	speed   float64
	running bool
	theme   int
	styles  Styles
}

// NewReplay creates a replay of tr. speed 1 plays back in simulated real
// time.
func NewReplay(tr *sim.Trajectory, p physics.Params, speed float64) Replay {
	if !(speed > 0) {
		speed = 1
	}
	return Replay{
		tr:       tr,
		params:   p,
		energies: tr.Energies(p),
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		trail:    make([]dot, 0, trailLength),
		speed:    math.Min(math.Max(speed, minSpeed), maxSpeed),
		running:  true,
		styles:   Themes[0].Styles(),
	}
}

func (m Replay) Frame() int { return int(m.cursor) }

func (m Replay) Speed() float64 { return m.speed }

func (m Replay) Running() bool { return m.running }

// Done reports whether the last point has been shown.
func (m Replay) Done() bool { return m.Frame() >= m.tr.Len()-1 }

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Replay) Init() tea.Cmd { return tick() }

func (m Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "+", "=":
			m.speed = math.Min(m.speed*2, maxSpeed)
		case "-", "_":
			m.speed = math.Max(m.speed/2, minSpeed)
		case "r":
			m.cursor = 0
			m.trail = m.trail[:0]
			m.running = true
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = Themes[m.theme].Styles()
		}
	case tea.WindowSizeMsg:
		w := max(msg.Width-panelWidth-8, 10)
		h := max(msg.Height-4, 6)
		m.canvas = NewCanvas(w, h)
		m.trail = m.trail[:0]
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance moves the cursor by one tick of playback time.
func (m *Replay) advance() {
	if m.Done() {
		m.running = false
		return
	}
	step := 1.0
	if dt := m.tr.Dt(); dt > 0 {
		step = m.speed * tickRate.Seconds() / dt
	}
	m.cursor = math.Min(m.cursor+step, float64(m.tr.Len()-1))
}

func (m *Replay) draw() {
	m.canvas.Clear()
	if m.tr.Len() == 0 {
		return
	}

	_, x := m.tr.At(m.Frame())
	pos := physics.ToCartesian(x.Theta1(), x.Theta2(), m.params)
	proj := NewProjection(m.canvas, 1.05*(m.params.L1+m.params.L2))

	px, py := proj.Apply(0, 0)
	b1x, b1y := proj.Apply(pos.X1, pos.Y1)
	b2x, b2y := proj.Apply(pos.X2, pos.Y2)

	m.trail = append(m.trail, dot{b2x, b2y})
	if len(m.trail) > trailLength {
		m.trail = m.trail[1:]
	}
	for _, pt := range m.trail {
		m.canvas.Set(pt.x, pt.y)
	}

	m.canvas.FillDisc(px, py, 1)
	m.canvas.DrawLine(px, py, b1x, b1y)
	m.canvas.DrawLine(b1x, b1y, b2x, b2y)
	m.canvas.FillDisc(b1x, b1y, 1)
	m.canvas.FillDisc(b2x, b2y, 2)
}

func (m Replay) View() string {
	m.draw()
	st := m.styles

	if m.tr.Len() == 0 {
		return st.Warn.Render("empty trajectory") + "\n"
	}

	i := m.Frame()
	t, x := m.tr.At(i)
	e0, e := m.energies[0], m.energies[i]

	var s strings.Builder
	s.WriteString(st.Header.Render("DOUBLE PENDULUM") + "\n")

	switch {
	case m.Done():
		s.WriteString(st.Paused.Render("FINISHED"))
	case m.running:
		s.WriteString(st.Status.Render("PLAYING"))
	default:
		s.WriteString(st.Paused.Render("PAUSED"))
	}
	s.WriteString(fmt.Sprintf("  x%g\n\n", m.speed))

	from := max(0, i-graphHistory)
	if i-from > 1 {
		chart := asciigraph.Plot(m.energies[from:i+1], asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(st.Graph.Render(chart) + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(st.Label.Render(label) + st.Value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2f / %.2fs", t, m.tr.Times[m.tr.Len()-1]))
	row("θ1", fmt.Sprintf("%8.2f°", degrees(x.Theta1())))
	row("θ2", fmt.Sprintf("%8.2f°", degrees(x.Theta2())))
	row("ω1", fmt.Sprintf("%8.2f°/s", degrees(x.Omega1())))
	row("ω2", fmt.Sprintf("%8.2f°/s", degrees(x.Omega2())))
	row("Energy", fmt.Sprintf("%.6f J", e))
	row("Drift", fmt.Sprintf("%.2e", metrics.RelativeDrift(e0, e)))

	s.WriteString(st.Help.Render("─────────────────────\nSP:Pause R:Restart Q:Quit\n+/-:Speed T:Theme"))

	canvasView := st.Canvas.Render(m.canvas.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, st.Panel.Render(s.String()))
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

// Run starts the replay in the terminal and blocks until the user quits.
func Run(tr *sim.Trajectory, p physics.Params, speed float64) error {
	_, err := tea.NewProgram(NewReplay(tr, p, speed), tea.WithAltScreen()).Run()
	return err
}
