package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gaslab/internal/gas"
	"github.com/san-kum/gaslab/internal/stats"
)

const (
	canvasWidth  = 70
	canvasHeight = 32
	frameRate    = 30
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(56)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model drives one engine at the TUI frame rate. It owns the engine
// exclusively for its whole lifetime; reset swaps in a freshly built
// engine rather than rewinding the old one.
type Model struct {
	engine *gas.Engine
	canvas *Canvas
	camera *Camera

	running       bool
	stepsPerFrame int
	showEnergy    bool
	accumulated   bool
	showHelp      bool

	recording bool
	frames    []*image.Paletted

	err error
}

func NewModel(engine *gas.Engine) Model {
	return Model{
		engine:        engine,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		running:       true,
		stepsPerFrame: 3,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles key input and advances the simulation on each tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "e":
			m.showEnergy = !m.showEnergy
		case "a":
			m.accumulated = !m.accumulated
		case "[":
			if m.stepsPerFrame > 1 {
				m.stepsPerFrame--
			}
		case "]":
			if m.stepsPerFrame < 20 {
				m.stepsPerFrame++
			}
		case "g":
			if m.recording {
				m.saveGIF()
				m.recording = false
				m.frames = nil
			} else {
				m.recording = true
				m.frames = make([]*image.Paletted, 0)
			}
		case "?":
			m.showHelp = !m.showHelp
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		}
	case TickMsg:
		if m.running && m.engine.Phase() != gas.PhaseFinished {
			for i := 0; i < m.stepsPerFrame; i++ {
				m.engine.Step()
				m.engine.CollectSamples()
			}
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// reset rebuilds the engine from the same resolved params, so the same
// seed replays the same trajectory.
func (m *Model) reset() {
	fresh, err := gas.New(m.engine.Params())
	if err != nil {
		m.err = err
		return
	}
	m.engine = fresh
}

// draw renders the box and every particle into render space, a cube of
// side 2 centered at the origin.
func (m *Model) draw() {
	m.canvas.Clear()

	p := m.engine.Params()
	scale := 2.0 / p.L
	half := p.L / 2

	wf := CreateCubeWireframe(2.0)
	for _, pt := range m.engine.Particles() {
		wf.AddPoint(gas.Vec3{
			X: (pt.Pos.X - half) * scale,
			Y: (pt.Pos.Y - half) * scale,
			Z: (pt.Pos.Z - half) * scale,
		})
	}
	Render3D(m.canvas, wf, m.camera)
}

// View renders the canvas beside the stats panel.
func (m Model) View() string {
	m.draw()

	s := m.engine.Stats()
	chart := m.engine.Chart(m.accumulated)

	var b strings.Builder
	b.WriteString(headerStyle.Render("GASLAB") + "\n")
	b.WriteString(m.statusLine(s) + "\n")
	b.WriteString(labelStyle.Render("Progress") + ProgressBar(s.Progress, 24) + "\n\n")

	b.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2f", s.Time)) + "\n")
	b.WriteString(labelStyle.Render("Temperature") + valueStyle.Render(fmt.Sprintf("%.3f / %.3f", s.Temperature, s.TargetTemperature)) + "\n")
	b.WriteString(labelStyle.Render("Pressure") + valueStyle.Render(fmt.Sprintf("%.4f ideal, %.4f wall", s.Pressure, s.WallPressure)) + "\n")
	b.WriteString(labelStyle.Render("Mean speed") + valueStyle.Render(fmt.Sprintf("%.3f", s.MeanSpeed)) + "\n")
	b.WriteString(labelStyle.Render("RMS speed") + valueStyle.Render(fmt.Sprintf("%.3f", s.RMSSpeed)) + "\n")
	b.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.3f", s.TotalEnergy)) + "\n")
	b.WriteString(labelStyle.Render("Collisions") + valueStyle.Render(fmt.Sprintf("%d", s.Collisions)) + "\n")
	b.WriteString(labelStyle.Render("Samples") + valueStyle.Render(fmt.Sprintf("%d", s.Samples)) + "\n")
	b.WriteString(labelStyle.Render("Sim speed") + valueStyle.Render(fmt.Sprintf("%d steps/frame", m.stepsPerFrame)) + "\n")
	if len(chart.History) > 1 {
		b.WriteString(labelStyle.Render("Energy trace") + Sparkline(historyEnergies(chart.History), 32) + "\n")
	}

	b.WriteString(m.histogramView(chart))

	if errs := historyErrors(chart.History); len(errs) > 1 {
		plot := asciigraph.Plot(errs, asciigraph.Height(4), asciigraph.Width(40), asciigraph.Caption("temperature error %"))
		b.WriteString(graphStyle.Render(plot) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + statusRecording.Render(fmt.Sprintf("reset failed: %v", m.err)) + "\n")
	}

	b.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit  E:Speed/Energy A:Live/Acc\nx/y/z:Rotate +/-:Zoom [ ]:Sim speed G:Record ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasStyle.Render(m.canvas.String()), panelStyle.Render(b.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + main
	}
	return main
}

func (m Model) statusLine(s gas.Stats) string {
	status := statusRunning.Render("RUNNING")
	if !m.running {
		status = statusPaused.Render("PAUSED")
	}
	line := fmt.Sprintf("%s  phase: %s", status, s.Phase)
	if m.recording {
		line += "  " + statusRecording.Render("● REC")
	}
	return line
}

// histogramView plots the measured distribution against the
// Maxwell-Boltzmann curve over the fixed bin layout.
func (m Model) histogramView(chart gas.ChartData) string {
	bins := chart.Speed
	title := "SPEED DISTRIBUTION"
	if m.showEnergy {
		bins = chart.Energy
		title = "ENERGY DISTRIBUTION"
	}
	source := "live"
	if m.accumulated {
		source = "accumulated"
	}

	measured := make([]float64, len(bins))
	theory := make([]float64, len(bins))
	for i, bin := range bins {
		measured[i] = bin.Probability
		theory[i] = bin.Theory
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n%s (%s)\n", title, source))
	if len(measured) > 1 {
		plot := asciigraph.PlotMany(
			[][]float64{theory, measured},
			asciigraph.Height(7),
			asciigraph.Width(40),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
			asciigraph.Caption("green measured, red theory"),
		)
		b.WriteString(graphStyle.Render(plot) + "\n")
	}
	return b.String()
}

func historyErrors(records []stats.Record) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = rec.TempErrorPct
	}
	return out
}

func historyEnergies(records []stats.Record) []float64 {
	out := make([]float64, len(records))
	for i, rec := range records {
		out[i] = rec.TotalEnergy
	}
	return out
}

// captureFrame rasterizes the canvas into a black and white paletted
// frame, one square of dotSize pixels per braille dot.
func (m *Model) captureFrame() {
	const dotSize = 4
	imgW := m.canvas.Width * 2 * dotSize
	imgH := m.canvas.Height * 4 * dotSize
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), color.Palette{color.Black, color.White})

	for y := 0; y < m.canvas.Height*4; y++ {
		for x := 0; x < m.canvas.Width*2; x++ {
			if !m.canvas.On(x, y) {
				continue
			}
			for py := 0; py < dotSize; py++ {
				for px := 0; px < dotSize; px++ {
					img.SetColorIndex(x*dotSize+px, y*dotSize+py, 1)
				}
			}
		}
	}

	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() {
	if len(m.frames) == 0 {
		return
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/frameRate)
	}
	f, err := os.Create("gaslab.gif")
	if err != nil {
		return
	}
	defer f.Close()
	gif.EncodeAll(f, &anim)
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset (same seed)        ║
║  Q        - Quit                     ║
║  E        - Speed/Energy histogram   ║
║  A        - Live/Accumulated samples ║
║  x/X y/Y z/Z - Rotate camera         ║
║  + / -    - Zoom in/out              ║
║  [ / ]    - Slower/Faster            ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`
