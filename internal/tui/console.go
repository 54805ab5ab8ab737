// Package tui is the live operator console: trend plots, plant readouts
// and keyboard control of rods, coolant and the safety system.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/reactorsim/internal/dynamo"
	"github.com/san-kum/reactorsim/internal/engine"
	"github.com/san-kum/reactorsim/internal/history"
	"github.com/san-kum/reactorsim/internal/panel"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

const tickInterval = 33 * time.Millisecond

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Console drives one engine from the keyboard at (scaled) wall-clock
// rate. The engine does its own locking, so stepping here races safely
// with any exporter goroutines.
type Console struct {
	eng *engine.Engine
	dt  float64

	rodSetpoint  float64
	powerMW      float64
	coolantKgS   float64
	speed        float64
	powerCtrl    bool
	coolantCtrl  bool
	promptMode   bool
	scramRequest bool

	width  int
	height int
}

func NewConsole(eng *engine.Engine, dt float64) *Console {
	return &Console{
		eng:        eng,
		dt:         dt,
		powerMW:    200,
		coolantKgS: 200,
		speed:      1.0,
		width:      100,
		height:     30,
	}
}

func (c *Console) Init() tea.Cmd { return tick() }

func (c *Console) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return c.handleKey(msg)
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		return c, nil
	case tickMsg:
		steps := int(c.speed * tickInterval.Seconds() / c.dt)
		if steps < 1 {
			steps = 1
		}
		for i := 0; i < steps; i++ {
			if _, err := c.eng.Step(); err != nil {
				// Fatal integration failure: freeze the console so the
				// operator can read the last good state.
				c.eng.Pause()
				break
			}
		}
		return c, tick()
	}
	return c, nil
}

func (c *Console) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return c, tea.Quit
	case " ":
		if c.eng.Paused() {
			c.eng.Resume()
		} else {
			c.eng.Pause()
		}
	case "up", "k":
		c.rodSetpoint = clamp(c.rodSetpoint+1, 0, 100)
		c.eng.SetRodSetpoint(c.rodSetpoint)
	case "down", "j":
		c.rodSetpoint = clamp(c.rodSetpoint-1, 0, 100)
		c.eng.SetRodSetpoint(c.rodSetpoint)
	case "shift+up", "K":
		c.rodSetpoint = clamp(c.rodSetpoint+5, 0, 100)
		c.eng.SetRodSetpoint(c.rodSetpoint)
	case "shift+down", "J":
		c.rodSetpoint = clamp(c.rodSetpoint-5, 0, 100)
		c.eng.SetRodSetpoint(c.rodSetpoint)
	case "p":
		c.powerCtrl = !c.powerCtrl
		c.eng.EnablePowerControl(c.powerMW, c.powerCtrl)
	case "+", "=":
		c.powerMW = clamp(c.powerMW+10, 0, 600)
		if c.powerCtrl {
			c.eng.EnablePowerControl(c.powerMW, true)
		}
	case "-", "_":
		c.powerMW = clamp(c.powerMW-10, 0, 600)
		if c.powerCtrl {
			c.eng.EnablePowerControl(c.powerMW, true)
		}
	case "c":
		c.coolantCtrl = !c.coolantCtrl
		c.eng.EnableCoolantControl(c.coolantKgS, c.coolantCtrl)
	case "left", "h":
		c.coolantKgS = clamp(c.coolantKgS-50, 0, 1200)
		if c.coolantCtrl {
			c.eng.EnableCoolantControl(c.coolantKgS, true)
		}
	case "right", "l":
		c.coolantKgS = clamp(c.coolantKgS+50, 0, 1200)
		if c.coolantCtrl {
			c.eng.EnableCoolantControl(c.coolantKgS, true)
		}
	case "s":
		c.scramRequest = !c.scramRequest
		c.eng.Scram(c.scramRequest)
	case "m":
		c.promptMode = !c.promptMode
		c.eng.SetPromptMode(c.promptMode)
	case "[":
		c.speed = clamp(c.speed/2, 0.25, 16)
	case "]":
		c.speed = clamp(c.speed*2, 0.25, 16)
	case "0":
		c.speed = 1.0
	}
	return c, nil
}

func (c *Console) View() string {
	snap := c.eng.Snapshot()
	window := c.eng.HistoryWindow()

	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("  ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("       " + cyan.Render("r e a c t o r s i m") + "\n")
	b.WriteString(dimmer.Render("  ╺━━━━━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n\n")

	b.WriteString("  " + c.statusLine(snap) + "\n\n")

	plotWidth := c.width - 14
	if plotWidth < 40 {
		plotWidth = 40
	}

	power := sample(window, plotWidth, func(p history.Projection) float64 {
		return p.Neutrons
	})
	b.WriteString(cyan.Render(asciigraph.Plot(power,
		asciigraph.Height(8),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("neutron density"))) + "\n\n")

	temps := sample(window, plotWidth, func(p history.Projection) float64 {
		return p.FuelTemp
	})
	b.WriteString(yellow.Render(asciigraph.Plot(temps,
		asciigraph.Height(6),
		asciigraph.Width(plotWidth),
		asciigraph.Caption("fuel temperature [K]"))) + "\n\n")

	b.WriteString(c.readouts(snap))
	b.WriteString("\n" + dim.Render("  ↑↓ rod ±1  K/J rod ±5  p power-ctl  +- setpoint  c coolant-ctl  ←→ flow") + "\n")
	b.WriteString(dim.Render("  s scram  m prompt  space pause  [ ] speed  0 realtime  q quit") + "\n")

	return b.String()
}

func (c *Console) statusLine(snap engine.Snapshot) string {
	parts := []string{}

	if snap.Paused {
		parts = append(parts, yellow.Render("○ paused"))
	} else {
		parts = append(parts, green.Render("● running"))
	}
	parts = append(parts, dim.Render(fmt.Sprintf("t=%.1fs", snap.Time)))
	parts = append(parts, dim.Render(fmt.Sprintf("%.2gx", c.speed)))

	if snap.Scram {
		parts = append(parts, red.Render("SCRAM"))
	}
	if snap.Prompt {
		parts = append(parts, magenta.Render("PROMPT MODE"))
	}
	if snap.PowerCtrl {
		parts = append(parts, cyan.Render(fmt.Sprintf("auto %.0f MW", c.powerMW)))
	}
	if snap.CoolantCtrl {
		parts = append(parts, cyan.Render("coolant hold"))
	}

	return strings.Join(parts, "  ")
}

func (c *Console) readouts(snap engine.Snapshot) string {
	row := func(label, value string) string {
		return "  " + dim.Render(fmt.Sprintf("%-12s", label)) + white.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(row("power", fmt.Sprintf("%10.2f MW", snap.ThermalPowerMW)))
	b.WriteString(row("reactivity", fmt.Sprintf("%10.4f $", snap.Reactivity)))
	b.WriteString(row("fuel temp", fmt.Sprintf("%10.1f K", snap.State[dynamo.IdxFuelTemp])))
	b.WriteString(row("coolant", fmt.Sprintf("%10.1f K", snap.State[dynamo.IdxCoolTemp])))
	b.WriteString(row("rod", fmt.Sprintf("%10.2f %%  (sp %.0f)", snap.State[dynamo.IdxRodPos], c.rodSetpoint)))
	b.WriteString(row("flow", fmt.Sprintf("%10.1f kg/s", snap.CoolantFlow/1e3)))
	b.WriteString(row("xenon", fmt.Sprintf("%10.3e /cc", snap.State[dynamo.IdxXenon])))
	b.WriteString(row("burnup", fmt.Sprintf("%10.4f MWd/kg", snap.State[dynamo.IdxBurnup])))
	b.WriteString(row("panel", strings.Join(panel.Encode(snap), " ")))
	return b.String()
}

// sample reduces the window to at most n points, newest preserved.
func sample(window []history.Projection, n int, pick func(history.Projection) float64) []float64 {
	if n < 2 {
		n = 2
	}
	if len(window) <= n {
		out := make([]float64, len(window))
		for i, p := range window {
			out[i] = pick(p)
		}
		return out
	}
	out := make([]float64, n)
	stride := float64(len(window)-1) / float64(n-1)
	for i := 0; i < n; i++ {
		out[i] = pick(window[int(float64(i)*stride)])
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run blocks until the operator quits.
func Run(eng *engine.Engine, dt float64) error {
	p := tea.NewProgram(NewConsole(eng, dt), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
