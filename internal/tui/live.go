// Package tui is the live terminal view of a run: it steps the integration
// a batch at a time and charts a selected quantity as records accumulate.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/gekaremi/vplanet/internal/engine"
	"github.com/gekaremi/vplanet/internal/sim"
)

const (
	chartWidth  = 70
	chartHeight = 12

	// Integration steps per animation frame. Output records accumulate
	// far slower than steps, so a large batch keeps the view moving.
	stepsPerTick = 200
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type TickMsg time.Time

// Model runs the Evolver inside a Bubble Tea program.
type Model struct {
	evolver *sim.Evolver
	rec     *sim.Recorder

	columns []string
	column  int
	body    int

	running bool
	done    bool
	err     error
}

// NewModel wraps a started evolver and the recorder attached to it.
func NewModel(evolver *sim.Evolver, rec *sim.Recorder) Model {
	return Model{
		evolver: evolver,
		rec:     rec,
		columns: sim.Columns(),
		running: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "tab":
			m.column = (m.column + 1) % len(m.columns)
		case "b":
			m.body = (m.body + 1) % len(m.evolver.Bodies)
		}
	case TickMsg:
		if m.running && !m.done {
			for i := 0; i < stepsPerTick; i++ {
				done, err := m.evolver.Step()
				if err != nil {
					m.err = err
					m.done = true
					break
				}
				if done {
					m.done = true
					break
				}
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	ev := m.evolver.Ev
	b.WriteString(headerStyle.Render(fmt.Sprintf("evolving %s", m.evolver.Sys.Name)) + "\n\n")
	b.WriteString(row("time", fmt.Sprintf("%.4g / %.4g yr", ev.Time/engine.YearSec, ev.StopTime/engine.YearSec)))
	b.WriteString(row("dt", fmt.Sprintf("%.4g yr", m.evolver.Dt()/engine.YearSec)))
	b.WriteString(row("records", fmt.Sprintf("%d", len(m.rec.Times))))
	b.WriteString(row("body", m.evolver.Bodies[m.body].Name))

	col := m.columns[m.column]
	if vals, err := m.rec.Column(m.body, col); err == nil && len(vals) >= 2 {
		chart := asciigraph.Plot(vals,
			asciigraph.Width(chartWidth),
			asciigraph.Height(chartHeight),
			asciigraph.Caption(col),
		)
		b.WriteString(graphStyle.Render(chart) + "\n")
	} else {
		b.WriteString(graphStyle.Render(fmt.Sprintf("%s: waiting for records...", col)) + "\n")
	}

	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	} else if m.done {
		if m.evolver.Halted() {
			b.WriteString(headerStyle.Render("halted") + "\n")
		} else {
			b.WriteString(headerStyle.Render("complete") + "\n")
		}
	} else if !m.running {
		b.WriteString(headerStyle.Render("paused") + "\n")
	}

	b.WriteString(helpStyle.Render("space pause · tab column · b body · q quit"))
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}
