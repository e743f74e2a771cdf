// Package viz renders run output in the terminal: line charts of any
// recorded column and short formatted run summaries.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/gekaremi/vplanet/internal/engine"
	"github.com/gekaremi/vplanet/internal/sim"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(16)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Plot charts one body's column against time.
func Plot(rec *sim.Recorder, iBody int, column string, width, height int) (string, error) {
	vals, err := rec.Column(iBody, column)
	if err != nil {
		return "", err
	}
	if len(vals) < 2 {
		return "", fmt.Errorf("not enough records to plot: %d", len(vals))
	}

	caption := fmt.Sprintf("%s: %s vs time", rec.Names[iBody], column)
	chart := asciigraph.Plot(vals,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)

	var b strings.Builder
	b.WriteString(headerStyle.Render(caption) + "\n")
	b.WriteString(graphStyle.Render(chart) + "\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d records, %.3g to %.3g yr",
		len(vals), rec.Times[0]/engine.YearSec, rec.Times[len(rec.Times)-1]/engine.YearSec)))
	b.WriteString("\n")
	return b.String(), nil
}

// PlotSeries charts a raw series, for callers that already extracted one.
func PlotSeries(vals []float64, caption string, width, height int) (string, error) {
	if len(vals) < 2 {
		return "", fmt.Errorf("not enough records to plot: %d", len(vals))
	}
	chart := asciigraph.Plot(vals,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)
	return headerStyle.Render(caption) + "\n" + graphStyle.Render(chart) + "\n", nil
}

// Summary formats the final state of every body.
func Summary(rec *sim.Recorder, halted bool) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("final state") + "\n")
	if len(rec.Rows) == 0 {
		return b.String()
	}
	last := rec.Rows[len(rec.Rows)-1]
	for i, name := range rec.Names {
		s := last[i]
		b.WriteString(headerStyle.Render(name) + "\n")
		b.WriteString(row("age", fmt.Sprintf("%.4g yr", s.Age/engine.YearSec)))
		b.WriteString(row("mass", fmt.Sprintf("%.4g kg", s.Mass)))
		if s.Luminosity > 0 {
			b.WriteString(row("luminosity", fmt.Sprintf("%.4g LSun", s.Luminosity/engine.LSun)))
			b.WriteString(row("rot period", fmt.Sprintf("%.4g d", engine.FreqToPer(s.RotRate)/engine.DaySec)))
		}
		if s.SurfaceWaterMass > 0 || s.OxygenMass > 0 {
			b.WriteString(row("water", fmt.Sprintf("%.4g TO", s.SurfaceWaterMass/engine.TOMass)))
			b.WriteString(row("oxygen", fmt.Sprintf("%.4g kg", s.OxygenMass)))
		}
		if s.EnvelopeMass > 0 {
			b.WriteString(row("envelope", fmt.Sprintf("%.4g MEarth", s.EnvelopeMass/engine.MEarth)))
		}
	}
	if halted {
		b.WriteString(dimStyle.Render("run ended on a halt condition") + "\n")
	}
	return b.String()
}

func row(label, value string) string {
	return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
}
