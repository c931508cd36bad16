package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillz/internal/ui/theme"
)

// ProgressBar is a horizontal bar. Percent is 0..100.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
	Fill        color.Color
}

// NewProgressBar returns a bar filled with the primary color.
func NewProgressBar(label string, percent float64, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: true, Width: width, Fill: theme.Primary}
}

// View renders the bar.
func (p ProgressBar) View() string {
	var out string
	if p.Label != "" {
		out = theme.Body.Render(p.Label) + "  "
	}
	suffix := 0
	if p.ShowPercent {
		suffix = 6
	}
	width := max(p.Width-lipgloss.Width(out)-suffix, 4)
	filled := min(max(int(float64(width)*p.Percent/100), 0), width)

	fill := p.Fill
	if fill == nil {
		fill = theme.Primary
	}
	out += lipgloss.NewStyle().Background(fill).Render(strings.Repeat(" ", filled)) +
		lipgloss.NewStyle().Background(theme.Border).Render(strings.Repeat(" ", width-filled))
	if p.ShowPercent {
		out += theme.Dim.Render(fmt.Sprintf(" %3d%%", int(p.Percent)))
	}
	return out
}
