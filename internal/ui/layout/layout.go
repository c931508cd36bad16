// Package layout composes the header, body and footer of the terminal
// frame.
package layout

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillz/internal/ui/theme"
)

const (
	MinWidth  = 72
	MinHeight = 20
)

// KeyHint is one key binding shown in the footer.
type KeyHint struct {
	Key         string
	Description string
}

// Status is the learner's balance shown in the header. A zero Status hides
// the counters.
type Status struct {
	Course string
	Gems   int
	Points int
	Streak int
	Shown  bool
}

// IsTooSmall reports whether the terminal is below the minimum size.
func IsTooSmall(width, height int) bool {
	return width < MinWidth || height < MinHeight
}

// RenderMinSizeMessage asks the user to grow the terminal.
func RenderMinSizeMessage(width, height int) string {
	return lipgloss.NewStyle().
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Width(width).
		Render(fmt.Sprintf("Terminal too small.\n\nNeed at least %d x %d, have %d x %d.",
			MinWidth, MinHeight, width, height))
}

// RenderHeader renders the brand on the left, the screen title in the
// middle and the balance on the right.
func RenderHeader(title string, st Status, width int) string {
	left := theme.Title.Render("drillz")
	if st.Course != "" {
		left += theme.Dim.Render(" · " + st.Course)
	}
	center := theme.Body.Render(title)

	right := ""
	if st.Shown {
		right = lipgloss.NewStyle().Foreground(theme.Gem).Render(fmt.Sprintf("♥ %d", st.Gems)) + "  " +
			lipgloss.NewStyle().Foreground(theme.Points).Render(fmt.Sprintf("● %d", st.Points)) + "  " +
			lipgloss.NewStyle().Foreground(theme.Streak).Render(fmt.Sprintf("▲ %d", st.Streak))
	}

	inner := max(width-4, 0)
	lw, cw, rw := lipgloss.Width(left), lipgloss.Width(center), lipgloss.Width(right)
	leftGap := max((inner-cw)/2-lw, 1)
	rightGap := max(inner-lw-leftGap-cw-rw, 1)

	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(left + strings.Repeat(" ", leftGap) + center + strings.Repeat(" ", rightGap) + right)
}

// RenderFooter renders the key hints.
func RenderFooter(hints []KeyHint, width int) string {
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, theme.Body.Bold(true).Render(h.Key)+" "+theme.Dim.Render(h.Description))
	}
	return lipgloss.NewStyle().
		Width(width).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(" " + strings.Join(parts, "   "))
}

// ContentSize returns the body area left once header and footer are drawn.
func ContentSize(header, footer string, width, height int) (int, int) {
	return width, max(height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
}

// RenderFrame stacks header, body and footer to fill the terminal.
func RenderFrame(header, content, footer string, width, height int) string {
	_, h := ContentSize(header, footer, width, height)
	body := lipgloss.NewStyle().Width(width).Height(h).Render(content)
	return header + "\n" + body + "\n" + footer
}

// Center places content in the middle of a w x h box.
func Center(content string, w, h int) string {
	return lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, content)
}
