package components

import (
	"fmt"
	"image/color"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillz/internal/timer"
	"github.com/abhisek/drillz/internal/ui/theme"
)

// Countdown renders the remaining time of a timed drill, colored by
// urgency.
func Countdown(remaining time.Duration, u timer.Urgency, paused bool) string {
	if remaining < 0 {
		remaining = 0
	}
	secs := int(remaining.Round(time.Second) / time.Second)
	text := fmt.Sprintf("⏱ %d:%02d", secs/60, secs%60)
	if paused {
		text += " (paused)"
	}
	var c color.Color = theme.Text
	switch u {
	case timer.Warning:
		c = theme.Warning
	case timer.Critical:
		c = theme.Error
	}
	return lipgloss.NewStyle().Foreground(c).Bold(u != timer.Nominal).Render(text)
}
