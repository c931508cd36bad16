// Package summary shows the end-of-drill report.
package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/router"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/ui/layout"
	"github.com/abhisek/drillz/internal/ui/theme"
)

// NextFunc builds the screen for a drill id. The drill screen passes its
// own constructor so the summary can chain into the next drill.
type NextFunc func(drillID int) screen.Screen

// SummaryScreen displays an engine summary.
type SummaryScreen struct {
	title   string
	summary *engine.Summary
	next    NextFunc
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New returns a summary screen for the drill titled title.
func New(title string, sum *engine.Summary, next NextFunc) *SummaryScreen {
	return &SummaryScreen{title: title, summary: sum, next: next}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Drill Summary"
}

func (s *SummaryScreen) canChain() bool {
	return s.next != nil && s.summary != nil && s.summary.DrillCompleted && s.summary.NextDrillID != nil
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "Enter", Description: "Back to drills"}}
	if s.canChain() {
		hints = append(hints, layout.KeyHint{Key: "N", Description: "Next drill"})
	}
	return hints
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "enter", "esc", "q":
		return s, router.Pop
	case "n":
		if s.canChain() {
			return s, router.Replace(s.next(*s.summary.NextDrillID))
		}
	}
	return s, nil
}

func tierColor(tier string) color.Color {
	switch tier {
	case economy.TierExcellent.String():
		return theme.Success
	case economy.TierGood.String():
		return theme.Primary
	default:
		return theme.Text
	}
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.summary
	if sum == nil {
		return ""
	}
	center := func(str string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, str)
	}

	var b strings.Builder
	heading := sum.Message
	if sum.ShowCelebration {
		heading = "★ " + heading + " ★"
	}
	b.WriteString(center(lipgloss.NewStyle().Foreground(tierColor(sum.Tier)).Bold(true).Render(heading)) + "\n")
	b.WriteString(center(theme.Dim.Render(s.title)) + "\n\n")

	score := fmt.Sprintf("Score %.0f%%   %d of %d correct", sum.Score, sum.Correct, sum.Considered)
	b.WriteString(center(theme.Body.Render(score)) + "\n")

	secs := int(sum.TimeTakenSec)
	timing := fmt.Sprintf("Time %d:%02d", secs/60, secs%60)
	if sum.Pace != "" {
		timing += "   Pace: " + string(sum.Pace)
	}
	b.WriteString(center(theme.Dim.Render(timing)) + "\n\n")

	switch {
	case sum.Expired && !sum.DrillCompleted:
		b.WriteString(center(theme.Incorrect.Render("Time ran out before the drill was finished.")) + "\n")
	case sum.Expired:
		b.WriteString(center(theme.Dim.Render("Time ran out.")) + "\n")
	}
	if sum.DrillCompleted {
		b.WriteString(center(theme.Correct.Render("Drill completed")) + "\n")
		if sum.NextDrillID != nil {
			b.WriteString(center(theme.Dim.Render("The next drill is unlocked.")) + "\n")
		}
	}

	b.WriteString("\n")
	balance := lipgloss.NewStyle().Foreground(theme.Gem).Render(fmt.Sprintf("♥ %d gems", sum.Gems)) + "   " +
		lipgloss.NewStyle().Foreground(theme.Points).Render(fmt.Sprintf("● %d points", sum.Points)) + "   " +
		lipgloss.NewStyle().Foreground(theme.Streak).Render(fmt.Sprintf("▲ %d day streak", sum.Streak))
	b.WriteString(center(balance) + "\n")
	return b.String()
}
