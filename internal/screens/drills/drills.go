// Package drills lists the units and drills of the active course.
package drills

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/progression"
	"github.com/abhisek/drillz/internal/router"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/screens/drill"
	"github.com/abhisek/drillz/internal/ui/layout"
	"github.com/abhisek/drillz/internal/ui/theme"
)

type loadedMsg struct {
	Units    []progression.UnitView
	Overview *engine.Overview
	Err      error
}

// DrillsScreen is the course path.
type DrillsScreen struct {
	sess     screen.Session
	courseID int
	units    []progression.UnitView
	rows     []progression.DrillView
	overview *engine.Overview
	selected int
	notice   string
	err      error
	loaded   bool
}

var _ screen.Screen = (*DrillsScreen)(nil)
var _ screen.Refresher = (*DrillsScreen)(nil)
var _ screen.KeyHintProvider = (*DrillsScreen)(nil)

// New returns the drill list of courseID.
func New(sess screen.Session, courseID int) *DrillsScreen {
	return &DrillsScreen{sess: sess, courseID: courseID}
}

func (s *DrillsScreen) Init() tea.Cmd {
	return s.load()
}

// Refresh reloads the list, e.g. after a drill finished.
func (s *DrillsScreen) Refresh() tea.Cmd {
	return s.load()
}

func (s *DrillsScreen) load() tea.Cmd {
	sess, course := s.sess, s.courseID
	return func() tea.Msg {
		ctx := sess.Context()
		units, err := sess.Engine.DrillList(ctx, sess.UserID, course)
		if err != nil {
			return loadedMsg{Err: err}
		}
		ov, err := sess.Engine.Overview(ctx, sess.UserID, course)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Units: units, Overview: ov}
	}
}

func (s *DrillsScreen) Title() string {
	if s.overview != nil {
		return s.overview.Course.Title
	}
	return "Drills"
}

func (s *DrillsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Play"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *DrillsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *DrillsScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	s.loaded = true
	if msg.Err != nil {
		s.err = msg.Err
		return s, nil
	}
	s.err = nil
	s.units, s.overview = msg.Units, msg.Overview
	s.rows = s.rows[:0]
	for _, u := range s.units {
		s.rows = append(s.rows, u.Drills...)
	}
	s.selected = 0
	for i, r := range s.rows {
		if r.IsCurrent {
			s.selected = i
			break
		}
	}
	st := screen.StatusFromProgress(s.overview.Course.Title, s.overview.Progress)
	return s, func() tea.Msg { return st }
}

func (s *DrillsScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if len(s.rows) == 0 {
		return s, nil
	}
	switch msg.String() {
	case "up", "k":
		if s.selected > 0 {
			s.selected--
		}
		s.notice = ""
	case "down", "j":
		if s.selected < len(s.rows)-1 {
			s.selected++
		}
		s.notice = ""
	case "enter":
		row := s.rows[s.selected]
		if !row.IsUnlocked {
			s.notice = "Finish the current drill to unlock this one."
			return s, nil
		}
		return s, router.Push(drill.New(s.sess, row.DrillID))
	}
	return s, nil
}

func (s *DrillsScreen) View(width, height int) string {
	switch {
	case !s.loaded:
		return layout.Center(theme.Dim.Render("Loading…"), width, height)
	case s.err != nil:
		return layout.Center(theme.Incorrect.Render(s.err.Error()), width, height)
	case len(s.rows) == 0:
		return layout.Center(theme.Body.Render("This course has no drills yet."), width, height)
	}

	inner := min(width-4, 70)
	var b strings.Builder
	if ov := s.overview; ov != nil {
		b.WriteString(theme.Dim.Render(fmt.Sprintf("%d of %d drills completed", ov.DrillsDone, ov.DrillsTotal)) + "\n\n")
	}

	i := 0
	for _, u := range s.units {
		b.WriteString(theme.Title.Render(u.Title))
		if u.Description != "" {
			b.WriteString("  " + theme.Dim.Render(u.Description))
		}
		b.WriteString("\n")
		for _, d := range u.Drills {
			b.WriteString(s.renderRow(d, i == s.selected, inner) + "\n")
			i++
		}
		b.WriteString("\n")
	}
	if s.notice != "" {
		b.WriteString(theme.Hint.Render(s.notice) + "\n")
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, b.String())
}

func (s *DrillsScreen) renderRow(d progression.DrillView, selected bool, width int) string {
	icon := "·"
	switch d.State {
	case progression.Completed:
		icon = "✓"
	case progression.Current:
		icon = "▶"
	}
	title := d.Title
	if d.IsTimed {
		title += " ⏱"
	}
	label := string(d.Label)
	if d.IsCurrent && d.Percentage > 0 {
		label = fmt.Sprintf("%s %.0f%%", label, d.Percentage)
	}

	prefix := "  "
	if selected {
		prefix = "▸ "
	}
	left := fmt.Sprintf("%s%s %s", prefix, icon, title)
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(label), 1)
	line := left + strings.Repeat(" ", gap) + label

	switch {
	case !d.IsUnlocked:
		return theme.Locked.Render(line)
	case selected:
		return theme.Selected.Render(line)
	case d.State == progression.Completed:
		return lipgloss.NewStyle().Foreground(theme.Success).Render(line)
	}
	return theme.Body.Render(line)
}
