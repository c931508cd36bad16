// Package home is the root screen: course picker and course overview.
package home

import (
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/router"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/screens/drills"
	"github.com/abhisek/drillz/internal/screens/stats"
	"github.com/abhisek/drillz/internal/ui/components"
	"github.com/abhisek/drillz/internal/ui/layout"
	"github.com/abhisek/drillz/internal/ui/theme"
)

type loadedMsg struct {
	Courses  []engine.CourseView
	Overview *engine.Overview // nil when no course is active
	Err      error
}

type selectedMsg struct {
	Overview *engine.Overview
	Err      error
}

type refilledMsg struct{ Err error }

type resetMsg struct{ Err error }

// Menu actions run inside Menu.Update, so they change the screen through
// messages instead of mutating it directly.
type (
	pickMsg         struct{}
	confirmResetMsg struct{}
)

// HomeScreen lists the courses until one is picked, then shows that
// course's overview.
type HomeScreen struct {
	sess         screen.Session
	courses      []engine.CourseView
	overview     *engine.Overview
	picking      bool
	confirmReset bool
	menu         components.Menu
	notice       string
	err          error
	loaded       bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Refresher = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New returns the home screen for the session's learner.
func New(sess screen.Session) *HomeScreen {
	return &HomeScreen{sess: sess}
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.load()
}

// Refresh reloads the overview when the learner comes back from a course.
func (h *HomeScreen) Refresh() tea.Cmd {
	return h.load()
}

func (h *HomeScreen) load() tea.Cmd {
	sess := h.sess
	return func() tea.Msg {
		ctx := sess.Context()
		courses, err := sess.Engine.ListCourses(ctx)
		if err != nil {
			return loadedMsg{Err: err}
		}
		active, err := sess.Engine.ActiveCourse(ctx, sess.UserID)
		if errors.Is(err, engine.ErrNoCourse) || errors.Is(err, engine.ErrNotFound) {
			return loadedMsg{Courses: courses}
		}
		if err != nil {
			return loadedMsg{Err: err}
		}
		ov, err := sess.Engine.Overview(ctx, sess.UserID, active)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Courses: courses, Overview: ov}
	}
}

func (h *HomeScreen) Title() string {
	if h.picking {
		return "Choose a course"
	}
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.confirmReset {
		return []layout.KeyHint{{Key: "Y", Description: "Reset"}, {Key: "N", Description: "Cancel"}}
	}
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Navigate"}, {Key: "Enter", Description: "Select"}}
	if h.picking && h.overview != nil {
		hints = append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// HandlesBack is true while picking a course over an active one, so esc
// returns to the overview.
func (h *HomeScreen) HandlesBack() bool {
	return h.confirmReset || (h.picking && h.overview != nil)
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return h.handleLoaded(msg)
	case selectedMsg:
		if msg.Err != nil {
			h.notice = msg.Err.Error()
			return h, nil
		}
		h.overview, h.picking = msg.Overview, false
		h.rebuild()
		return h, h.status()
	case pickMsg:
		h.picking = true
		h.rebuild()
		return h, nil
	case confirmResetMsg:
		h.confirmReset = true
		return h, nil
	case refilledMsg:
		if msg.Err != nil {
			h.notice = describe(msg.Err)
			return h, nil
		}
		h.notice = "Gems refilled."
		return h, h.load()
	case resetMsg:
		if msg.Err != nil {
			h.notice = describe(msg.Err)
			return h, nil
		}
		h.notice = "Progress reset."
		return h, h.load()
	case tea.KeyMsg:
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *HomeScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	h.loaded = true
	if msg.Err != nil {
		h.err = msg.Err
		return h, nil
	}
	h.err = nil
	h.courses, h.overview = msg.Courses, msg.Overview
	h.picking = h.overview == nil
	h.rebuild()
	if h.overview == nil {
		return h, nil
	}
	return h, h.status()
}

func (h *HomeScreen) status() tea.Cmd {
	st := screen.StatusFromProgress(h.overview.Course.Title, h.overview.Progress)
	return func() tea.Msg { return st }
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if h.confirmReset {
		switch key {
		case "y":
			h.confirmReset = false
			return h, h.reset()
		case "n", "esc":
			h.confirmReset = false
		}
		return h, nil
	}
	if key == "esc" && h.picking && h.overview != nil {
		h.picking = false
		h.rebuild()
		return h, nil
	}
	if key == "up" || key == "down" || key == "k" || key == "j" {
		h.notice = ""
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) rebuild() {
	if h.picking {
		items := make([]components.MenuItem, 0, len(h.courses))
		for _, c := range h.courses {
			id := c.ID
			item := components.MenuItem{Label: c.Title, Detail: c.Description, Action: func() tea.Cmd { return h.selectCourse(id) }}
			if h.overview != nil && h.overview.Course.ID == id {
				item.Detail = "current"
			}
			items = append(items, item)
		}
		h.menu = components.NewMenu(items)
		return
	}

	ov := h.overview
	refill := components.MenuItem{Label: "Refill gems", Action: h.refill, Disabled: !ov.CanRefill}
	switch {
	case ov.Subscribed:
		refill.Detail = "unlimited gems"
	case ov.Progress.Gems >= ov.GemsLimit:
		refill.Detail = "gems are full"
	case !ov.CanRefill:
		refill.Detail = "not enough points"
	}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Continue learning", Detail: fmt.Sprintf("%d of %d drills", ov.DrillsDone, ov.DrillsTotal), Action: func() tea.Cmd {
			return router.Push(drills.New(h.sess, ov.Course.ID))
		}},
		refill,
		{Label: "Stats & leaderboard", Action: func() tea.Cmd {
			return router.Push(stats.New(h.sess, ov.Course.ID))
		}},
		{Label: "Switch course", Action: func() tea.Cmd {
			return func() tea.Msg { return pickMsg{} }
		}},
		{Label: "Reset progress", Action: func() tea.Cmd {
			return func() tea.Msg { return confirmResetMsg{} }
		}},
		{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	})
}

func (h *HomeScreen) selectCourse(id int) tea.Cmd {
	sess := h.sess
	return func() tea.Msg {
		ov, err := sess.Engine.SelectCourse(sess.Context(), sess.UserID, id)
		return selectedMsg{Overview: ov, Err: err}
	}
}

func (h *HomeScreen) refill() tea.Cmd {
	sess, course := h.sess, h.overview.Course.ID
	return func() tea.Msg {
		_, err := sess.Engine.Refill(sess.Context(), sess.UserID, course)
		return refilledMsg{Err: err}
	}
}

func (h *HomeScreen) reset() tea.Cmd {
	sess, course := h.sess, h.overview.Course.ID
	return func() tea.Msg {
		return resetMsg{Err: sess.Engine.Reset(sess.Context(), sess.UserID, course)}
	}
}

func (h *HomeScreen) View(width, height int) string {
	switch {
	case !h.loaded:
		return layout.Center(theme.Dim.Render("Loading…"), width, height)
	case h.err != nil:
		return layout.Center(theme.Incorrect.Render(h.err.Error()), width, height)
	case h.picking && len(h.courses) == 0:
		return layout.Center(theme.Body.Render("No courses yet.")+"\n\n"+
			theme.Hint.Render("Import one with: drillz import <bundle.yaml>"), width, height)
	case h.confirmReset:
		return layout.Center(theme.Modal.Render(
			theme.Body.Bold(true).Render("Reset all progress in "+h.overview.Course.Title+"?")+"\n\n"+
				theme.Dim.Render("Completions, points, gems and streak start over.")+"\n\n"+
				theme.Hint.Render("y = reset   n = cancel")), width, height)
	}

	var b strings.Builder
	if h.picking {
		b.WriteString(theme.Title.Render("Pick a course") + "\n\n")
	} else {
		b.WriteString(h.renderOverview())
	}
	b.WriteString(h.menu.View())
	if h.notice != "" {
		b.WriteString("\n" + theme.Hint.Render(h.notice) + "\n")
	}
	return layout.Center(theme.Panel.Render(b.String()), width, height)
}

func (h *HomeScreen) renderOverview() string {
	ov := h.overview
	var b strings.Builder
	b.WriteString(theme.Title.Render(ov.Course.Title) + "\n")
	if ov.Course.Description != "" {
		b.WriteString(theme.Dim.Render(ov.Course.Description) + "\n")
	}
	b.WriteString("\n")

	p := ov.Progress
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Gem).Render(fmt.Sprintf("♥ %d/%d gems", p.Gems, ov.GemsLimit)) + "   " +
		lipgloss.NewStyle().Foreground(theme.Points).Render(fmt.Sprintf("● %d points", p.Points)) + "   " +
		lipgloss.NewStyle().Foreground(theme.Streak).Render(fmt.Sprintf("▲ %d day streak", p.CurrentStreak)) + "\n")
	if ov.NextMilestone > 0 {
		b.WriteString(theme.Dim.Render(fmt.Sprintf("Next streak milestone: %d days", ov.NextMilestone)) + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func describe(err error) string {
	switch {
	case errors.Is(err, engine.ErrNotFound):
		return "Course not found."
	case engine.IsRetryable(err):
		return "Could not save. Try again."
	}
	return err.Error()
}
