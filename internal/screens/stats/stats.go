// Package stats shows the learner's course report and the leaderboard.
package stats

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/ui/components"
	"github.com/abhisek/drillz/internal/ui/layout"
	"github.com/abhisek/drillz/internal/ui/theme"
)

// LeaderboardSize is how many rows the board shows.
const LeaderboardSize = 10

type loadedMsg struct {
	Stats     *engine.Stats
	Standings *engine.Standings
	Err       error
}

type tab int

const (
	tabStats tab = iota
	tabBoard
)

// StatsScreen has two tabs: the learner's stats and the course
// leaderboard.
type StatsScreen struct {
	sess      screen.Session
	courseID  int
	stats     *engine.Stats
	standings *engine.Standings
	tab       tab
	err       error
}

var _ screen.Screen = (*StatsScreen)(nil)
var _ screen.KeyHintProvider = (*StatsScreen)(nil)

// New returns the report for courseID.
func New(sess screen.Session, courseID int) *StatsScreen {
	return &StatsScreen{sess: sess, courseID: courseID}
}

func (s *StatsScreen) Init() tea.Cmd {
	sess, course := s.sess, s.courseID
	return func() tea.Msg {
		ctx := sess.Context()
		st, err := sess.Engine.Stats(ctx, sess.UserID, course)
		if err != nil {
			return loadedMsg{Err: err}
		}
		board, err := sess.Engine.Leaderboard(ctx, sess.UserID, course, LeaderboardSize)
		if err != nil {
			return loadedMsg{Err: err}
		}
		return loadedMsg{Stats: st, Standings: board}
	}
}

func (s *StatsScreen) Title() string {
	if s.tab == tabBoard {
		return "Leaderboard"
	}
	return "Stats"
}

func (s *StatsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{{Key: "Tab", Description: "Stats / Leaderboard"}, {Key: "Esc", Description: "Back"}}
}

func (s *StatsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.err, s.stats, s.standings = msg.Err, msg.Stats, msg.Standings
	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "left", "right", "h", "l":
			if s.tab == tabStats {
				s.tab = tabBoard
			} else {
				s.tab = tabStats
			}
		}
	}
	return s, nil
}

func (s *StatsScreen) View(width, height int) string {
	switch {
	case s.err != nil:
		return layout.Center(theme.Incorrect.Render(s.err.Error()), width, height)
	case s.stats == nil:
		return layout.Center(theme.Dim.Render("Loading…"), width, height)
	}
	inner := min(width-4, 64)
	body := s.renderStats(inner)
	if s.tab == tabBoard {
		body = s.renderBoard(inner)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, body)
}

func (s *StatsScreen) renderStats(width int) string {
	st := s.stats
	var b strings.Builder
	b.WriteString(theme.Title.Render(st.Course.Title) + "\n\n")

	pct := 0.0
	if st.DrillsTotal > 0 {
		pct = float64(st.DrillsDone) / float64(st.DrillsTotal) * 100
	}
	b.WriteString(components.NewProgressBar("Course", pct, width).View() + "\n\n")

	p := st.Progress
	rank := "unranked"
	if st.Rank > 0 {
		rank = fmt.Sprintf("#%d", st.Rank)
	}
	rows := [][2]string{
		{"Gems", fmt.Sprintf("%d / %d", p.Gems, st.GemsLimit)},
		{"Points", fmt.Sprint(p.Points)},
		{"Streak", fmt.Sprintf("%d days (best %d)", p.CurrentStreak, p.LongestStreak)},
		{"Rank", rank},
		{"Drills", fmt.Sprintf("%d of %d", st.DrillsDone, st.DrillsTotal)},
	}
	if st.Subscribed {
		rows = append(rows, [2]string{"Plan", "unlimited gems"})
	}
	for _, r := range rows {
		b.WriteString(theme.Dim.Render(fmt.Sprintf("%-8s", r[0])) + theme.Body.Render(r[1]) + "\n")
	}

	if len(st.Recent) > 0 {
		b.WriteString("\n" + theme.Dim.Render("Recent") + "\n")
		for _, ev := range st.Recent {
			b.WriteString(fmt.Sprintf("  %s  %-8s %s %s\n", theme.Dim.Render(ev.At), ev.Reason, signed(ev.GemsDelta, "gems"), signed(ev.PointsDelta, "pts")))
		}
	}
	return b.String()
}

func signed(n int, unit string) string {
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("%+d %s", n, unit)
}

func (s *StatsScreen) renderBoard(width int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Top learners") + "\n\n")
	if s.standings == nil || len(s.standings.Top) == 0 {
		b.WriteString(theme.Dim.Render("Nobody has scored yet.") + "\n")
		return b.String()
	}
	me := s.sess.UserID
	listed := false
	for _, row := range s.standings.Top {
		line := boardLine(row, width)
		if row.UserID == me {
			listed = true
			line = theme.Selected.Render(line)
		} else {
			line = theme.Body.Render(line)
		}
		b.WriteString(line + "\n")
	}
	if m := s.standings.Me; m != nil && !listed {
		b.WriteString(theme.Dim.Render("  …") + "\n")
		b.WriteString(theme.Selected.Render(boardLine(*m, width)) + "\n")
	}
	return b.String()
}

func boardLine(row engine.StandingRow, width int) string {
	left := fmt.Sprintf("%3d. %s", row.Rank, row.DisplayName)
	right := fmt.Sprintf("%d pts", row.Points)
	return left + strings.Repeat(" ", max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)) + right
}
