package drill

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/drillz/internal/store"
	"github.com/abhisek/drillz/internal/ui/components"
	"github.com/abhisek/drillz/internal/ui/layout"
	"github.com/abhisek/drillz/internal/ui/theme"
)

func (s *DrillScreen) View(width, height int) string {
	switch {
	case s.err != nil:
		return layout.Center(theme.Incorrect.Render(describe(s.err))+"\n\n"+theme.Hint.Render("Press Enter to go back."), width, height)
	case s.phase == phaseLoading || s.play == nil:
		return layout.Center(theme.Dim.Render("Loading drill…"), width, height)
	case s.phase == phaseEmpty:
		return layout.Center(theme.Body.Render("This drill has no questions yet.")+"\n\n"+theme.Hint.Render("Press Enter to go back."), width, height)
	case s.confirmExit:
		return layout.Center(s.renderExitConfirm(), width, height)
	case s.outOfGems:
		return layout.Center(s.renderOutOfGems(), width, height)
	case s.phase == phaseFinishing:
		return layout.Center(theme.Dim.Render("Scoring…"), width, height)
	}
	return s.renderQuestion(width, height)
}

func (s *DrillScreen) renderQuestion(width, height int) string {
	inner := min(width-4, 70)
	var b strings.Builder

	pos := s.play.Position + s.idx + 1
	head := theme.Body.Bold(true).Render(fmt.Sprintf("Question %d of %d", pos, s.play.Target))
	if s.play.Mode != "" && !s.graded() {
		head += theme.Dim.Render("  practice")
	}
	if s.clock != nil {
		gap := max(inner-lipgloss.Width(head)-12, 1)
		head += strings.Repeat(" ", gap) + components.Countdown(s.clock.Remaining(), s.clock.Urgency(), s.clock.Paused())
	}
	b.WriteString(head + "\n")

	done := float64(pos-1) / float64(max(s.play.Target, 1)) * 100
	bar := components.NewProgressBar("", done, inner)
	bar.ShowPercent = false
	b.WriteString(bar.View() + "\n\n")

	q := s.current()
	if q == nil {
		return b.String()
	}
	b.WriteString(lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Bold(true).Render(q.Prompt) + "\n\n")
	if q.Kind == store.KindSelect {
		b.WriteString(s.choice.View())
	} else {
		b.WriteString(s.input.View() + "\n")
	}

	if s.phase == phaseFeedback && s.result != nil {
		b.WriteString("\n" + s.renderFeedback(inner) + "\n")
	}
	if s.phase == phaseSubmitting {
		b.WriteString("\n" + theme.Dim.Render("Checking…") + "\n")
	}
	if s.notice != "" {
		b.WriteString("\n" + theme.Hint.Render(s.notice) + "\n")
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top,
		theme.Panel.Width(inner+4).Render(b.String()))
}

func (s *DrillScreen) renderFeedback(width int) string {
	r := s.result
	var b strings.Builder
	if r.Correct {
		b.WriteString(theme.Correct.Render("✓ Correct!"))
	} else {
		b.WriteString(theme.Incorrect.Render("✗ Not quite."))
		if r.CorrectAnswer != "" {
			b.WriteString(theme.Body.Render("  Answer: " + r.CorrectAnswer))
		}
	}
	if r.Explanation != "" {
		b.WriteString("\n" + lipgloss.NewStyle().Width(width).Foreground(theme.TextDim).Render(r.Explanation))
	}
	return b.String()
}

func (s *DrillScreen) renderExitConfirm() string {
	body := "Leave this drill?"
	if s.play.IsTimed {
		body += "\n\n" + theme.Dim.Render("Timed drills start over next time.")
	} else {
		body += "\n\n" + theme.Dim.Render("You can resume where you left off.")
	}
	return theme.Modal.Render(theme.Body.Bold(true).Render(body) + "\n\n" + theme.Hint.Render("y = leave   n = keep going"))
}

func (s *DrillScreen) renderOutOfGems() string {
	body := lipgloss.NewStyle().Foreground(theme.Gem).Bold(true).Render("You are out of gems!") + "\n\n" +
		theme.Body.Render("Refill with points to keep answering.")
	if s.notice != "" {
		body += "\n\n" + theme.Incorrect.Render(s.notice)
	}
	return theme.Modal.Render(body + "\n\n" + theme.Hint.Render("r = refill   esc = leave"))
}
