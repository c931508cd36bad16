package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drillz/internal/ui/theme"
)

// AnswerInput wraps bubbles/textinput for free-text answers.
type AnswerInput struct {
	Model  textinput.Model
	marked bool
	right  bool
}

// NewAnswerInput returns a focused input.
func NewAnswerInput(placeholder string, limit int) AnswerInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	if limit > 0 {
		ti.CharLimit = limit
	}
	ti.Focus()
	return AnswerInput{Model: ti}
}

// Update forwards key presses to the input until it is marked.
func (a AnswerInput) Update(msg tea.Msg) (AnswerInput, tea.Cmd) {
	if a.marked {
		return a, nil
	}
	var cmd tea.Cmd
	a.Model, cmd = a.Model.Update(msg)
	return a, cmd
}

// Value returns the trimmed input.
func (a AnswerInput) Value() string {
	return strings.TrimSpace(a.Model.Value())
}

// Mark freezes the input with a check or cross.
func (a *AnswerInput) Mark(right bool) {
	a.marked, a.right = true, right
}

// Clear empties the input and makes it editable again.
func (a *AnswerInput) Clear() {
	a.Model.SetValue("")
	a.marked = false
}

// View renders the input.
func (a AnswerInput) View() string {
	view := a.Model.View()
	if a.marked {
		if a.right {
			view += " " + theme.Correct.Render("✓")
		} else {
			view += " " + theme.Incorrect.Render("✗")
		}
	}
	return view
}
