package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drillz/internal/ui/theme"
)

// Choice is a single-answer option picker for select questions. Options
// keep their store ids so the answer can be submitted by id.
type Choice struct {
	IDs      []int
	Labels   []string
	Selected int
	Locked   bool
	Chosen   int
	Correct  int // index of the right option once revealed, -1 otherwise
}

// NewChoice builds a picker from parallel id and label slices.
func NewChoice(ids []int, labels []string) Choice {
	return Choice{IDs: ids, Labels: labels, Chosen: -1, Correct: -1}
}

// Update moves the cursor. Enter, or a digit key, locks the choice in.
func (c Choice) Update(msg tea.Msg) (Choice, bool) {
	if c.Locked {
		return c, false
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, false
	}
	switch key := kmsg.String(); key {
	case "up", "k":
		if c.Selected > 0 {
			c.Selected--
		}
	case "down", "j":
		if c.Selected < len(c.Labels)-1 {
			c.Selected++
		}
	case "enter":
		c.Locked, c.Chosen = true, c.Selected
		return c, true
	default:
		if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(c.Labels) {
			c.Selected = int(key[0] - '1')
			c.Locked, c.Chosen = true, c.Selected
			return c, true
		}
	}
	return c, false
}

// ChosenID returns the option id that was locked in.
func (c Choice) ChosenID() (int, bool) {
	if !c.Locked || c.Chosen < 0 || c.Chosen >= len(c.IDs) {
		return 0, false
	}
	return c.IDs[c.Chosen], true
}

// Reveal marks the option whose text equals answer as correct.
func (c *Choice) Reveal(answer string) {
	for i, l := range c.Labels {
		if l == answer {
			c.Correct = i
			return
		}
	}
}

// Unlock lets the learner pick again.
func (c *Choice) Unlock() {
	c.Locked, c.Chosen = false, -1
}

// View renders the option list.
func (c Choice) View() string {
	var b strings.Builder
	for i, label := range c.Labels {
		prefix := "  "
		if i == c.Selected && !c.Locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, label)
		switch {
		case c.Locked && i == c.Correct:
			line = theme.Correct.Render(line)
		case c.Locked && i == c.Chosen && c.Correct >= 0:
			line = theme.Incorrect.Render(line)
		case c.Locked && i == c.Chosen:
			line = theme.Selected.Render(line)
		case c.Locked:
			line = theme.Dim.Render(line)
		case i == c.Selected:
			line = theme.Selected.Render(line)
		default:
			line = theme.Body.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
