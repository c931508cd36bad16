package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drillz/internal/ui/theme"
)

// MenuItem is a single entry of a Menu. Detail is shown dimmed after the
// label.
type MenuItem struct {
	Label    string
	Detail   string
	Action   func() tea.Cmd
	Disabled bool
}

// Menu is a vertical list navigated with the arrow keys.
type Menu struct {
	Items    []MenuItem
	Selected int
}

// NewMenu returns a menu with the first enabled item selected.
func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items}
	for i, item := range items {
		if !item.Disabled {
			m.Selected = i
			break
		}
	}
	return m
}

func (m Menu) move(step int) Menu {
	for i := m.Selected + step; i >= 0 && i < len(m.Items); i += step {
		if !m.Items[i].Disabled {
			m.Selected = i
			break
		}
	}
	return m
}

// Update moves the selection and runs the chosen item's action on enter.
func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch kmsg.String() {
	case "up", "k":
		return m.move(-1), nil
	case "down", "j":
		return m.move(1), nil
	case "enter":
		if m.Selected < len(m.Items) {
			item := m.Items[m.Selected]
			if item.Action != nil && !item.Disabled {
				return m, item.Action()
			}
		}
	}
	return m, nil
}

// View renders the menu.
func (m Menu) View() string {
	var b strings.Builder
	for i, item := range m.Items {
		line := item.Label
		switch {
		case item.Disabled:
			line = theme.Locked.Render("    " + line)
		case i == m.Selected:
			line = theme.Selected.Render("  ▸ " + line)
		default:
			line = theme.Body.Render("    " + line)
		}
		if item.Detail != "" {
			line += "  " + theme.Dim.Render(item.Detail)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
