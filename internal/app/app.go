// Package app hosts the terminal front end of drillz.
package app

import (
	"context"
	"errors"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drillz/internal/router"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/screens/home"
	"github.com/abhisek/drillz/internal/ui/layout"
)

// Options configures Run.
type Options struct {
	Engine screen.Engine
	UserID string
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status layout.Status
	width  int
	height int
}

func newAppModel(sess screen.Session) AppModel {
	return AppModel{router: router.New(home.New(sess))}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case screen.StatusMsg:
		m.status = mergeStatus(m.status, msg.Status)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if bh, ok := m.router.Active().(screen.BackHandler); ok && bh.HandlesBack() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Pop
			}
			return m, nil
		}
	}

	return m, m.router.Update(msg)
}

// mergeStatus keeps the shown course when next names none and the shown
// streak when next carries a negative one.
func mergeStatus(cur, next layout.Status) layout.Status {
	if next.Course == "" {
		next.Course = cur.Course
	}
	if next.Streak < 0 {
		next.Streak = cur.Streak
	}
	return next
}

func (m AppModel) hints() []layout.KeyHint {
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}, {Key: "Ctrl+C", Description: "Quit"}}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	header := layout.RenderHeader(m.router.Active().Title(), m.status, m.width)
	footer := layout.RenderFooter(m.hints(), m.width)
	w, h := layout.ContentSize(header, footer, m.width, m.height)
	return layout.RenderFrame(header, m.router.View(w, h), footer, m.width, m.height)
}

// Run starts the terminal app for one learner and blocks until it quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Engine == nil {
		return errors.New("app: engine is required")
	}
	if opts.UserID == "" {
		return errors.New("app: user id is required")
	}
	sess := screen.Session{Ctx: ctx, Engine: opts.Engine, UserID: opts.UserID}
	_, err := tea.NewProgram(newAppModel(sess), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
