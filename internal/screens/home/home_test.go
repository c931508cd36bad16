package home

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillz/internal/router"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/screen/screentest"
	"github.com/abhisek/drillz/internal/screens/drills"
	"github.com/abhisek/drillz/internal/screens/stats"
)

// feed runs cmd and hands every message it yields back to the screen,
// returning the messages the screen did not consume.
func feed(h *HomeScreen, cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	for _, msg := range screentest.Msgs(cmd) {
		switch msg.(type) {
		case loadedMsg, selectedMsg, refilledMsg, resetMsg, pickMsg, confirmResetMsg:
			_, next := h.Update(msg)
			out = append(out, feed(h, next)...)
		default:
			out = append(out, msg)
		}
	}
	return out
}

func press(h *HomeScreen, msg tea.KeyPressMsg) []tea.Msg {
	_, cmd := h.Update(msg)
	return feed(h, cmd)
}

func TestPickerWithoutActiveCourse(t *testing.T) {
	f := screentest.New(t)
	h := New(f.Session)
	feed(h, h.Init())

	assert.True(t, h.picking)
	assert.False(t, h.HandlesBack())
	assert.Equal(t, "Choose a course", h.Title())
	assert.Contains(t, h.View(80, 24), "Spanish")

	out := press(h, screentest.Special(tea.KeyEnter))
	assert.False(t, h.picking)
	require.NotNil(t, h.overview)
	assert.Equal(t, f.CourseID, h.overview.Course.ID)

	st, ok := screentest.Find[screen.StatusMsg](out)
	require.True(t, ok)
	assert.Equal(t, "Spanish", st.Status.Course)
	assert.Contains(t, h.View(80, 24), "Continue learning")
}

func TestOverviewMenu(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	h := New(f.Session)
	feed(h, h.Init())
	require.False(t, h.picking)

	// Gems start full, so refill is disabled and skipped by the cursor.
	assert.True(t, h.menu.Items[1].Disabled)
	assert.Equal(t, "gems are full", h.menu.Items[1].Detail)

	out := press(h, screentest.Special(tea.KeyEnter))
	push, ok := screentest.Find[router.PushScreenMsg](out)
	require.True(t, ok)
	_, ok = push.Screen.(*drills.DrillsScreen)
	assert.True(t, ok)

	press(h, screentest.Special(tea.KeyDown))
	assert.Equal(t, 2, h.menu.Selected)
	out = press(h, screentest.Special(tea.KeyEnter))
	push, ok = screentest.Find[router.PushScreenMsg](out)
	require.True(t, ok)
	_, ok = push.Screen.(*stats.StatsScreen)
	assert.True(t, ok)
}

func TestSwitchCourseAndBack(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	h := New(f.Session)
	feed(h, h.Init())

	press(h, screentest.Special(tea.KeyDown))
	press(h, screentest.Special(tea.KeyDown))
	press(h, screentest.Special(tea.KeyEnter))
	assert.True(t, h.picking)
	assert.True(t, h.HandlesBack())
	assert.Equal(t, "current", h.menu.Items[0].Detail)

	press(h, screentest.Special(tea.KeyEscape))
	assert.False(t, h.picking)
}

func TestResetReturnsToPicker(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	f.Play(t, f.Drills[0], true)
	h := New(f.Session)
	feed(h, h.Init())
	assert.Equal(t, 20, h.overview.Progress.Points)

	for range 3 {
		press(h, screentest.Special(tea.KeyDown))
	}
	press(h, screentest.Special(tea.KeyEnter))
	require.True(t, h.confirmReset)
	assert.Contains(t, h.View(80, 24), "Reset all progress in Spanish?")

	press(h, screentest.Key('y'))
	assert.False(t, h.confirmReset)
	assert.True(t, h.picking)
	assert.Equal(t, "Progress reset.", h.notice)
}
