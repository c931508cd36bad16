package app

import (
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/screen/screentest"
	"github.com/abhisek/drillz/internal/ui/layout"
)

func TestMergeStatusKeepsCourseAndStreak(t *testing.T) {
	cur := layout.Status{Course: "Spanish", Gems: 3, Points: 10, Streak: 4, Shown: true}
	got := mergeStatus(cur, layout.Status{Gems: 2, Points: 20, Streak: -1, Shown: true})
	assert.Equal(t, layout.Status{Course: "Spanish", Gems: 2, Points: 20, Streak: 4, Shown: true}, got)
}

func TestStatusShownInHeader(t *testing.T) {
	f := screentest.New(t)
	m := newAppModel(f.Session)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	model, _ = model.Update(screen.StatusMsg{Status: layout.Status{Course: "Spanish", Gems: 3, Points: 40, Streak: 2, Shown: true}})

	view := model.(AppModel).render()
	assert.Contains(t, view, "drillz")
	assert.Contains(t, view, "● 40")
}

func TestCtrlCQuits(t *testing.T) {
	f := screentest.New(t)
	m := newAppModel(f.Session)
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestTooSmall(t *testing.T) {
	f := screentest.New(t)
	model, _ := newAppModel(f.Session).Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	assert.Contains(t, model.(AppModel).render(), "Terminal too small.")
}
