package drill

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/router"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/screen/screentest"
	"github.com/abhisek/drillz/internal/screens/summary"
	"github.com/abhisek/drillz/internal/timer"
)

func start(t *testing.T, f *screentest.Fixture, drillID int) *DrillScreen {
	t.Helper()
	s := New(f.Session, drillID)
	msg, ok := screentest.Find[playLoadedMsg](screentest.Msgs(s.Init()))
	require.True(t, ok)
	require.NoError(t, msg.Err)
	s.Update(msg)
	return s
}

func typeText(s *DrillScreen, text string) {
	for _, r := range text {
		s.Update(screentest.Key(r))
	}
}

// step runs cmd and feeds the screen the first message of type T.
func step[T any](t *testing.T, s *DrillScreen, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	msg, ok := screentest.Find[T](screentest.Msgs(cmd))
	require.True(t, ok, "expected %T", msg)
	_, next := s.Update(msg)
	return next
}

func TestTextDrillToSummary(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	s := start(t, f, f.Drills[0])

	assert.Equal(t, "Greetings", s.Title())
	assert.True(t, s.HandlesBack())
	assert.Contains(t, s.View(80, 20), "Question 1 of 2")

	typeText(s, screentest.Answer)
	_, cmd := s.Update(screentest.Special(tea.KeyEnter))
	next := step[answeredMsg](t, s, cmd)
	assert.Equal(t, phaseFeedback, s.phase)
	assert.Contains(t, s.View(80, 20), "Correct!")
	status, ok := screentest.Find[screen.StatusMsg](screentest.Msgs(next))
	require.True(t, ok)
	assert.Equal(t, 10, status.Status.Points)

	_, cmd = s.Update(screentest.Special(tea.KeyEnter))
	step[advancedMsg](t, s, cmd)
	assert.Equal(t, phaseQuestion, s.phase)
	assert.Contains(t, s.View(80, 20), "Question 2 of 2")

	typeText(s, "adios")
	_, cmd = s.Update(screentest.Special(tea.KeyEnter))
	step[answeredMsg](t, s, cmd)
	view := s.View(80, 20)
	assert.Contains(t, view, "Not quite.")
	assert.Contains(t, view, "Answer: "+screentest.Answer)
	assert.Equal(t, 2, s.result.GemsRemaining)

	_, cmd = s.Update(screentest.Special(tea.KeyEnter))
	finish := step[advancedMsg](t, s, cmd)
	replace, ok := screentest.Find[router.ReplaceScreenMsg](screentest.Msgs(finish))
	require.True(t, ok)
	sum, ok := replace.Screen.(*summary.SummaryScreen)
	require.True(t, ok)
	assert.Contains(t, sum.View(80, 20), "1 of 2 correct")
}

func TestSelectDrillRevealsAnswer(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	f.Play(t, f.Drills[0], true)
	s := start(t, f, f.Drills[1])

	assert.Contains(t, s.View(80, 20), "azul")
	_, cmd := s.Update(screentest.Key('1'))
	step[answeredMsg](t, s, cmd)

	require.NotNil(t, s.result)
	assert.False(t, s.result.Correct)
	assert.Equal(t, "rojo", s.result.CorrectAnswer)
	assert.Equal(t, 1, s.choice.Correct)
}

func TestEmptyEnterTextIgnored(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	s := start(t, f, f.Drills[0])
	_, cmd := s.Update(screentest.Special(tea.KeyEnter))
	assert.Nil(t, cmd)
	assert.Equal(t, phaseQuestion, s.phase)
}

func TestLockedDrillShowsError(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	s := New(f.Session, f.Drills[2])
	msg, ok := screentest.Find[playLoadedMsg](screentest.Msgs(s.Init()))
	require.True(t, ok)
	s.Update(msg)

	assert.ErrorIs(t, s.err, engine.ErrLocked)
	assert.False(t, s.HandlesBack())
	assert.Contains(t, s.View(80, 20), "This drill is locked.")
	_, cmd := s.Update(screentest.Special(tea.KeyEnter))
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestExitConfirmPausesTimer(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	f.Play(t, f.Drills[0], true)
	f.Play(t, f.Drills[1], true)
	s := start(t, f, f.Drills[2])
	require.NotNil(t, s.clock)
	total := s.clock.Total()
	assert.Equal(t, 15*time.Second, total)

	id := s.play.AttemptID
	_, cmd := s.Update(tickMsg{AttemptID: id})
	assert.NotNil(t, cmd)
	assert.Equal(t, total-time.Second, s.clock.Remaining())

	s.Update(screentest.Special(tea.KeyEscape))
	assert.True(t, s.confirmExit)
	assert.True(t, s.clock.Paused())
	s.Update(tickMsg{AttemptID: id})
	assert.Equal(t, total-time.Second, s.clock.Remaining())

	s.Update(screentest.Key('n'))
	assert.False(t, s.confirmExit)
	assert.False(t, s.clock.Paused())

	// Stale ticks of another attempt are dropped.
	_, cmd = s.Update(tickMsg{AttemptID: "other"})
	assert.Nil(t, cmd)

	s.Update(screentest.Special(tea.KeyEscape))
	_, cmd = s.Update(screentest.Key('y'))
	assert.True(t, s.clock.Stopped())
	_, cmd = s.Update(cmd())
	require.NotNil(t, cmd)
	assert.Equal(t, router.PopScreenMsg{}, cmd())
}

func TestCountdownExpiry(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	f.Play(t, f.Drills[0], true)
	f.Play(t, f.Drills[1], true)
	s := start(t, f, f.Drills[2])

	var cmd tea.Cmd
	for i := 0; i < 15; i++ {
		_, cmd = s.Update(tickMsg{AttemptID: s.play.AttemptID})
	}
	assert.True(t, s.clock.Expired())
	assert.Equal(t, phaseFinishing, s.phase)
	assert.Equal(t, timer.Critical, s.clock.Urgency())

	finish := step[expiredMsg](t, s, cmd)
	replace, ok := screentest.Find[router.ReplaceScreenMsg](screentest.Msgs(finish))
	require.True(t, ok)
	view := replace.Screen.View(80, 20)
	assert.Contains(t, view, "Time ran out before the drill was finished.")
}

func TestOutOfGemsModal(t *testing.T) {
	f := screentest.New(t)
	f.Select(t)
	f.Play(t, f.Drills[0], false) // three gems down to one
	f.Play(t, f.Drills[1], false) // and to zero

	s := start(t, f, f.Drills[2])
	assert.True(t, s.outOfGems)
	assert.True(t, s.clock.Paused())
	assert.Contains(t, s.View(80, 20), "out of gems")

	_, cmd := s.Update(screentest.Key('r'))
	step[refilledMsg](t, s, cmd)
	assert.True(t, s.outOfGems)
	assert.Contains(t, s.View(80, 20), "Not enough points to refill.")

	_, cmd = s.Update(screentest.Special(tea.KeyEscape))
	require.NotNil(t, cmd)
	_, ok := cmd().(abandonedMsg)
	assert.True(t, ok)
}
