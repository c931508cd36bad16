// Package drill is the question-by-question play screen.
package drill

import (
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/router"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/screens/summary"
	"github.com/abhisek/drillz/internal/store"
	"github.com/abhisek/drillz/internal/timer"
	"github.com/abhisek/drillz/internal/ui/components"
	"github.com/abhisek/drillz/internal/ui/layout"
)

type phase int

const (
	phaseLoading phase = iota
	phaseEmpty
	phaseQuestion
	phaseSubmitting
	phaseFeedback
	phaseFinishing
)

// DrillScreen plays one attempt of a drill.
type DrillScreen struct {
	sess    screen.Session
	drillID int
	play    *engine.Play
	idx     int // index into play.Questions

	choice components.Choice
	input  components.AnswerInput
	result *engine.AnswerResult

	clock   *timer.Controller
	started time.Time
	now     func() time.Time

	phase       phase
	confirmExit bool
	outOfGems   bool
	gemsPending bool
	notice      string
	err         error
}

var _ screen.Screen = (*DrillScreen)(nil)
var _ screen.KeyHintProvider = (*DrillScreen)(nil)
var _ screen.BackHandler = (*DrillScreen)(nil)

// New returns a screen that starts or resumes drillID.
func New(sess screen.Session, drillID int) *DrillScreen {
	return &DrillScreen{sess: sess, drillID: drillID, now: time.Now}
}

func (s *DrillScreen) Init() tea.Cmd {
	return s.load()
}

func (s *DrillScreen) Title() string {
	if s.play != nil {
		return s.play.Title
	}
	return "Drill"
}

// HandlesBack is true while an attempt is on screen so esc asks before
// leaving.
func (s *DrillScreen) HandlesBack() bool {
	return s.err == nil && s.phase >= phaseQuestion
}

func (s *DrillScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirmExit:
		return []layout.KeyHint{{Key: "Y", Description: "Leave drill"}, {Key: "N", Description: "Keep going"}}
	case s.outOfGems:
		return []layout.KeyHint{{Key: "R", Description: "Refill gems"}, {Key: "Esc", Description: "Leave"}}
	case s.err != nil || s.phase == phaseEmpty:
		return []layout.KeyHint{{Key: "Enter", Description: "Back"}}
	case s.phase == phaseFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Continue"}}
	case s.phase == phaseQuestion && s.current() != nil && s.current().Kind == store.KindSelect:
		return []layout.KeyHint{{Key: "↑↓", Description: "Choose"}, {Key: "1-4/Enter", Description: "Answer"}, {Key: "Esc", Description: "Leave"}}
	}
	return []layout.KeyHint{{Key: "Enter", Description: "Submit"}, {Key: "Esc", Description: "Leave"}}
}

func (s *DrillScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case playLoadedMsg:
		return s.handleLoaded(msg)
	case answeredMsg:
		return s.handleAnswered(msg)
	case advancedMsg:
		return s.handleAdvanced(msg)
	case expiredMsg:
		return s.handleExpired(msg)
	case refilledMsg:
		return s.handleRefilled(msg)
	case abandonedMsg:
		return s, router.Pop
	case tickMsg:
		return s.handleTick(msg)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *DrillScreen) load() tea.Cmd {
	sess, id := s.sess, s.drillID
	return func() tea.Msg {
		p, err := sess.Engine.StartDrill(sess.Context(), sess.UserID, id)
		return playLoadedMsg{Play: p, Err: err}
	}
}

func (s *DrillScreen) current() *engine.QuestionView {
	if s.play == nil || s.idx >= len(s.play.Questions) {
		return nil
	}
	return &s.play.Questions[s.idx]
}

func (s *DrillScreen) elapsed() time.Duration {
	if s.clock != nil {
		return s.clock.Elapsed()
	}
	return s.now().Sub(s.started)
}

func (s *DrillScreen) graded() bool {
	return s.play != nil && s.play.Mode == economy.Graded.String()
}

func (s *DrillScreen) pause(r timer.Reason) {
	if s.clock != nil {
		s.clock.Pause(r)
	}
}

func (s *DrillScreen) resume(r timer.Reason) {
	if s.clock != nil {
		s.clock.Resume(r)
	}
}

func (s *DrillScreen) dispose() {
	if s.clock != nil {
		s.clock.Stop()
	}
}

func (s *DrillScreen) nextScreen(drillID int) screen.Screen {
	return New(s.sess, drillID)
}

func (s *DrillScreen) setupQuestion() {
	s.result = nil
	s.phase = phaseQuestion
	q := s.current()
	if q == nil {
		return
	}
	if q.Kind == store.KindSelect {
		ids := make([]int, len(q.Options))
		labels := make([]string, len(q.Options))
		for i, o := range q.Options {
			ids[i], labels[i] = o.ID, o.Text
		}
		s.choice = components.NewChoice(ids, labels)
		return
	}
	s.input = components.NewAnswerInput("Type your answer…", 120)
}

func (s *DrillScreen) showOutOfGems() {
	if !s.outOfGems {
		s.outOfGems = true
		s.pause(timer.ReasonOutOfGems)
	}
}

func (s *DrillScreen) handleLoaded(msg playLoadedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.err = msg.Err
		return s, nil
	}
	s.play = msg.Play
	if s.play.Empty || len(s.play.Questions) == 0 {
		s.phase = phaseEmpty
		return s, nil
	}
	s.started = s.now()
	s.setupQuestion()

	status := s.status(s.play.Gems, s.play.Points, -1)
	if !s.play.IsTimed {
		if s.graded() && s.play.Gems == 0 && !s.play.Subscribed {
			s.showOutOfGems()
		}
		return s, status
	}
	s.clock = timer.New(s.play.TimeLimit, nil)
	if s.graded() && s.play.Gems == 0 && !s.play.Subscribed {
		s.showOutOfGems()
	}
	return s, tea.Batch(status, s.tick())
}

func (s *DrillScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.err != nil || s.phase == phaseEmpty {
		if key == "enter" || key == "esc" || key == "q" {
			return s, router.Pop
		}
		return s, nil
	}

	if s.confirmExit {
		switch key {
		case "y":
			return s.leave()
		case "n", "esc":
			s.confirmExit = false
			s.resume(timer.ReasonExitConfirm)
		}
		return s, nil
	}

	if s.outOfGems {
		switch key {
		case "r":
			s.notice = ""
			return s, s.refill()
		case "esc", "q":
			return s.leave()
		}
		return s, nil
	}

	switch s.phase {
	case phaseQuestion:
		if key == "esc" {
			s.confirmExit = true
			s.pause(timer.ReasonExitConfirm)
			return s, nil
		}
		q := s.current()
		if q == nil {
			return s, nil
		}
		if q.Kind == store.KindSelect {
			var picked bool
			s.choice, picked = s.choice.Update(msg)
			if picked {
				id, _ := s.choice.ChosenID()
				return s.submit(engine.Submission{OptionID: &id})
			}
			return s, nil
		}
		if key == "enter" {
			if s.input.Value() == "" {
				return s, nil
			}
			return s.submit(engine.Submission{Text: s.input.Value()})
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd

	case phaseFeedback:
		switch key {
		case "enter", "space", " ":
			s.phase = phaseSubmitting
			return s, s.advance()
		case "esc":
			s.confirmExit = true
			s.pause(timer.ReasonExitConfirm)
		}
	}
	return s, nil
}

// leave closes the screen. Timed attempts restart on the next visit, so
// they are abandoned; untimed attempts stay open to resume.
func (s *DrillScreen) leave() (screen.Screen, tea.Cmd) {
	s.confirmExit = false
	s.dispose()
	if s.play != nil && s.play.IsTimed && s.play.AttemptID != "" {
		return s, s.abandon()
	}
	return s, router.Pop
}

func (s *DrillScreen) submit(sub engine.Submission) (screen.Screen, tea.Cmd) {
	q := s.current()
	sub.AttemptID = s.play.AttemptID
	sub.QuestionID = q.ID
	s.phase = phaseSubmitting
	s.notice = ""
	s.pause(timer.ReasonSubmitting)

	sess := s.sess
	return s, func() tea.Msg {
		res, err := sess.Engine.SubmitAnswer(sess.Context(), sess.UserID, sub)
		return answeredMsg{Result: res, Err: err}
	}
}

func (s *DrillScreen) handleAnswered(msg answeredMsg) (screen.Screen, tea.Cmd) {
	s.resume(timer.ReasonSubmitting)
	if msg.Err != nil {
		s.phase = phaseQuestion
		s.choice.Unlock()
		s.notice = describe(msg.Err)
		return s, nil
	}
	res := msg.Result
	if res.Status == engine.StatusBlocked {
		s.phase = phaseQuestion
		s.choice.Unlock()
		s.showOutOfGems()
		return s, s.status(res.GemsRemaining, res.PointsTotal, res.Streak)
	}

	s.result = res
	s.phase = phaseFeedback
	if s.current().Kind == store.KindSelect {
		s.choice.Reveal(res.CorrectAnswer)
	} else {
		s.input.Mark(res.Correct)
	}
	s.gemsPending = res.OutOfGems
	return s, s.status(res.GemsRemaining, res.PointsTotal, res.Streak)
}

func (s *DrillScreen) advance() tea.Cmd {
	sess, id, elapsed := s.sess, s.play.AttemptID, s.elapsed()
	return func() tea.Msg {
		res, err := sess.Engine.Advance(sess.Context(), sess.UserID, id, elapsed)
		return advancedMsg{Result: res, Err: err}
	}
}

func (s *DrillScreen) handleAdvanced(msg advancedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.phase = phaseFeedback
		s.notice = describe(msg.Err)
		return s, nil
	}
	res := msg.Result
	if res.Done {
		s.dispose()
		if res.Summary == nil {
			return s, router.Pop
		}
		return s, s.finish(res.Summary)
	}
	s.idx++
	s.setupQuestion()
	if s.gemsPending {
		s.gemsPending = false
		s.showOutOfGems()
	}
	return s, nil
}

func (s *DrillScreen) finish(sum *engine.Summary) tea.Cmd {
	s.phase = phaseFinishing
	return tea.Batch(
		s.status(sum.Gems, sum.Points, sum.Streak),
		router.Replace(summary.New(s.play.Title, sum, s.nextScreen)),
	)
}

func (s *DrillScreen) tick() tea.Cmd {
	id := s.play.AttemptID
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{AttemptID: id}
	})
}

func (s *DrillScreen) handleTick(msg tickMsg) (screen.Screen, tea.Cmd) {
	if s.clock == nil || s.play == nil || msg.AttemptID != s.play.AttemptID || s.clock.Stopped() {
		return s, nil
	}
	if !s.clock.Tick(time.Second) {
		return s, s.tick()
	}
	s.phase = phaseFinishing
	s.confirmExit = false
	sess, id, elapsed := s.sess, s.play.AttemptID, s.clock.Elapsed()
	return s, func() tea.Msg {
		sum, err := sess.Engine.Expire(sess.Context(), sess.UserID, id, elapsed)
		return expiredMsg{Summary: sum, Err: err}
	}
}

func (s *DrillScreen) handleExpired(msg expiredMsg) (screen.Screen, tea.Cmd) {
	s.dispose()
	if msg.Err != nil {
		if errors.Is(msg.Err, engine.ErrConflict) {
			// Completed in the same second; the advance path shows the summary.
			return s, nil
		}
		s.err = msg.Err
		return s, nil
	}
	return s, s.finish(msg.Summary)
}

func (s *DrillScreen) refill() tea.Cmd {
	sess, course := s.sess, s.play.CourseID
	return func() tea.Msg {
		p, err := sess.Engine.Refill(sess.Context(), sess.UserID, course)
		return refilledMsg{Progress: p, Err: err}
	}
}

func (s *DrillScreen) handleRefilled(msg refilledMsg) (screen.Screen, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, economy.ErrAlreadyFull):
		s.outOfGems = false
		s.resume(timer.ReasonOutOfGems)
		return s, nil
	case msg.Err != nil:
		s.notice = describe(msg.Err)
		return s, nil
	}
	s.outOfGems = false
	s.resume(timer.ReasonOutOfGems)
	s.notice = "Gems refilled."
	return s, s.status(msg.Progress.Gems, msg.Progress.Points, msg.Progress.CurrentStreak)
}

func (s *DrillScreen) abandon() tea.Cmd {
	sess, id := s.sess, s.play.AttemptID
	return func() tea.Msg {
		// The attempt is dropped either way; a failed abandon is swept
		// later as stale.
		_ = sess.Engine.Abandon(sess.Context(), sess.UserID, id)
		return abandonedMsg{}
	}
}

// status updates the header. A negative streak keeps the shown one.
func (s *DrillScreen) status(gems, points, streak int) tea.Cmd {
	return func() tea.Msg {
		return screen.StatusMsg{Status: layout.Status{Gems: gems, Points: points, Streak: streak, Shown: true}}
	}
}

func describe(err error) string {
	switch {
	case errors.Is(err, economy.ErrInsufficientPoints):
		return "Not enough points to refill."
	case errors.Is(err, engine.ErrConflict):
		return "This question was already handled. Try again."
	case errors.Is(err, engine.ErrLocked):
		return "This drill is locked."
	case errors.Is(err, engine.ErrNotFound):
		return "Drill not found."
	case engine.IsRetryable(err):
		return "Could not save. Try again."
	default:
		return err.Error()
	}
}
