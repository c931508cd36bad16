package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/store"
)

var (
	// ErrClosed means the session no longer accepts answers.
	ErrClosed = errors.New("session closed")
	// ErrWrongQuestion means the answer is not for the question at the cursor.
	ErrWrongQuestion = errors.New("question is not at the cursor")
)

// Spec describes the session to open.
type Spec struct {
	UserID   string
	CourseID int
	DrillID  int
	Mode     economy.Mode
	IsTimed  bool
	Target   int

	// Carried and CarriedCorrect seed a new session with the questions of
	// the drill finished in earlier attempts. Target excludes them.
	Carried        int
	CarriedCorrect int
}

// Recorded is the outcome of recording an answer.
type Recorded struct {
	Correct bool
	// Duplicate is set when the question had already been answered; the
	// stored result is returned and nothing is counted again.
	Duplicate bool
}

// Completion is emitted once when a session finishes.
type Completion struct {
	Session    *Session
	Considered int
	Expired    bool
}

// Finished reports whether the session answered its whole target.
func (c Completion) Finished() bool {
	s := c.Session
	return s.Target > 0 && c.Considered-s.Carried >= s.Target
}

// CompletionHandler reacts to a finished session. It runs after the
// session row is written; a manager from Bind keeps both in one transaction.
type CompletionHandler func(ctx context.Context, c Completion) error

// Manager opens, advances and closes sessions on top of the attempt store.
type Manager struct {
	repo     store.AttemptRepo
	events   store.EventRepo
	handlers []CompletionHandler
	score    func(correct, considered int) float64
	now      func() time.Time
	newID    func() string
}

// NewManager returns a manager. events may be nil.
func NewManager(repo store.AttemptRepo, events store.EventRepo) *Manager {
	return &Manager{
		repo:   repo,
		events: events,
		now:    time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// Bind returns a copy of m working on repo and events, typically the
// repositories of one transaction. Completion handlers are not copied.
func (m *Manager) Bind(repo store.AttemptRepo, events store.EventRepo) *Manager {
	c := *m
	c.repo, c.events, c.handlers = repo, events, nil
	return &c
}

// OnComplete registers h to run, in registration order, whenever a session
// completes or expires.
func (m *Manager) OnComplete(h CompletionHandler) {
	m.handlers = append(m.handlers, h)
}

// ScoreWith sets the function used to score finished sessions in the
// event log.
func (m *Manager) ScoreWith(f func(correct, considered int) float64) {
	m.score = f
}

// Prior returns the stored result for a question already answered in s.
func (m *Manager) Prior(ctx context.Context, s *Session, questionID int) (Recorded, bool, error) {
	ans, err := m.repo.GetAnswer(ctx, s.ID, questionID)
	if err != nil {
		return Recorded{}, false, fmt.Errorf("load answer: %w", err)
	}
	if ans == nil {
		return Recorded{}, false, nil
	}
	return Recorded{Correct: ans.Correct, Duplicate: true}, true, nil
}

// Get loads a session by id.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	a, err := m.repo.GetAttempt(ctx, id)
	if err != nil {
		return nil, err
	}
	return fromRecord(a)
}

// GetOrCreate returns the user's active session on the drill, or opens a
// new one. A timed session, or one in another mode, is abandoned and
// replaced, so timed drills always restart from zero. created reports
// whether a new session was opened.
func (m *Manager) GetOrCreate(ctx context.Context, spec Spec) (s *Session, created bool, err error) {
	a, err := m.repo.FindActive(ctx, spec.UserID, spec.DrillID)
	if err != nil {
		return nil, false, fmt.Errorf("find active attempt: %w", err)
	}
	if a != nil {
		existing, err := fromRecord(a)
		if err != nil {
			return nil, false, err
		}
		if !existing.IsTimed && existing.Mode == spec.Mode {
			return existing, false, nil
		}
		if err := m.Abandon(ctx, existing); err != nil {
			return nil, false, err
		}
	}

	s = &Session{
		ID:           m.newID(),
		UserID:       spec.UserID,
		CourseID:     spec.CourseID,
		DrillID:      spec.DrillID,
		Mode:         spec.Mode,
		IsTimed:      spec.IsTimed,
		Target:       spec.Target,
		Served:       []int{},
		Carried:      spec.Carried,
		CorrectCount: spec.CarriedCorrect,
		Status:       StatusActive,
		StartedAt:    m.now().UTC(),
	}
	if err := m.repo.CreateAttempt(ctx, s.record()); err != nil {
		return nil, false, fmt.Errorf("create attempt: %w", err)
	}
	m.logEvent(ctx, s, "start", 0)
	return s, true, nil
}

// Serve replaces the served questions past the cursor with ids and trims
// the target when the drill cannot fill it.
func (m *Manager) Serve(ctx context.Context, s *Session, ids []int) error {
	served := append(append([]int{}, s.Served[:min(s.Position, len(s.Served))]...), ids...)
	s.Served = served
	if len(served) < s.Target {
		s.Target = len(served)
	}
	if err := m.repo.UpdateAttempt(ctx, s.record()); err != nil {
		return fmt.Errorf("save served questions: %w", err)
	}
	return nil
}

// RecordAnswer evaluates resp against q and stores it. Recording the same
// question twice returns the first result with Duplicate set.
func (m *Manager) RecordAnswer(ctx context.Context, s *Session, q store.Question, resp Response) (Recorded, error) {
	if rec, ok, err := m.Prior(ctx, s, q.ID); err != nil || ok {
		return rec, err
	}
	if !s.Active() {
		return Recorded{}, ErrClosed
	}
	if cur, ok := s.Current(); !ok || cur != q.ID {
		return Recorded{}, ErrWrongQuestion
	}

	correct := Evaluate(q, resp)
	inserted, err := m.repo.InsertAnswer(ctx, store.Answer{
		AttemptID:  s.ID,
		QuestionID: q.ID,
		OptionID:   resp.OptionID,
		TextAnswer: resp.Text,
		Correct:    correct,
		AnsweredAt: m.now().UTC(),
	})
	if err != nil {
		return Recorded{}, err
	}
	if !inserted {
		// Lost a race with a concurrent submission of the same question.
		prior, err := m.repo.GetAnswer(ctx, s.ID, q.ID)
		if err != nil {
			return Recorded{}, fmt.Errorf("load answer: %w", err)
		}
		if prior != nil {
			correct = prior.Correct
		}
		return Recorded{Correct: correct, Duplicate: true}, nil
	}

	if correct {
		s.CorrectCount++
		if err := m.repo.UpdateAttempt(ctx, s.record()); err != nil {
			return Recorded{}, fmt.Errorf("save correct count: %w", err)
		}
	}
	return Recorded{Correct: correct}, nil
}

// Advance moves the cursor past an answered question. It is a no-op at the
// end, on a closed session or when the question at the cursor has not been
// answered. elapsed is the active time spent so far; zero means wall time
// since the start. When the cursor reaches the target the session
// completes and the returned Completion is non-nil.
func (m *Manager) Advance(ctx context.Context, s *Session, elapsed time.Duration) (*Completion, error) {
	if !s.Active() || s.Done() {
		return nil, nil
	}
	cur, ok := s.Current()
	if !ok {
		return nil, nil
	}
	ans, err := m.repo.GetAnswer(ctx, s.ID, cur)
	if err != nil {
		return nil, fmt.Errorf("load answer: %w", err)
	}
	if ans == nil {
		return nil, nil
	}

	s.Position++
	if !s.Done() {
		if err := m.repo.UpdateAttempt(ctx, s.record()); err != nil {
			return nil, fmt.Errorf("advance attempt: %w", err)
		}
		return nil, nil
	}
	return m.finish(ctx, s, s.Considered(), false, elapsed)
}

// Expire force-finishes a timed session with whatever was answered.
func (m *Manager) Expire(ctx context.Context, s *Session, elapsed time.Duration) (*Completion, error) {
	if !s.Active() {
		return nil, ErrClosed
	}
	if cur, ok := s.Current(); ok {
		ans, err := m.repo.GetAnswer(ctx, s.ID, cur)
		if err != nil {
			return nil, fmt.Errorf("load answer: %w", err)
		}
		if ans != nil {
			s.Position++
		}
	}
	return m.finish(ctx, s, s.Considered(), true, elapsed)
}

// Abandon closes a session without completion.
func (m *Manager) Abandon(ctx context.Context, s *Session) error {
	if !s.Active() {
		return nil
	}
	now := m.now().UTC()
	s.Status = StatusAbandoned
	s.FinishedAt = &now
	if err := m.repo.UpdateAttempt(ctx, s.record()); err != nil {
		return fmt.Errorf("abandon attempt: %w", err)
	}
	m.logEvent(ctx, s, "abandon", s.Considered())
	return nil
}

func (m *Manager) finish(ctx context.Context, s *Session, considered int, expired bool, elapsed time.Duration) (*Completion, error) {
	now := m.now().UTC()
	wall := now.Sub(s.StartedAt)
	if elapsed <= 0 || elapsed > wall {
		elapsed = wall
	}
	s.Status = StatusCompleted
	s.Expired = expired
	s.TimeTaken = elapsed
	s.FinishedAt = &now
	if err := m.repo.UpdateAttempt(ctx, s.record()); err != nil {
		return nil, fmt.Errorf("complete attempt: %w", err)
	}

	action := "complete"
	if expired {
		action = "expire"
	}
	m.logEvent(ctx, s, action, considered)

	c := &Completion{Session: s, Considered: considered, Expired: expired}
	for _, h := range m.handlers {
		if err := h(ctx, *c); err != nil {
			return c, fmt.Errorf("completion handler: %w", err)
		}
	}
	return c, nil
}

// logEvent appends a session event; the event log is best effort.
func (m *Manager) logEvent(ctx context.Context, s *Session, action string, considered int) {
	if m.events == nil {
		return
	}
	ev := store.SessionEventData{
		UserID:       s.UserID,
		AttemptID:    s.ID,
		DrillID:      s.DrillID,
		Action:       action,
		CorrectCount: s.CorrectCount,
		Considered:   considered,
	}
	if m.score != nil && (action == "complete" || action == "expire") {
		ev.Score = m.score(s.CorrectCount, considered)
	}
	_ = m.events.AppendSessionEvent(ctx, ev)
}
