// Package session tracks the state of one drill attempt: which questions
// were served, which were answered and where the cursor is.
package session

import (
	"fmt"
	"time"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/store"
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = store.StatusActive
	StatusCompleted Status = store.StatusCompleted
	StatusAbandoned Status = store.StatusAbandoned
)

// Session is the in-memory form of an attempt.
type Session struct {
	ID           string
	UserID       string
	CourseID     int
	DrillID      int
	Mode         economy.Mode
	IsTimed      bool
	Target       int
	Served       []int
	Position     int
	CorrectCount int
	// Carried counts questions of the drill answered in earlier attempts.
	// Their correct answers are part of CorrectCount.
	Carried    int
	Status     Status
	Expired    bool
	TimeTaken  time.Duration
	StartedAt  time.Time
	FinishedAt *time.Time
}

// Current returns the question id at the cursor.
func (s *Session) Current() (int, bool) {
	if s.Position < 0 || s.Position >= len(s.Served) || s.Position >= s.Target {
		return 0, false
	}
	return s.Served[s.Position], true
}

// Remaining returns the served ids not yet passed by the cursor.
func (s *Session) Remaining() []int {
	if s.Position >= len(s.Served) {
		return nil
	}
	return append([]int(nil), s.Served[s.Position:]...)
}

// Done reports whether the cursor reached the target.
func (s *Session) Done() bool {
	return s.Position >= s.Target
}

// Considered is the number of questions that count towards the score.
func (s *Session) Considered() int {
	return s.Carried + s.Position
}

// Active reports whether the session still accepts answers.
func (s *Session) Active() bool {
	return s.Status == StatusActive
}

func fromRecord(a *store.Attempt) (*Session, error) {
	mode, err := economy.ParseMode(a.Mode)
	if err != nil {
		return nil, fmt.Errorf("attempt %s: %w", a.ID, err)
	}
	return &Session{
		ID:           a.ID,
		UserID:       a.UserID,
		CourseID:     a.CourseID,
		DrillID:      a.DrillID,
		Mode:         mode,
		IsTimed:      a.IsTimed,
		Target:       a.Target,
		Served:       a.Served,
		Position:     a.Position,
		CorrectCount: a.CorrectCount,
		Carried:      a.Carried,
		Status:       Status(a.Status),
		Expired:      a.Expired,
		TimeTaken:    time.Duration(a.TimeTakenMs) * time.Millisecond,
		StartedAt:    a.StartedAt,
		FinishedAt:   a.FinishedAt,
	}, nil
}

func (s *Session) record() *store.Attempt {
	return &store.Attempt{
		ID:           s.ID,
		UserID:       s.UserID,
		CourseID:     s.CourseID,
		DrillID:      s.DrillID,
		Mode:         s.Mode.String(),
		IsTimed:      s.IsTimed,
		Target:       s.Target,
		Served:       s.Served,
		Position:     s.Position,
		CorrectCount: s.CorrectCount,
		Carried:      s.Carried,
		Status:       string(s.Status),
		Expired:      s.Expired,
		TimeTakenMs:  s.TimeTaken.Milliseconds(),
		StartedAt:    s.StartedAt,
		FinishedAt:   s.FinishedAt,
	}
}
