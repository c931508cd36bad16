// Package screen defines the contract between the router and the terminal
// screens, and the engine surface those screens drive.
package screen

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/progression"
	"github.com/abhisek/drillz/internal/ui/layout"
)

// Screen is one page of the terminal app.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	// View renders the body only; the app draws header and footer.
	View(width, height int) string
	Title() string
}

// KeyHintProvider lets a screen replace the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Refresher is implemented by screens that reload their data when they
// become active again after the screen above them is popped.
type Refresher interface {
	Refresh() tea.Cmd
}

// Engine is the part of the learning engine the screens call.
type Engine interface {
	ListCourses(ctx context.Context) ([]engine.CourseView, error)
	SelectCourse(ctx context.Context, userID string, courseID int) (*engine.Overview, error)
	ActiveCourse(ctx context.Context, userID string) (int, error)
	Overview(ctx context.Context, userID string, courseID int) (*engine.Overview, error)
	DrillList(ctx context.Context, userID string, courseID int) ([]progression.UnitView, error)
	StartDrill(ctx context.Context, userID string, drillID int) (*engine.Play, error)
	SubmitAnswer(ctx context.Context, userID string, sub engine.Submission) (*engine.AnswerResult, error)
	Advance(ctx context.Context, userID, attemptID string, elapsed time.Duration) (*engine.AdvanceResult, error)
	Expire(ctx context.Context, userID, attemptID string, elapsed time.Duration) (*engine.Summary, error)
	Abandon(ctx context.Context, userID, attemptID string) error
	Refill(ctx context.Context, userID string, courseID int) (*engine.ProgressView, error)
	Reset(ctx context.Context, userID string, courseID int) error
	Leaderboard(ctx context.Context, userID string, courseID, limit int) (*engine.Standings, error)
	Stats(ctx context.Context, userID string, courseID int) (*engine.Stats, error)
}

var _ Engine = (*engine.Service)(nil)

// Session is what every screen needs to talk to the engine on behalf of
// the local learner.
type Session struct {
	Ctx    context.Context
	Engine Engine
	UserID string
}

// Context returns the session context, never nil.
func (s Session) Context() context.Context {
	if s.Ctx == nil {
		return context.Background()
	}
	return s.Ctx
}

// StatusMsg updates the balance shown in the header.
type StatusMsg struct {
	Status layout.Status
}

// StatusFromProgress builds a header status for a course.
func StatusFromProgress(course string, p engine.ProgressView) StatusMsg {
	return StatusMsg{Status: layout.Status{Course: course, Gems: p.Gems, Points: p.Points, Streak: p.CurrentStreak, Shown: true}}
}

// ErrorMsg reports a failed engine call to the screen that issued it.
type ErrorMsg struct {
	Err error
}

// BackHandler is implemented by screens that want to handle esc
// themselves, for example to confirm leaving a drill.
type BackHandler interface {
	HandlesBack() bool
}
