// Package screentest builds a real engine over a temporary store for screen
// tests.
package screentest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillz/internal/config"
	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/engine"
	"github.com/abhisek/drillz/internal/screen"
	"github.com/abhisek/drillz/internal/store"
)

// Answer is the accepted answer of every text question in the fixture.
const Answer = "hola"

// Fixture is a course with three drills: Greetings (two text questions),
// Colors (one select question, "rojo" is right) and Sprint (timed, one text
// question).
type Fixture struct {
	Session  screen.Session
	Engine   *engine.Service
	Store    *store.Store
	CourseID int
	Drills   []int
}

// Economy is the rule set of the fixture: three gems, two questions per
// drill.
var Economy = config.Economy{GemsLimit: 3, PointsToRefill: 10, PointsPerCorrect: 10, QuestionsPerDrill: 2, SecondsPerQuestion: 15}

// New opens the fixture for user "learner".
func New(t *testing.T) *Fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	text := func(p string) store.Question {
		return store.Question{Kind: store.KindText, Prompt: p, AnswerText: Answer, Explanation: "greeting"}
	}
	courseID, err := st.ContentRepo().Import(ctx, store.NewCourse{
		Course: store.Course{Title: "Spanish"},
		Units: []store.NewUnit{{
			Unit: store.Unit{Title: "Basics", Order: 1},
			Drills: []store.NewDrill{
				{Drill: store.Drill{Title: "Greetings", Number: 1}, Questions: []store.Question{text("hello"), text("hi")}},
				{Drill: store.Drill{Title: "Colors", Number: 2}, Questions: []store.Question{{
					Kind: store.KindSelect, Prompt: "red",
					Options: []store.Option{{Text: "azul"}, {Text: "rojo", Correct: true}},
				}}},
				{Drill: store.Drill{Title: "Sprint", Number: 3, IsTimed: true}, Questions: []store.Question{text("hey")}},
			},
		}},
	})
	require.NoError(t, err)
	units, err := st.ContentRepo().Outline(ctx, courseID)
	require.NoError(t, err)

	f := &Fixture{Store: st, CourseID: courseID}
	for _, d := range units[0].Drills {
		f.Drills = append(f.Drills, d.ID)
	}
	f.Engine = engine.New(engine.Options{Store: st, Rules: economy.NewRules(Economy)})
	f.Session = screen.Session{Ctx: ctx, Engine: f.Engine, UserID: "learner"}
	return f
}

// Select makes the fixture course the learner's active course.
func (f *Fixture) Select(t *testing.T) {
	t.Helper()
	_, err := f.Engine.SelectCourse(context.Background(), f.Session.UserID, f.CourseID)
	require.NoError(t, err)
}

// Play finishes a drill through the engine, answering every question
// right or every question wrong.
func (f *Fixture) Play(t *testing.T, drillID int, correct bool) {
	t.Helper()
	ctx, user := context.Background(), f.Session.UserID
	p, err := f.Engine.StartDrill(ctx, user, drillID)
	require.NoError(t, err)
	for _, q := range p.Questions {
		sub := engine.Submission{AttemptID: p.AttemptID, QuestionID: q.ID, Text: "nope"}
		if correct {
			sub.Text = Answer
		}
		if len(q.Options) > 0 {
			pick := q.Options[0].ID
			for _, o := range q.Options {
				if (o.Text == "rojo") == correct {
					pick = o.ID
				}
			}
			sub.Text, sub.OptionID = "", &pick
		}
		_, err := f.Engine.SubmitAnswer(ctx, user, sub)
		require.NoError(t, err)
		_, err = f.Engine.Advance(ctx, user, p.AttemptID, time.Second)
		require.NoError(t, err)
	}
}

// Key returns a key press for a printable rune.
func Key(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// Special returns a key press for a named key such as tea.KeyEnter.
func Special(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// Msgs runs cmd and flattens batches into the messages they produce. Only
// use it on commands that return immediately.
func Msgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Msgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// Find returns the first message of type T.
func Find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
