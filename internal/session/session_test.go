package session

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/store"
)

type memAttempts struct {
	mu       sync.Mutex
	attempts map[string]store.Attempt
	answers  map[string]store.Answer
}

func newMemAttempts() *memAttempts {
	return &memAttempts{attempts: map[string]store.Attempt{}, answers: map[string]store.Answer{}}
}

func answerKey(attemptID string, questionID int) string {
	return fmt.Sprintf("%s/%d", attemptID, questionID)
}

func (m *memAttempts) CreateAttempt(_ context.Context, a *store.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.Served = append([]int(nil), a.Served...)
	m.attempts[a.ID] = cp
	return nil
}

func (m *memAttempts) GetAttempt(_ context.Context, id string) (*store.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &a, nil
}

func (m *memAttempts) FindActive(_ context.Context, userID string, drillID int) (*store.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.attempts {
		if a.UserID == userID && a.DrillID == drillID && a.Status == store.StatusActive {
			return &a, nil
		}
	}
	return nil, nil
}

func (m *memAttempts) UpdateAttempt(ctx context.Context, a *store.Attempt) error {
	return m.CreateAttempt(ctx, a)
}

func (m *memAttempts) InsertAnswer(_ context.Context, ans store.Answer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := answerKey(ans.AttemptID, ans.QuestionID)
	if _, ok := m.answers[key]; ok {
		return false, nil
	}
	m.answers[key] = ans
	return true, nil
}

func (m *memAttempts) GetAnswer(_ context.Context, attemptID string, questionID int) (*store.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ans, ok := m.answers[answerKey(attemptID, questionID)]
	if !ok {
		return nil, nil
	}
	return &ans, nil
}

func (m *memAttempts) ListAnswers(_ context.Context, attemptID string) ([]store.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Answer
	for _, ans := range m.answers {
		if ans.AttemptID == attemptID {
			out = append(out, ans)
		}
	}
	return out, nil
}

func (m *memAttempts) AbandonStale(context.Context, time.Time) (int64, error) { return 0, nil }

func textQuestion(id int, answer string) store.Question {
	return store.Question{ID: id, Kind: store.KindText, Prompt: fmt.Sprintf("q%d", id), AnswerText: answer}
}

func newTestManager(t *testing.T) (*Manager, *memAttempts) {
	t.Helper()
	repo := newMemAttempts()
	m := NewManager(repo, nil)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return start }
	n := 0
	m.newID = func() string {
		n++
		return fmt.Sprintf("attempt-%d", n)
	}
	return m, repo
}

func openSession(t *testing.T, m *Manager, timed bool, served []int) *Session {
	t.Helper()
	ctx := context.Background()
	s, created, err := m.GetOrCreate(ctx, Spec{
		UserID: "u1", CourseID: 1, DrillID: 10, Mode: economy.Graded, IsTimed: timed, Target: len(served),
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, m.Serve(ctx, s, served))
	return s
}

func TestEvaluate(t *testing.T) {
	opt := func(id int) *int { return &id }
	sel := store.Question{ID: 1, Kind: store.KindSelect, Options: []store.Option{
		{ID: 11, Text: "Hola"}, {ID: 12, Text: "Adiós", Correct: true}, {ID: 13, Text: "Gracias"},
	}}

	tests := []struct {
		name string
		q    store.Question
		resp Response
		want bool
	}{
		{"correct option id", sel, Response{OptionID: opt(12)}, true},
		{"wrong option id", sel, Response{OptionID: opt(11)}, false},
		{"unknown option id", sel, Response{OptionID: opt(99)}, false},
		{"typed position", sel, Response{Text: "2"}, true},
		{"typed text", sel, Response{Text: " adiós "}, true},
		{"out of range position", sel, Response{Text: "7"}, false},
		{"empty select", sel, Response{}, false},
		{"text exact", textQuestion(2, "buenos días"), Response{Text: "buenos días"}, true},
		{"text case and spacing", textQuestion(2, "buenos días"), Response{Text: "  Buenos   DÍAS "}, true},
		{"text wrong", textQuestion(2, "buenos días"), Response{Text: "buenas noches"}, false},
		{"text empty", textQuestion(2, ""), Response{Text: ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.q, tt.resp))
		})
	}

	assert.Equal(t, "Adiós", CorrectAnswer(sel))
	assert.Equal(t, "sí", CorrectAnswer(textQuestion(3, "sí")))
}

func TestGetOrCreateResumesUntimed(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	first := openSession(t, m, false, []int{1, 2, 3})

	again, created, err := m.GetOrCreate(ctx, Spec{UserID: "u1", CourseID: 1, DrillID: 10, Mode: economy.Graded, Target: 3})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, []int{1, 2, 3}, again.Served)
}

func TestGetOrCreateRestartsTimedAndModeChange(t *testing.T) {
	tests := []struct {
		name  string
		timed bool
		mode  economy.Mode
	}{
		{"timed", true, economy.Graded},
		{"mode change", false, economy.Practice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, repo := newTestManager(t)
			ctx := context.Background()
			first := openSession(t, m, tt.timed, []int{1, 2})

			next, created, err := m.GetOrCreate(ctx, Spec{UserID: "u1", CourseID: 1, DrillID: 10, Mode: tt.mode, IsTimed: tt.timed, Target: 2})
			require.NoError(t, err)
			assert.True(t, created)
			assert.NotEqual(t, first.ID, next.ID)

			old, err := repo.GetAttempt(ctx, first.ID)
			require.NoError(t, err)
			assert.Equal(t, store.StatusAbandoned, old.Status)
		})
	}
}

func TestServeTrimsTarget(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	s, _, err := m.GetOrCreate(ctx, Spec{UserID: "u1", CourseID: 1, DrillID: 10, Mode: economy.Graded, Target: 10})
	require.NoError(t, err)

	require.NoError(t, m.Serve(ctx, s, []int{4, 5, 6}))
	assert.Equal(t, 3, s.Target)
}

func TestRecordAnswerIdempotent(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	s := openSession(t, m, false, []int{1, 2})
	q := textQuestion(1, "uno")

	rec, err := m.RecordAnswer(ctx, s, q, Response{Text: "uno"})
	require.NoError(t, err)
	assert.True(t, rec.Correct)
	assert.False(t, rec.Duplicate)
	assert.Equal(t, 1, s.CorrectCount)

	// A retry with a different response keeps the first result.
	rec, err = m.RecordAnswer(ctx, s, q, Response{Text: "dos"})
	require.NoError(t, err)
	assert.True(t, rec.Correct)
	assert.True(t, rec.Duplicate)
	assert.Equal(t, 1, s.CorrectCount)
}

func TestRecordAnswerWrongQuestion(t *testing.T) {
	m, _ := newTestManager(t)
	s := openSession(t, m, false, []int{1, 2})

	_, err := m.RecordAnswer(context.Background(), s, textQuestion(2, "dos"), Response{Text: "dos"})
	assert.ErrorIs(t, err, ErrWrongQuestion)
}

func TestAdvanceRequiresAnswer(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	s := openSession(t, m, false, []int{1, 2})

	c, err := m.Advance(ctx, s, 0)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Equal(t, 0, s.Position)
}

func TestAdvanceCompletesOnce(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	var fired []Completion
	m.OnComplete(func(_ context.Context, c Completion) error {
		fired = append(fired, c)
		return nil
	})

	s := openSession(t, m, false, []int{1, 2})
	_, err := m.RecordAnswer(ctx, s, textQuestion(1, "uno"), Response{Text: "uno"})
	require.NoError(t, err)
	c, err := m.Advance(ctx, s, 0)
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = m.RecordAnswer(ctx, s, textQuestion(2, "dos"), Response{Text: "tres"})
	require.NoError(t, err)
	c, err = m.Advance(ctx, s, 20*time.Second)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 2, c.Considered)
	assert.False(t, c.Expired)
	assert.Equal(t, StatusCompleted, s.Status)

	// Advancing past the end does nothing.
	c, err = m.Advance(ctx, s, 0)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.Len(t, fired, 1)
	assert.Equal(t, 1, fired[0].Session.CorrectCount)
}

func TestExpireCountsAnsweredCurrent(t *testing.T) {
	tests := []struct {
		name           string
		answerCurrent  bool
		wantConsidered int
	}{
		{"current unanswered", false, 1},
		{"current answered", true, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t)
			ctx := context.Background()
			s := openSession(t, m, true, []int{1, 2, 3})

			_, err := m.RecordAnswer(ctx, s, textQuestion(1, "uno"), Response{Text: "uno"})
			require.NoError(t, err)
			_, err = m.Advance(ctx, s, 0)
			require.NoError(t, err)
			if tt.answerCurrent {
				_, err = m.RecordAnswer(ctx, s, textQuestion(2, "dos"), Response{Text: "dos"})
				require.NoError(t, err)
			}

			c, err := m.Expire(ctx, s, 45*time.Second)
			require.NoError(t, err)
			assert.Equal(t, tt.wantConsidered, c.Considered)
			assert.True(t, c.Expired)
			assert.True(t, s.Expired)

			_, err = m.Expire(ctx, s, 0)
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestAbandonClosesSession(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()
	s := openSession(t, m, false, []int{1})

	require.NoError(t, m.Abandon(ctx, s))
	_, err := m.RecordAnswer(ctx, s, textQuestion(1, "uno"), Response{Text: "uno"})
	assert.ErrorIs(t, err, ErrClosed)

	a, err := repo.GetAttempt(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, store.StatusAbandoned, a.Status)
	assert.NotNil(t, a.FinishedAt)
}

func TestGetRoundTrip(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	s := openSession(t, m, true, []int{7, 8})

	got, err := m.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.Served, got.Served)
	assert.True(t, got.IsTimed)
	assert.Equal(t, economy.Graded, got.Mode)

	_, err = m.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCarriedWorkCountsTowardsCompletion(t *testing.T) {
	m, repo := newTestManager(t)
	ctx := context.Background()

	s, created, err := m.GetOrCreate(ctx, Spec{
		UserID: "u1", CourseID: 1, DrillID: 10, Mode: economy.Graded,
		Target: 1, Carried: 9, CarriedCorrect: 9,
	})
	require.NoError(t, err)
	require.True(t, created)
	require.NoError(t, m.Serve(ctx, s, []int{5}))
	assert.Equal(t, 9, s.CorrectCount)
	assert.Equal(t, 9, s.Considered())

	_, err = m.RecordAnswer(ctx, s, textQuestion(5, "cinco"), Response{Text: "seis"})
	require.NoError(t, err)
	c, err := m.Advance(ctx, s, 0)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, 10, c.Considered)
	assert.Equal(t, 9, c.Session.CorrectCount)
	assert.True(t, c.Finished())

	a, err := repo.GetAttempt(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, a.Carried)
}

func TestCompletionFinished(t *testing.T) {
	tests := []struct {
		name       string
		target     int
		carried    int
		considered int
		want       bool
	}{
		{"whole target", 2, 0, 2, true},
		{"expired early", 2, 0, 1, false},
		{"carried alone is not enough", 1, 1, 1, false},
		{"carried plus target", 1, 1, 2, true},
		{"empty", 0, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Completion{Session: &Session{Target: tt.target, Carried: tt.carried}, Considered: tt.considered}
			assert.Equal(t, tt.want, c.Finished())
		})
	}
}
