package maintenance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/store"
)

func setup(t *testing.T) (*store.Store, int, int) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	courseID, err := st.ContentRepo().Import(ctx, store.NewCourse{
		Course: store.Course{Title: "Spanish"},
		Units: []store.NewUnit{{
			Unit:   store.Unit{Title: "Basics"},
			Drills: []store.NewDrill{{Drill: store.Drill{Title: "Greetings", Number: 1}}},
		}},
	})
	require.NoError(t, err)
	units, err := st.ContentRepo().Outline(ctx, courseID)
	require.NoError(t, err)
	return st, courseID, units[0].Drills[0].ID
}

func TestSweepStreaks(t *testing.T) {
	st, courseID, _ := setup(t)
	ctx := context.Background()
	progress := st.ProgressRepo()

	rows := map[string]string{
		"today":     "2026-05-10",
		"yesterday": "2026-05-09",
		"lapsed":    "2026-05-08",
	}
	for user, day := range rows {
		require.NoError(t, progress.CreateProgress(ctx, store.Progress{
			UserID: user, CourseID: courseID, Gems: 5, CurrentStreak: 4, LongestStreak: 6, LastActivityDate: day,
		}))
	}

	s := NewScheduler(progress, st.AttemptRepo(), Config{StreakSweep: "5 0 * * *", AttemptTTL: time.Hour}, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, 5, 10, 0, 5, 0, 0, time.UTC) }

	n, err := s.SweepStreaks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	want := map[string]int{"today": 4, "yesterday": 4, "lapsed": 0}
	for user, streak := range want {
		p, err := progress.GetProgress(ctx, user, courseID)
		require.NoError(t, err)
		assert.Equal(t, streak, p.CurrentStreak, user)
		assert.Equal(t, 6, p.LongestStreak, user)
	}
}

func TestAbandonStale(t *testing.T) {
	st, courseID, drillID := setup(t)
	ctx := context.Background()
	attempts := st.AttemptRepo()
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	for id, started := range map[string]time.Time{"old": now.Add(-48 * time.Hour), "fresh": now.Add(-time.Hour)} {
		require.NoError(t, attempts.CreateAttempt(ctx, &store.Attempt{
			ID: id, UserID: "u1", CourseID: courseID, DrillID: drillID, Mode: "graded",
			Target: 1, Served: []int{}, Status: store.StatusActive, StartedAt: started,
		}))
	}

	s := NewScheduler(st.ProgressRepo(), attempts, Config{StreakSweep: "@daily", AttemptTTL: 24 * time.Hour}, zap.NewNop())
	s.now = func() time.Time { return now }

	n, err := s.AbandonStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	old, err := attempts.GetAttempt(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, store.StatusAbandoned, old.Status)
	fresh, err := attempts.GetAttempt(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, store.StatusActive, fresh.Status)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	st, _, _ := setup(t)
	s := NewScheduler(st.ProgressRepo(), st.AttemptRepo(), Config{StreakSweep: "not a schedule"}, zap.NewNop())
	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	st, _, _ := setup(t)
	s := NewScheduler(st.ProgressRepo(), st.AttemptRepo(), Config{StreakSweep: "5 0 * * *"}, zap.NewNop())
	require.NoError(t, s.Start())
	assert.Error(t, s.Start())
	s.Stop()
	s.Stop()
}
