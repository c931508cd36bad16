package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type progressRepo struct {
	db querier
}

func (r *progressRepo) EnsureProfile(ctx context.Context, userID, displayName string) (*Profile, error) {
	query, args := builder().Insert(ProfilesTable.Name).
		Columns("user_id", "display_name", "created_at").
		Values(userID, displayName, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("user_id"), entsql.DoNothing()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return r.GetProfile(ctx, userID)
}

func (r *progressRepo) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	b := builder()
	query, args := b.Select("user_id", "display_name", "active_course_id", "created_at").
		From(b.Table(ProfilesTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Query()

	var (
		p      Profile
		active sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.UserID, &p.DisplayName, &active, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	p.ActiveCourseID = nullIntPtr(active)
	return &p, nil
}

func (r *progressRepo) SetActiveCourse(ctx context.Context, userID string, courseID *int) error {
	u := builder().Update(ProfilesTable.Name).Where(entsql.EQ("user_id", userID))
	if courseID == nil {
		u.SetNull("active_course_id")
	} else {
		u.Set("active_course_id", *courseID)
	}
	query, args := u.Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("set active course: %w", err)
	}
	return nil
}

var progressSelect = []string{
	"user_id", "course_id", "current_drill_id", "questions_completed", "gems", "points",
	"current_streak", "longest_streak", "last_activity_date", "updated_at", "questions_correct",
}

func scanProgress(sc interface{ Scan(...any) error }) (Progress, error) {
	var (
		p       Progress
		current sql.NullInt64
	)
	err := sc.Scan(&p.UserID, &p.CourseID, &current, &p.QuestionsCompleted, &p.Gems, &p.Points,
		&p.CurrentStreak, &p.LongestStreak, &p.LastActivityDate, &p.UpdatedAt, &p.QuestionsCorrect)
	p.CurrentDrillID = nullIntPtr(current)
	return p, err
}

func (r *progressRepo) GetProgress(ctx context.Context, userID string, courseID int) (*Progress, error) {
	b := builder()
	query, args := b.Select(progressSelect...).
		From(b.Table(ProgressTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID))).
		Query()

	p, err := scanProgress(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return &p, nil
}

func (r *progressRepo) CreateProgress(ctx context.Context, p Progress) error {
	query, args := builder().Insert(ProgressTable.Name).
		Columns(progressSelect...).
		Values(p.UserID, p.CourseID, intPtrArg(p.CurrentDrillID), p.QuestionsCompleted, p.Gems, p.Points,
			p.CurrentStreak, p.LongestStreak, p.LastActivityDate, time.Now().UTC(), p.QuestionsCorrect).
		OnConflict(entsql.ConflictColumns("user_id", "course_id"), entsql.DoNothing()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert progress: %w", err)
	}
	return nil
}

func (r *progressRepo) SwapProgress(ctx context.Context, prev, next Progress) (bool, error) {
	current := entsql.IsNull("current_drill_id")
	if prev.CurrentDrillID != nil {
		current = entsql.EQ("current_drill_id", *prev.CurrentDrillID)
	}

	u := builder().Update(ProgressTable.Name).
		Set("questions_completed", next.QuestionsCompleted).
		Set("questions_correct", next.QuestionsCorrect).
		Set("gems", next.Gems).
		Set("points", next.Points).
		Set("current_streak", next.CurrentStreak).
		Set("longest_streak", next.LongestStreak).
		Set("last_activity_date", next.LastActivityDate).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.And(
			entsql.EQ("user_id", prev.UserID),
			entsql.EQ("course_id", prev.CourseID),
			current,
			entsql.EQ("questions_completed", prev.QuestionsCompleted),
			entsql.EQ("questions_correct", prev.QuestionsCorrect),
			entsql.EQ("gems", prev.Gems),
			entsql.EQ("points", prev.Points),
			entsql.EQ("current_streak", prev.CurrentStreak),
			entsql.EQ("last_activity_date", prev.LastActivityDate),
		))
	if next.CurrentDrillID == nil {
		u.SetNull("current_drill_id")
	} else {
		u.Set("current_drill_id", *next.CurrentDrillID)
	}

	query, args := u.Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("swap progress: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("swap progress rows: %w", err)
	}
	return n == 1, nil
}

func (r *progressRepo) Standings(ctx context.Context, courseID, limit int) ([]Progress, error) {
	b := builder()
	sel := b.Select(progressSelect...).
		From(b.Table(ProgressTable.Name)).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy(entsql.Desc("points"), "user_id")
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query standings: %w", err)
	}
	defer rows.Close()

	var out []Progress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan standing: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *progressRepo) ExpireStreaks(ctx context.Context, before string) (int64, error) {
	query, args := builder().Update(ProgressTable.Name).
		Set("current_streak", 0).
		Where(entsql.And(
			entsql.GT("current_streak", 0),
			entsql.LT("last_activity_date", before),
		)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("expire streaks: %w", err)
	}
	return res.RowsAffected()
}

func (r *progressRepo) UpsertCompletion(ctx context.Context, c Completion) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO drill_completions
		(user_id, drill_id, course_id, best_score, attempts, completed_at, last_attempt_id)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT (user_id, drill_id) DO UPDATE SET
			best_score = MAX(best_score, excluded.best_score),
			attempts = attempts + (excluded.last_attempt_id <> last_attempt_id OR excluded.last_attempt_id = ''),
			completed_at = excluded.completed_at,
			last_attempt_id = excluded.last_attempt_id`,
		c.UserID, c.DrillID, c.CourseID, c.BestScore, c.CompletedAt.UTC(), c.AttemptID)
	if err != nil {
		return fmt.Errorf("upsert completion: %w", err)
	}
	return nil
}

func (r *progressRepo) Completions(ctx context.Context, userID string, courseID int) ([]Completion, error) {
	b := builder()
	query, args := b.Select("user_id", "drill_id", "course_id", "best_score", "attempts", "completed_at", "last_attempt_id").
		From(b.Table(CompletionsTable.Name)).
		Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID))).
		OrderBy("drill_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	var out []Completion
	for rows.Next() {
		var c Completion
		if err := rows.Scan(&c.UserID, &c.DrillID, &c.CourseID, &c.BestScore, &c.Attempts, &c.CompletedAt, &c.AttemptID); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *progressRepo) Reset(ctx context.Context, userID string, courseID int) error {
	b := builder()
	owned := entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID))
	steps := []struct {
		name    string
		querier interface{ Query() (string, []any) }
	}{
		{"delete completions", b.Delete(CompletionsTable.Name).Where(owned)},
		{"delete progress", b.Delete(ProgressTable.Name).Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID)))},
		{"abandon attempts", b.Update(AttemptsTable.Name).
			Set("status", StatusAbandoned).
			Set("finished_at", time.Now().UTC()).
			Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("course_id", courseID), entsql.EQ("status", StatusActive)))},
		{"clear active course", b.Update(ProfilesTable.Name).
			SetNull("active_course_id").
			Where(entsql.And(entsql.EQ("user_id", userID), entsql.EQ("active_course_id", courseID)))},
	}
	return atomic(ctx, r.db, func(tx querier) error {
		for _, step := range steps {
			query, args := step.querier.Query()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("%s: %w", step.name, err)
			}
		}
		return nil
	})
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func intPtrArg(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
