package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type attemptRepo struct {
	db querier
}

var attemptSelect = []string{
	"id", "user_id", "course_id", "drill_id", "mode", "is_timed", "target", "served",
	"position", "correct_count", "status", "expired", "time_taken_ms", "started_at", "finished_at", "carried",
}

func scanAttempt(sc interface{ Scan(...any) error }) (*Attempt, error) {
	var (
		a        Attempt
		served   string
		finished sql.NullTime
	)
	err := sc.Scan(&a.ID, &a.UserID, &a.CourseID, &a.DrillID, &a.Mode, &a.IsTimed, &a.Target, &served,
		&a.Position, &a.CorrectCount, &a.Status, &a.Expired, &a.TimeTakenMs, &a.StartedAt, &finished, &a.Carried)
	if err != nil {
		return nil, err
	}
	if served != "" {
		if err := json.Unmarshal([]byte(served), &a.Served); err != nil {
			return nil, fmt.Errorf("decode served questions: %w", err)
		}
	}
	if finished.Valid {
		t := finished.Time
		a.FinishedAt = &t
	}
	return &a, nil
}

func encodeServed(ids []int) (string, error) {
	if ids == nil {
		ids = []int{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("encode served questions: %w", err)
	}
	return string(raw), nil
}

func (r *attemptRepo) CreateAttempt(ctx context.Context, a *Attempt) error {
	served, err := encodeServed(a.Served)
	if err != nil {
		return err
	}
	query, args := builder().Insert(AttemptsTable.Name).
		Columns(attemptSelect...).
		Values(a.ID, a.UserID, a.CourseID, a.DrillID, a.Mode, a.IsTimed, a.Target, served,
			a.Position, a.CorrectCount, a.Status, a.Expired, a.TimeTakenMs, a.StartedAt.UTC(), timePtrArg(a.FinishedAt), a.Carried).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (r *attemptRepo) GetAttempt(ctx context.Context, id string) (*Attempt, error) {
	b := builder()
	query, args := b.Select(attemptSelect...).
		From(b.Table(AttemptsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	a, err := scanAttempt(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attempt %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query attempt: %w", err)
	}
	return a, nil
}

func (r *attemptRepo) FindActive(ctx context.Context, userID string, drillID int) (*Attempt, error) {
	b := builder()
	query, args := b.Select(attemptSelect...).
		From(b.Table(AttemptsTable.Name)).
		Where(entsql.And(
			entsql.EQ("user_id", userID),
			entsql.EQ("drill_id", drillID),
			entsql.EQ("status", StatusActive),
		)).
		OrderBy(entsql.Desc("started_at")).
		Limit(1).
		Query()

	a, err := scanAttempt(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query active attempt: %w", err)
	}
	return a, nil
}

func (r *attemptRepo) UpdateAttempt(ctx context.Context, a *Attempt) error {
	served, err := encodeServed(a.Served)
	if err != nil {
		return err
	}
	u := builder().Update(AttemptsTable.Name).
		Set("served", served).
		Set("position", a.Position).
		Set("correct_count", a.CorrectCount).
		Set("status", a.Status).
		Set("expired", a.Expired).
		Set("time_taken_ms", a.TimeTakenMs).
		Where(entsql.EQ("id", a.ID))
	if a.FinishedAt != nil {
		u.Set("finished_at", a.FinishedAt.UTC())
	}
	query, args := u.Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("attempt %s: %w", a.ID, ErrNotFound)
	}
	return nil
}

func (r *attemptRepo) InsertAnswer(ctx context.Context, ans Answer) (bool, error) {
	query, args := builder().Insert(AnswersTable.Name).
		Columns("attempt_id", "question_id", "option_id", "text_answer", "correct", "answered_at").
		Values(ans.AttemptID, ans.QuestionID, intPtrArg(ans.OptionID), ans.TextAnswer, ans.Correct, ans.AnsweredAt.UTC()).
		OnConflict(entsql.ConflictColumns("attempt_id", "question_id"), entsql.DoNothing()).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert answer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert answer rows: %w", err)
	}
	return n == 1, nil
}

var answerSelect = []string{"attempt_id", "question_id", "option_id", "text_answer", "correct", "answered_at"}

func scanAnswer(sc interface{ Scan(...any) error }) (Answer, error) {
	var (
		a      Answer
		option sql.NullInt64
	)
	err := sc.Scan(&a.AttemptID, &a.QuestionID, &option, &a.TextAnswer, &a.Correct, &a.AnsweredAt)
	a.OptionID = nullIntPtr(option)
	return a, err
}

func (r *attemptRepo) GetAnswer(ctx context.Context, attemptID string, questionID int) (*Answer, error) {
	b := builder()
	query, args := b.Select(answerSelect...).
		From(b.Table(AnswersTable.Name)).
		Where(entsql.And(entsql.EQ("attempt_id", attemptID), entsql.EQ("question_id", questionID))).
		Query()

	a, err := scanAnswer(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query answer: %w", err)
	}
	return &a, nil
}

func (r *attemptRepo) ListAnswers(ctx context.Context, attemptID string) ([]Answer, error) {
	b := builder()
	query, args := b.Select(answerSelect...).
		From(b.Table(AnswersTable.Name)).
		Where(entsql.EQ("attempt_id", attemptID)).
		OrderBy("answered_at").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}
	defer rows.Close()

	var out []Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) AbandonStale(ctx context.Context, before time.Time) (int64, error) {
	query, args := builder().Update(AttemptsTable.Name).
		Set("status", StatusAbandoned).
		Set("finished_at", time.Now().UTC()).
		Where(entsql.And(
			entsql.EQ("status", StatusActive),
			entsql.LT("started_at", before.UTC()),
		)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("abandon stale attempts: %w", err)
	}
	return res.RowsAffected()
}

func timePtrArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
