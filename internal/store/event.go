package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// sequenceCounter hands out the global monotonic sequence shared by every
// event table, so answers, economy mutations and session transitions can be
// ordered against each other. The RETURNING clause makes the increment
// atomic at the database level; it runs on the caller's handle so an event
// written inside a transaction draws its number from the same transaction.
type sequenceCounter struct{}

func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context, q querier) (int64, error) {
	var seq int64
	err := q.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

type eventRepo struct {
	db  querier
	seq *sequenceCounter
}

// appendEvent inserts one row into an event table, prefixing the sequence
// and timestamp columns.
func (r *eventRepo) appendEvent(ctx context.Context, table string, columns []string, values ...any) error {
	seqNum, err := r.seq.Next(ctx, r.db)
	if err != nil {
		return err
	}

	cols := append([]string{"sequence", "timestamp"}, columns...)
	vals := append([]any{seqNum, time.Now().UTC()}, values...)
	query, args := builder().Insert(table).Columns(cols...).Values(vals...).Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	err := r.appendEvent(ctx, AnswerEventsTable.Name,
		[]string{"user_id", "attempt_id", "drill_id", "question_id", "mode", "correct"},
		data.UserID, data.AttemptID, data.DrillID, data.QuestionID, data.Mode, data.Correct)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendEconomyEvent(ctx context.Context, data EconomyEventData) error {
	err := r.appendEvent(ctx, EconomyEventsTable.Name,
		[]string{"user_id", "course_id", "reason", "gems_delta", "points_delta", "gems_after", "points_after"},
		data.UserID, data.CourseID, data.Reason, data.GemsDelta, data.PointsDelta, data.GemsAfter, data.PointsAfter)
	if err != nil {
		return fmt.Errorf("save economy event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	err := r.appendEvent(ctx, SessionEventsTable.Name,
		[]string{"user_id", "attempt_id", "drill_id", "action", "correct_count", "considered", "score"},
		data.UserID, data.AttemptID, data.DrillID, data.Action, data.CorrectCount, data.Considered, data.Score)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	err := r.appendEvent(ctx, LLMRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "latency_ms", "success", "error_message"},
		data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// applyOpts narrows an event selection by QueryOpts, newest first.
func applyOpts(sel *entsql.Selector, opts QueryOpts, preds ...*entsql.Predicate) *entsql.Selector {
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.Before > 0 {
		preds = append(preds, entsql.LT("sequence", opts.Before))
	}
	if !opts.From.IsZero() {
		preds = append(preds, entsql.GTE("timestamp", opts.From.UTC()))
	}
	if !opts.To.IsZero() {
		preds = append(preds, entsql.LTE("timestamp", opts.To.UTC()))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(entsql.Desc("sequence"))
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}
	return sel
}

func (r *eventRepo) QueryEconomyEvents(ctx context.Context, userID string, opts QueryOpts) ([]EconomyEventRecord, error) {
	b := builder()
	sel := b.Select("id", "sequence", "timestamp", "user_id", "course_id", "reason",
		"gems_delta", "points_delta", "gems_after", "points_after").
		From(b.Table(EconomyEventsTable.Name))
	query, args := applyOpts(sel, opts, entsql.EQ("user_id", userID)).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query economy events: %w", err)
	}
	defer rows.Close()

	var out []EconomyEventRecord
	for rows.Next() {
		var e EconomyEventRecord
		if err := rows.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.UserID, &e.CourseID, &e.Reason,
			&e.GemsDelta, &e.PointsDelta, &e.GemsAfter, &e.PointsAfter); err != nil {
			return nil, fmt.Errorf("scan economy event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var llmEventSelect = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
}

func scanLLMEvent(sc interface{ Scan(...any) error }) (LLMRequestEventRecord, error) {
	var e LLMRequestEventRecord
	err := sc.Scan(&e.ID, &e.Sequence, &e.Timestamp, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage)
	return e, err
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error) {
	b := builder()
	sel := b.Select(llmEventSelect...).From(b.Table(LLMRequestEventsTable.Name))
	query, args := applyOpts(sel, opts).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEventRecord
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan LLM event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error) {
	b := builder()
	query, args := b.Select(llmEventSelect...).
		From(b.Table(LLMRequestEventsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	e, err := scanLLMEvent(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("LLM event %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query LLM event: %w", err)
	}
	return &e, nil
}
