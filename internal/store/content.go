package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

type contentRepo struct {
	db querier
}

func (r *contentRepo) ListCourses(ctx context.Context) ([]Course, error) {
	b := builder()
	query, args := b.Select("id", "title", "description", "image_src", "badge_src", "created_at").
		From(b.Table(CoursesTable.Name)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	var courses []Course
	for rows.Next() {
		var c Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.ImageSrc, &c.BadgeSrc, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

func (r *contentRepo) GetCourse(ctx context.Context, id int) (*Course, error) {
	b := builder()
	query, args := b.Select("id", "title", "description", "image_src", "badge_src", "created_at").
		From(b.Table(CoursesTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	var c Course
	err := r.db.QueryRowContext(ctx, query, args...).
		Scan(&c.ID, &c.Title, &c.Description, &c.ImageSrc, &c.BadgeSrc, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query course: %w", err)
	}
	return &c, nil
}

const drillColumns = `d.id, d.unit_id, u.course_id, d.title, d.drill_number, d.is_timed,
	(SELECT COUNT(*) FROM questions q WHERE q.drill_id = d.id)`

func scanDrill(sc interface{ Scan(...any) error }) (Drill, error) {
	var d Drill
	err := sc.Scan(&d.ID, &d.UnitID, &d.CourseID, &d.Title, &d.Number, &d.IsTimed, &d.QuestionCount)
	return d, err
}

func (r *contentRepo) Outline(ctx context.Context, courseID int) ([]Unit, error) {
	b := builder()
	query, args := b.Select("id", "course_id", "title", "description", "notes", "ord").
		From(b.Table(UnitsTable.Name)).
		Where(entsql.EQ("course_id", courseID)).
		OrderBy("ord", "id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	var units []Unit
	index := map[int]int{}
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.CourseID, &u.Title, &u.Description, &u.Notes, &u.Order); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		index[u.ID] = len(units)
		units = append(units, u)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}

	drows, err := r.db.QueryContext(ctx, `SELECT `+drillColumns+`
		FROM drills d JOIN units u ON u.id = d.unit_id
		WHERE u.course_id = ?
		ORDER BY d.drill_number, d.id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("query drills: %w", err)
	}
	defer drows.Close()
	for drows.Next() {
		d, err := scanDrill(drows)
		if err != nil {
			return nil, fmt.Errorf("scan drill: %w", err)
		}
		if i, ok := index[d.UnitID]; ok {
			units[i].Drills = append(units[i].Drills, d)
		}
	}
	return units, drows.Err()
}

func (r *contentRepo) GetDrill(ctx context.Context, id int) (*Drill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+drillColumns+`
		FROM drills d JOIN units u ON u.id = d.unit_id
		WHERE d.id = ?`, id)
	d, err := scanDrill(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("drill %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query drill: %w", err)
	}
	return &d, nil
}

func (r *contentRepo) QuestionIDs(ctx context.Context, drillID int) ([]int, error) {
	b := builder()
	query, args := b.Select("id").
		From(b.Table(QuestionsTable.Name)).
		Where(entsql.EQ("drill_id", drillID)).
		OrderBy("ord", "id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query question ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *contentRepo) Questions(ctx context.Context, ids []int) ([]Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	b := builder()
	query, args := b.Select("id", "drill_id", "kind", "prompt", "answer_text", "explanation", "ord").
		From(b.Table(QuestionsTable.Name)).
		Where(entsql.In("id", intArgs(ids)...)).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query questions: %w", err)
	}
	byID := make(map[int]*Question, len(ids))
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.DrillID, &q.Kind, &q.Prompt, &q.AnswerText, &q.Explanation, &q.Order); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan question: %w", err)
		}
		byID[q.ID] = &q
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate questions: %w", err)
	}

	query, args = b.Select("id", "question_id", "text", "correct").
		From(b.Table(OptionsTable.Name)).
		Where(entsql.In("question_id", intArgs(ids)...)).
		OrderBy("id").
		Query()
	orows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query options: %w", err)
	}
	defer orows.Close()
	for orows.Next() {
		var (
			o   Option
			qid int
		)
		if err := orows.Scan(&o.ID, &qid, &o.Text, &o.Correct); err != nil {
			return nil, fmt.Errorf("scan option: %w", err)
		}
		if q, ok := byID[qid]; ok {
			q.Options = append(q.Options, o)
		}
	}
	if err := orows.Err(); err != nil {
		return nil, fmt.Errorf("iterate options: %w", err)
	}

	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (r *contentRepo) Import(ctx context.Context, c NewCourse) (int, error) {
	var courseID int
	err := atomic(ctx, r.db, func(tx querier) error {
		id, err := importCourse(ctx, tx, c)
		courseID = id
		return err
	})
	if err != nil {
		return 0, err
	}
	return courseID, nil
}

func importCourse(ctx context.Context, tx querier, c NewCourse) (int, error) {
	b := builder()
	now := time.Now().UTC()
	courseID, err := insertID(ctx, tx, b.Insert(CoursesTable.Name).
		Columns("title", "description", "image_src", "badge_src", "created_at").
		Values(c.Course.Title, c.Course.Description, c.Course.ImageSrc, c.Course.BadgeSrc, now))
	if err != nil {
		return 0, fmt.Errorf("insert course: %w", err)
	}

	for _, nu := range c.Units {
		unitID, err := insertID(ctx, tx, b.Insert(UnitsTable.Name).
			Columns("course_id", "title", "description", "notes", "ord").
			Values(courseID, nu.Unit.Title, nu.Unit.Description, nu.Unit.Notes, nu.Unit.Order))
		if err != nil {
			return 0, fmt.Errorf("insert unit %q: %w", nu.Unit.Title, err)
		}
		for _, nd := range nu.Drills {
			drillID, err := insertID(ctx, tx, b.Insert(DrillsTable.Name).
				Columns("unit_id", "title", "drill_number", "is_timed").
				Values(unitID, nd.Drill.Title, nd.Drill.Number, nd.Drill.IsTimed))
			if err != nil {
				return 0, fmt.Errorf("insert drill %q: %w", nd.Drill.Title, err)
			}
			for i, q := range nd.Questions {
				questionID, err := insertID(ctx, tx, b.Insert(QuestionsTable.Name).
					Columns("drill_id", "kind", "prompt", "answer_text", "explanation", "ord").
					Values(drillID, q.Kind, q.Prompt, q.AnswerText, q.Explanation, i))
				if err != nil {
					return 0, fmt.Errorf("insert question: %w", err)
				}
				for _, o := range q.Options {
					if _, err := insertID(ctx, tx, b.Insert(OptionsTable.Name).
						Columns("question_id", "text", "correct").
						Values(questionID, o.Text, o.Correct)); err != nil {
						return 0, fmt.Errorf("insert option: %w", err)
					}
				}
			}
		}
	}

	return courseID, nil
}

func (r *contentRepo) MissingExplanations(ctx context.Context, courseID, limit int) ([]Question, error) {
	query := `SELECT q.id FROM questions q
		JOIN drills d ON d.id = q.drill_id
		JOIN units u ON u.id = d.unit_id
		WHERE q.explanation = '' AND (? = 0 OR u.course_id = ?)
		ORDER BY q.id`
	args := []any{courseID, courseID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query missing explanations: %w", err)
	}
	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return r.Questions(ctx, ids)
}

func (r *contentRepo) SetExplanation(ctx context.Context, questionID int, text string) error {
	query, args := builder().Update(QuestionsTable.Name).
		Set("explanation", text).
		Where(entsql.EQ("id", questionID)).
		Query()

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update explanation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertID(ctx context.Context, ex execer, ib *entsql.InsertBuilder) (int, error) {
	query, args := ib.Query()
	res, err := ex.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

func intArgs(ids []int) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
