package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table definitions fed to ent's migration engine. Columns are ordered so
// that the index positions below stay readable.
var (
	CoursesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString},
		{Name: "image_src", Type: field.TypeString},
		{Name: "badge_src", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	CoursesTable = &schema.Table{
		Name:       "courses",
		Columns:    CoursesColumns,
		PrimaryKey: []*schema.Column{CoursesColumns[0]},
	}

	UnitsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "course_id", Type: field.TypeInt},
		{Name: "title", Type: field.TypeString},
		{Name: "description", Type: field.TypeString},
		{Name: "notes", Type: field.TypeString, Size: 2147483647},
		{Name: "ord", Type: field.TypeInt},
	}
	UnitsTable = &schema.Table{
		Name:       "units",
		Columns:    UnitsColumns,
		PrimaryKey: []*schema.Column{UnitsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "units_courses_units",
				Columns:    []*schema.Column{UnitsColumns[1]},
				RefColumns: []*schema.Column{CoursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "unit_course_id_ord", Columns: []*schema.Column{UnitsColumns[1], UnitsColumns[5]}},
		},
	}

	DrillsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "unit_id", Type: field.TypeInt},
		{Name: "title", Type: field.TypeString},
		{Name: "drill_number", Type: field.TypeInt},
		{Name: "is_timed", Type: field.TypeBool},
	}
	DrillsTable = &schema.Table{
		Name:       "drills",
		Columns:    DrillsColumns,
		PrimaryKey: []*schema.Column{DrillsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "drills_units_drills",
				Columns:    []*schema.Column{DrillsColumns[1]},
				RefColumns: []*schema.Column{UnitsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "drill_unit_id_drill_number", Unique: true, Columns: []*schema.Column{DrillsColumns[1], DrillsColumns[3]}},
		},
	}

	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "drill_id", Type: field.TypeInt},
		{Name: "kind", Type: field.TypeString},
		{Name: "prompt", Type: field.TypeString, Size: 2147483647},
		{Name: "answer_text", Type: field.TypeString},
		{Name: "explanation", Type: field.TypeString, Size: 2147483647},
		{Name: "ord", Type: field.TypeInt},
	}
	QuestionsTable = &schema.Table{
		Name:       "questions",
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "questions_drills_questions",
				Columns:    []*schema.Column{QuestionsColumns[1]},
				RefColumns: []*schema.Column{DrillsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "question_drill_id", Columns: []*schema.Column{QuestionsColumns[1]}},
		},
	}

	OptionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "question_id", Type: field.TypeInt},
		{Name: "text", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool},
	}
	OptionsTable = &schema.Table{
		Name:       "question_options",
		Columns:    OptionsColumns,
		PrimaryKey: []*schema.Column{OptionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "question_options_questions_options",
				Columns:    []*schema.Column{OptionsColumns[1]},
				RefColumns: []*schema.Column{QuestionsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	ProfilesColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "display_name", Type: field.TypeString},
		{Name: "active_course_id", Type: field.TypeInt, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	ProfilesTable = &schema.Table{
		Name:       "user_profiles",
		Columns:    ProfilesColumns,
		PrimaryKey: []*schema.Column{ProfilesColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_profiles_courses_active",
				Columns:    []*schema.Column{ProfilesColumns[2]},
				RefColumns: []*schema.Column{CoursesColumns[0]},
				OnDelete:   schema.SetNull,
			},
		},
	}

	ProgressColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeInt},
		{Name: "current_drill_id", Type: field.TypeInt, Nullable: true},
		{Name: "questions_completed", Type: field.TypeInt},
		{Name: "gems", Type: field.TypeInt},
		{Name: "points", Type: field.TypeInt},
		{Name: "current_streak", Type: field.TypeInt},
		{Name: "longest_streak", Type: field.TypeInt},
		{Name: "last_activity_date", Type: field.TypeString},
		{Name: "updated_at", Type: field.TypeTime},
		{Name: "questions_correct", Type: field.TypeInt, Default: 0},
	}
	ProgressTable = &schema.Table{
		Name:       "user_progress",
		Columns:    ProgressColumns,
		PrimaryKey: []*schema.Column{ProgressColumns[0], ProgressColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "user_progress_courses_progress",
				Columns:    []*schema.Column{ProgressColumns[1]},
				RefColumns: []*schema.Column{CoursesColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "progress_course_id_points", Columns: []*schema.Column{ProgressColumns[1], ProgressColumns[5]}},
		},
	}

	CompletionsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "drill_id", Type: field.TypeInt},
		{Name: "course_id", Type: field.TypeInt},
		{Name: "best_score", Type: field.TypeFloat64},
		{Name: "attempts", Type: field.TypeInt},
		{Name: "completed_at", Type: field.TypeTime},
		{Name: "last_attempt_id", Type: field.TypeString, Default: ""},
	}
	CompletionsTable = &schema.Table{
		Name:       "drill_completions",
		Columns:    CompletionsColumns,
		PrimaryKey: []*schema.Column{CompletionsColumns[0], CompletionsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "drill_completions_drills_completions",
				Columns:    []*schema.Column{CompletionsColumns[1]},
				RefColumns: []*schema.Column{DrillsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "completion_user_id_course_id", Columns: []*schema.Column{CompletionsColumns[0], CompletionsColumns[2]}},
		},
	}

	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "user_id", Type: field.TypeString},
		{Name: "course_id", Type: field.TypeInt},
		{Name: "drill_id", Type: field.TypeInt},
		{Name: "mode", Type: field.TypeString},
		{Name: "is_timed", Type: field.TypeBool},
		{Name: "target", Type: field.TypeInt},
		{Name: "served", Type: field.TypeString, Size: 2147483647},
		{Name: "position", Type: field.TypeInt},
		{Name: "correct_count", Type: field.TypeInt},
		{Name: "status", Type: field.TypeString},
		{Name: "expired", Type: field.TypeBool},
		{Name: "time_taken_ms", Type: field.TypeInt64},
		{Name: "started_at", Type: field.TypeTime},
		{Name: "finished_at", Type: field.TypeTime, Nullable: true},
		{Name: "carried", Type: field.TypeInt, Default: 0},
	}
	AttemptsTable = &schema.Table{
		Name:       "attempts",
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "attempts_drills_attempts",
				Columns:    []*schema.Column{AttemptsColumns[3]},
				RefColumns: []*schema.Column{DrillsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "attempt_user_id_drill_id_status", Columns: []*schema.Column{AttemptsColumns[1], AttemptsColumns[3], AttemptsColumns[10]}},
		},
	}

	AnswersColumns = []*schema.Column{
		{Name: "attempt_id", Type: field.TypeString},
		{Name: "question_id", Type: field.TypeInt},
		{Name: "option_id", Type: field.TypeInt, Nullable: true},
		{Name: "text_answer", Type: field.TypeString},
		{Name: "correct", Type: field.TypeBool},
		{Name: "answered_at", Type: field.TypeTime},
	}
	AnswersTable = &schema.Table{
		Name:       "attempt_answers",
		Columns:    AnswersColumns,
		PrimaryKey: []*schema.Column{AnswersColumns[0], AnswersColumns[1]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "attempt_answers_attempts_answers",
				Columns:    []*schema.Column{AnswersColumns[0]},
				RefColumns: []*schema.Column{AttemptsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
	}

	SubscriptionsColumns = []*schema.Column{
		{Name: "user_id", Type: field.TypeString},
		{Name: "customer_id", Type: field.TypeString},
		{Name: "price_id", Type: field.TypeString},
		{Name: "current_period_end", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	SubscriptionsTable = &schema.Table{
		Name:       "subscriptions",
		Columns:    SubscriptionsColumns,
		PrimaryKey: []*schema.Column{SubscriptionsColumns[0]},
	}

	// Event tables share the sequence/timestamp prefix.

	AnswerEventsColumns = eventColumns(
		&schema.Column{Name: "user_id", Type: field.TypeString},
		&schema.Column{Name: "attempt_id", Type: field.TypeString},
		&schema.Column{Name: "drill_id", Type: field.TypeInt},
		&schema.Column{Name: "question_id", Type: field.TypeInt},
		&schema.Column{Name: "mode", Type: field.TypeString},
		&schema.Column{Name: "correct", Type: field.TypeBool},
	)
	AnswerEventsTable = eventTable("answer_events", AnswerEventsColumns)

	EconomyEventsColumns = eventColumns(
		&schema.Column{Name: "user_id", Type: field.TypeString},
		&schema.Column{Name: "course_id", Type: field.TypeInt},
		&schema.Column{Name: "reason", Type: field.TypeString},
		&schema.Column{Name: "gems_delta", Type: field.TypeInt},
		&schema.Column{Name: "points_delta", Type: field.TypeInt},
		&schema.Column{Name: "gems_after", Type: field.TypeInt},
		&schema.Column{Name: "points_after", Type: field.TypeInt},
	)
	EconomyEventsTable = eventTable("economy_events", EconomyEventsColumns)

	SessionEventsColumns = eventColumns(
		&schema.Column{Name: "user_id", Type: field.TypeString},
		&schema.Column{Name: "attempt_id", Type: field.TypeString},
		&schema.Column{Name: "drill_id", Type: field.TypeInt},
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "correct_count", Type: field.TypeInt},
		&schema.Column{Name: "considered", Type: field.TypeInt},
		&schema.Column{Name: "score", Type: field.TypeFloat64},
	)
	SessionEventsTable = eventTable("session_events", SessionEventsColumns)

	LLMRequestEventsColumns = eventColumns(
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString},
	)
	LLMRequestEventsTable = eventTable("llm_request_events", LLMRequestEventsColumns)

	// Tables holds every table managed by auto-migration.
	Tables = []*schema.Table{
		CoursesTable,
		UnitsTable,
		DrillsTable,
		QuestionsTable,
		OptionsTable,
		ProfilesTable,
		ProgressTable,
		CompletionsTable,
		AttemptsTable,
		AnswersTable,
		SubscriptionsTable,
		AnswerEventsTable,
		EconomyEventsTable,
		SessionEventsTable,
		LLMRequestEventsTable,
	}
)

func init() {
	UnitsTable.ForeignKeys[0].RefTable = CoursesTable
	DrillsTable.ForeignKeys[0].RefTable = UnitsTable
	QuestionsTable.ForeignKeys[0].RefTable = DrillsTable
	OptionsTable.ForeignKeys[0].RefTable = QuestionsTable
	ProfilesTable.ForeignKeys[0].RefTable = CoursesTable
	ProgressTable.ForeignKeys[0].RefTable = CoursesTable
	CompletionsTable.ForeignKeys[0].RefTable = DrillsTable
	AttemptsTable.ForeignKeys[0].RefTable = DrillsTable
	AnswersTable.ForeignKeys[0].RefTable = AttemptsTable
}

func eventColumns(extra ...*schema.Column) []*schema.Column {
	cols := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(cols, extra...)
}

func eventTable(name string, cols []*schema.Column) *schema.Table {
	return &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{Name: name + "_timestamp", Columns: []*schema.Column{cols[2]}},
		},
	}
}
