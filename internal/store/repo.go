package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// Course is a top-level learning track.
type Course struct {
	ID          int
	Title       string
	Description string
	ImageSrc    string
	BadgeSrc    string
	CreatedAt   time.Time
}

// Unit groups drills inside a course.
type Unit struct {
	ID          int
	CourseID    int
	Title       string
	Description string
	Notes       string
	Order       int
	Drills      []Drill
}

// Drill is one playable set of questions.
type Drill struct {
	ID            int
	UnitID        int
	CourseID      int
	Title         string
	Number        int
	IsTimed       bool
	QuestionCount int
}

// Question kinds.
const (
	KindSelect = "select"
	KindText   = "text"
)

// Question is a single prompt inside a drill.
type Question struct {
	ID          int
	DrillID     int
	Kind        string
	Prompt      string
	AnswerText  string
	Explanation string
	Order       int
	Options     []Option
}

// Option is one choice of a select question.
type Option struct {
	ID      int
	Text    string
	Correct bool
}

// NewCourse is the input of a content import. IDs are assigned on insert.
type NewCourse struct {
	Course Course
	Units  []NewUnit
}

// NewUnit is a unit with its drills for import.
type NewUnit struct {
	Unit   Unit
	Drills []NewDrill
}

// NewDrill is a drill with its questions for import.
type NewDrill struct {
	Drill     Drill
	Questions []Question
}

// ContentRepo reads and writes course content.
type ContentRepo interface {
	ListCourses(ctx context.Context) ([]Course, error)

	// GetCourse returns ErrNotFound when the course does not exist.
	GetCourse(ctx context.Context, id int) (*Course, error)

	// Outline returns the course units in play order, each with its drills
	// in play order and their question counts.
	Outline(ctx context.Context, courseID int) ([]Unit, error)

	// GetDrill returns ErrNotFound when the drill does not exist.
	GetDrill(ctx context.Context, id int) (*Drill, error)

	// QuestionIDs lists the ids of every question in the drill.
	QuestionIDs(ctx context.Context, drillID int) ([]int, error)

	// Questions loads questions with their options, in the order of ids.
	// Unknown ids are skipped.
	Questions(ctx context.Context, ids []int) ([]Question, error)

	// Import inserts a course tree in one transaction and returns the new
	// course id.
	Import(ctx context.Context, c NewCourse) (int, error)

	// MissingExplanations lists questions of a course without an
	// explanation. A courseID of 0 searches all courses.
	MissingExplanations(ctx context.Context, courseID, limit int) ([]Question, error)

	SetExplanation(ctx context.Context, questionID int, text string) error
}

// Profile is the per-user record holding the active course pointer.
type Profile struct {
	UserID         string
	DisplayName    string
	ActiveCourseID *int
	CreatedAt      time.Time
}

// Progress is the per-(user, course) economy and position record.
type Progress struct {
	UserID             string
	CourseID           int
	CurrentDrillID     *int
	QuestionsCompleted int
	QuestionsCorrect   int // correct answers among QuestionsCompleted
	Gems               int
	Points             int
	CurrentStreak      int
	LongestStreak      int
	LastActivityDate   string // YYYY-MM-DD, empty when never active
	UpdatedAt          time.Time
}

// Completion records that a user finished a drill.
type Completion struct {
	UserID      string
	DrillID     int
	CourseID    int
	BestScore   float64
	Attempts    int
	CompletedAt time.Time
	AttemptID   string // the attempt that completed it; a replay is not counted again
}

// ProgressRepo manages profiles, progress rows and drill completions.
type ProgressRepo interface {
	// EnsureProfile creates the profile if missing and returns it.
	EnsureProfile(ctx context.Context, userID, displayName string) (*Profile, error)

	// GetProfile returns nil if the user has no profile.
	GetProfile(ctx context.Context, userID string) (*Profile, error)

	SetActiveCourse(ctx context.Context, userID string, courseID *int) error

	// GetProgress returns nil if no row exists for (user, course).
	GetProgress(ctx context.Context, userID string, courseID int) (*Progress, error)

	// CreateProgress inserts p unless a row for (user, course) exists.
	CreateProgress(ctx context.Context, p Progress) error

	// SwapProgress writes next only if the stored row still equals prev.
	// It reports false when another writer got there first.
	SwapProgress(ctx context.Context, prev, next Progress) (bool, error)

	// Standings returns progress rows of a course ordered by points
	// descending, then user id.
	Standings(ctx context.Context, courseID, limit int) ([]Progress, error)

	// ExpireStreaks zeroes current streaks whose last activity is before
	// the given day.
	ExpireStreaks(ctx context.Context, before string) (int64, error)

	// UpsertCompletion records a drill completion, keeping the best score.
	UpsertCompletion(ctx context.Context, c Completion) error

	Completions(ctx context.Context, userID string, courseID int) ([]Completion, error)

	// Reset deletes the user's progress and completions for the course,
	// abandons active attempts and clears the active course pointer.
	Reset(ctx context.Context, userID string, courseID int) error
}

// Attempt statuses.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// Attempt is the durable state of one drill session.
type Attempt struct {
	ID           string
	UserID       string
	CourseID     int
	DrillID      int
	Mode         string
	IsTimed      bool
	Target       int
	Served       []int
	Position     int
	CorrectCount int
	Carried      int // questions answered in earlier attempts, included in CorrectCount
	Status       string
	Expired      bool
	TimeTakenMs  int64
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Answer is the recorded response to one question of an attempt.
type Answer struct {
	AttemptID  string
	QuestionID int
	OptionID   *int
	TextAnswer string
	Correct    bool
	AnsweredAt time.Time
}

// AttemptRepo persists attempts and their answers.
type AttemptRepo interface {
	CreateAttempt(ctx context.Context, a *Attempt) error

	// GetAttempt returns ErrNotFound when no attempt has the id.
	GetAttempt(ctx context.Context, id string) (*Attempt, error)

	// FindActive returns nil if the user has no active attempt on the drill.
	FindActive(ctx context.Context, userID string, drillID int) (*Attempt, error)

	UpdateAttempt(ctx context.Context, a *Attempt) error

	// InsertAnswer stores the answer unless one exists for the same
	// question. It reports whether a row was written.
	InsertAnswer(ctx context.Context, ans Answer) (bool, error)

	// GetAnswer returns nil if the question has not been answered.
	GetAnswer(ctx context.Context, attemptID string, questionID int) (*Answer, error)

	ListAnswers(ctx context.Context, attemptID string) ([]Answer, error)

	// AbandonStale marks active attempts started before the cutoff as
	// abandoned.
	AbandonStale(ctx context.Context, before time.Time) (int64, error)
}

// Subscription is the payment provider's view of a user.
type Subscription struct {
	UserID           string
	CustomerID       string
	PriceID          string
	CurrentPeriodEnd time.Time
	UpdatedAt        time.Time
}

// SubscriptionRepo stores subscription rows.
type SubscriptionRepo interface {
	// Get returns nil if the user never subscribed.
	Get(ctx context.Context, userID string) (*Subscription, error)
	Upsert(ctx context.Context, s Subscription) error
}

// AnswerEventData captures one recorded answer.
type AnswerEventData struct {
	UserID     string
	AttemptID  string
	DrillID    int
	QuestionID int
	Mode       string
	Correct    bool
}

// EconomyEventData captures a gem or point mutation.
type EconomyEventData struct {
	UserID      string
	CourseID    int
	Reason      string
	GemsDelta   int
	PointsDelta int
	GemsAfter   int
	PointsAfter int
}

// EconomyEventRecord is a stored economy event.
type EconomyEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	EconomyEventData
}

// SessionEventData captures an attempt lifecycle transition.
type SessionEventData struct {
	UserID       string
	AttemptID    string
	DrillID      int
	Action       string // "start", "complete", "expire", "abandon"
	CorrectCount int
	Considered   int
	Score        float64
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendEconomyEvent(ctx context.Context, data EconomyEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryEconomyEvents(ctx context.Context, userID string, opts QueryOpts) ([]EconomyEventRecord, error)
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// GetLLMEvent returns ErrNotFound when no event has the id.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEventRecord, error)
}
