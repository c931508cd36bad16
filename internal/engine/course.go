package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/progression"
	"github.com/abhisek/drillz/internal/store"
)

// CourseView is a course as shown to learners.
type CourseView struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageSrc    string `json:"imageSrc"`
	BadgeSrc    string `json:"badgeSrc"`
}

func courseView(c store.Course) CourseView {
	return CourseView{ID: c.ID, Title: c.Title, Description: c.Description, ImageSrc: c.ImageSrc, BadgeSrc: c.BadgeSrc}
}

// ProgressView is the economy and position of a learner in a course.
type ProgressView struct {
	CourseID           int    `json:"courseId"`
	CurrentDrillID     *int   `json:"currentDrillId"`
	QuestionsCompleted int    `json:"questionsCompleted"`
	Gems               int    `json:"gems"`
	Points             int    `json:"points"`
	CurrentStreak      int    `json:"currentStreak"`
	LongestStreak      int    `json:"longestStreak"`
	LastActivityDate   string `json:"lastActivityDate,omitempty"`
}

func progressView(p store.Progress) ProgressView {
	return ProgressView{
		CourseID:           p.CourseID,
		CurrentDrillID:     p.CurrentDrillID,
		QuestionsCompleted: p.QuestionsCompleted,
		Gems:               p.Gems,
		Points:             p.Points,
		CurrentStreak:      p.CurrentStreak,
		LongestStreak:      p.LongestStreak,
		LastActivityDate:   p.LastActivityDate,
	}
}

// Overview is the learner's standing in one course.
type Overview struct {
	Course        CourseView   `json:"course"`
	Progress      ProgressView `json:"progress"`
	Subscribed    bool         `json:"subscribed"`
	GemsLimit     int          `json:"gemsLimit"`
	CanRefill     bool         `json:"canRefill"`
	NextMilestone int          `json:"nextStreakMilestone"`
	DrillsDone    int          `json:"drillsCompleted"`
	DrillsTotal   int          `json:"drillsTotal"`
}

// ListCourses returns every course.
func (s *Service) ListCourses(ctx context.Context) (_ []CourseView, err error) {
	ctx, span := s.start(ctx, "ListCourses")
	defer func() { s.finishSpan(span, "ListCourses", err) }()

	courses, err := s.content.ListCourses(ctx)
	if err != nil {
		return nil, persist("list courses", err)
	}
	out := make([]CourseView, 0, len(courses))
	for _, c := range courses {
		out = append(out, courseView(c))
	}
	return out, nil
}

// SelectCourse makes courseID the user's active course, creating progress
// on first selection.
func (s *Service) SelectCourse(ctx context.Context, userID string, courseID int) (_ *Overview, err error) {
	ctx, span := s.start(ctx, "SelectCourse", attribute.Int("course_id", courseID))
	defer func() { s.finishSpan(span, "SelectCourse", err) }()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.content.GetCourse(ctx, courseID); err != nil {
		return nil, persist("load course", err)
	}
	if _, err := s.progress.EnsureProfile(ctx, userID, userID); err != nil {
		return nil, persist("ensure profile", err)
	}
	if _, _, err := s.ensureProgress(ctx, userID, courseID); err != nil {
		return nil, err
	}
	if err := s.progress.SetActiveCourse(ctx, userID, &courseID); err != nil {
		return nil, persist("set active course", err)
	}
	s.log.Info("course selected", zap.String("user_id", userID), zap.Int("course_id", courseID))
	return s.overview(ctx, userID, courseID)
}

// ActiveCourse returns the user's active course id.
func (s *Service) ActiveCourse(ctx context.Context, userID string) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	profile, err := s.progress.GetProfile(ctx, userID)
	if err != nil {
		return 0, persist("load profile", err)
	}
	if profile == nil || profile.ActiveCourseID == nil {
		return 0, ErrNoCourse
	}
	return *profile.ActiveCourseID, nil
}

// Overview returns the user's progress in a course.
func (s *Service) Overview(ctx context.Context, userID string, courseID int) (_ *Overview, err error) {
	ctx, span := s.start(ctx, "Overview", attribute.Int("course_id", courseID))
	defer func() { s.finishSpan(span, "Overview", err) }()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.overview(ctx, userID, courseID)
}

func (s *Service) overview(ctx context.Context, userID string, courseID int) (*Overview, error) {
	course, err := s.content.GetCourse(ctx, courseID)
	if err != nil {
		return nil, persist("load course", err)
	}
	p, units, err := s.ensureProgress(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	subscribed, err := s.subs.Active(ctx, userID)
	if err != nil {
		return nil, persist("load subscription", err)
	}
	done, err := s.completedSet(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	c := s.rules.Constants()
	_, refillErr := s.rules.Refill(p.Gems, p.Points)
	return &Overview{
		Course:        courseView(*course),
		Progress:      progressView(*p),
		Subscribed:    subscribed,
		GemsLimit:     c.GemsLimit,
		CanRefill:     refillErr == nil,
		NextMilestone: economy.NextStreakMilestone(p.CurrentStreak),
		DrillsDone:    len(done),
		DrillsTotal:   len(progression.Order(units)),
	}, nil
}

// DrillList lays out the drills of a course with their lock state, label
// and progress percentage.
func (s *Service) DrillList(ctx context.Context, userID string, courseID int) (_ []progression.UnitView, err error) {
	ctx, span := s.start(ctx, "DrillList", attribute.Int("course_id", courseID))
	defer func() { s.finishSpan(span, "DrillList", err) }()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, err := s.content.GetCourse(ctx, courseID); err != nil {
		return nil, persist("load course", err)
	}
	views, _, _, err := s.layout(ctx, userID, courseID)
	return views, err
}

// layout builds the drill list along with the progress row and outline it
// was computed from.
func (s *Service) layout(ctx context.Context, userID string, courseID int) ([]progression.UnitView, *store.Progress, []store.Unit, error) {
	p, units, err := s.ensureProgress(ctx, userID, courseID)
	if err != nil {
		return nil, nil, nil, err
	}
	done, err := s.completedSet(ctx, userID, courseID)
	if err != nil {
		return nil, nil, nil, err
	}
	subscribed, err := s.subs.Active(ctx, userID)
	if err != nil {
		return nil, nil, nil, persist("load subscription", err)
	}
	views := s.gate.Build(progression.Input{
		Units:              units,
		Completed:          done,
		CurrentDrillID:     p.CurrentDrillID,
		QuestionsCompleted: p.QuestionsCompleted,
		Subscribed:         subscribed,
	})
	return views, p, units, nil
}

func (s *Service) completedSet(ctx context.Context, userID string, courseID int) (map[int]bool, error) {
	completions, err := s.progress.Completions(ctx, userID, courseID)
	if err != nil {
		return nil, persist("load completions", err)
	}
	done := make(map[int]bool, len(completions))
	for _, c := range completions {
		done[c.DrillID] = true
	}
	return done, nil
}
