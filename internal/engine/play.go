package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/progression"
	"github.com/abhisek/drillz/internal/session"
	"github.com/abhisek/drillz/internal/store"
)

// OptionView is a select option without its correctness.
type OptionView struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// QuestionView is a question as served to the learner.
type QuestionView struct {
	ID      int          `json:"id"`
	Kind    string       `json:"kind"`
	Prompt  string       `json:"prompt"`
	Options []OptionView `json:"options,omitempty"`
}

func questionView(q store.Question) QuestionView {
	v := QuestionView{ID: q.ID, Kind: q.Kind, Prompt: q.Prompt}
	for _, o := range q.Options {
		v.Options = append(v.Options, OptionView{ID: o.ID, Text: o.Text})
	}
	return v
}

// Play is a started or resumed drill attempt.
type Play struct {
	AttemptID    string         `json:"attemptId"`
	CourseID     int            `json:"courseId"`
	DrillID      int            `json:"drillId"`
	Title        string         `json:"title"`
	Mode         string         `json:"mode"`
	IsTimed      bool           `json:"isTimed"`
	Target       int            `json:"target"`
	Position     int            `json:"position"`
	CorrectCount int            `json:"correctCount"`
	Carried      int            `json:"carried,omitempty"`
	TimeLimit    time.Duration  `json:"-"`
	TimeLimitSec int            `json:"timeLimitSeconds,omitempty"`
	Resumed      bool           `json:"resumed"`
	Empty        bool           `json:"empty"`
	Questions    []QuestionView `json:"questions"`
	Gems         int            `json:"gems"`
	Points       int            `json:"points"`
	Subscribed   bool           `json:"subscribed"`
}

// Submission is one answer sent by the learner.
type Submission struct {
	AttemptID  string
	QuestionID int
	OptionID   *int
	Text       string
}

// Answer statuses.
const (
	StatusCorrect = "correct"
	StatusWrong   = "wrong"
	StatusBlocked = "blocked"
)

// AnswerResult is the outcome of a submission.
type AnswerResult struct {
	Status        string `json:"status"`
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Explanation   string `json:"explanation,omitempty"`
	GemsRemaining int    `json:"gemsRemaining"`
	PointsTotal   int    `json:"pointsTotal"`
	OutOfGems     bool   `json:"outOfGems"`
	Duplicate     bool   `json:"duplicate"`
	Streak        int    `json:"streak"`
}

// Summary is the end-of-drill report.
type Summary struct {
	AttemptID       string       `json:"attemptId"`
	DrillID         int          `json:"drillId"`
	Mode            string       `json:"mode"`
	Score           float64      `json:"score"`
	Tier            string       `json:"tier"`
	Message         string       `json:"message"`
	ShowCelebration bool         `json:"showCelebration"`
	Pace            economy.Pace `json:"pace,omitempty"`
	Expired         bool         `json:"expired"`
	Correct         int          `json:"correct"`
	Considered      int          `json:"considered"`
	TimeTakenSec    float64      `json:"timeTakenSeconds"`
	ExpectedSec     float64      `json:"expectedSeconds"`
	DrillCompleted  bool         `json:"drillCompleted"`
	NextDrillID     *int         `json:"nextDrillId,omitempty"`
	Gems            int          `json:"gems"`
	Points          int          `json:"points"`
	Streak          int          `json:"streak"`
}

// AdvanceResult reports the cursor after an advance.
type AdvanceResult struct {
	Position int      `json:"position"`
	Target   int      `json:"target"`
	Done     bool     `json:"done"`
	Summary  *Summary `json:"summary,omitempty"`
}

// StartDrill opens or resumes an attempt on drillID. Untimed graded drills
// resume where the learner stopped; timed drills always start over. A drill
// without questions returns a Play with Empty set and no attempt.
func (s *Service) StartDrill(ctx context.Context, userID string, drillID int) (play *Play, err error) {
	ctx, span := s.start(ctx, "StartDrill", attribute.Int("drill_id", drillID))
	defer func() { s.finishSpan(span, "StartDrill", err) }()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	err = s.inTx(ctx, func(t *Service) error {
		var err error
		play, err = t.startDrill(ctx, userID, drillID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return play, nil
}

func (s *Service) startDrill(ctx context.Context, userID string, drillID int) (*Play, error) {
	drill, err := s.content.GetDrill(ctx, drillID)
	if err != nil {
		return nil, persist("load drill", err)
	}
	views, p, _, err := s.layout(ctx, userID, drill.CourseID)
	if err != nil {
		return nil, err
	}
	row, ok := progression.Find(views, drillID)
	if !ok {
		return nil, ErrNotFound
	}
	if !row.IsUnlocked {
		return nil, ErrLocked
	}
	subscribed, err := s.subs.Active(ctx, userID)
	if err != nil {
		return nil, persist("load subscription", err)
	}

	play := &Play{
		CourseID:   drill.CourseID,
		DrillID:    drill.ID,
		Title:      drill.Title,
		IsTimed:    drill.IsTimed,
		Gems:       p.Gems,
		Points:     p.Points,
		Subscribed: subscribed,
		Questions:  []QuestionView{},
	}
	target := s.rules.Target(drill.QuestionCount)
	if target == 0 {
		play.Empty = true
		return play, nil
	}

	mode := progression.ModeFor(row.State)
	spec := session.Spec{
		UserID:   userID,
		CourseID: drill.CourseID,
		DrillID:  drill.ID,
		Mode:     mode,
		IsTimed:  drill.IsTimed,
		Target:   target,
	}
	if mode == economy.Graded && row.IsCurrent && !drill.IsTimed && p.QuestionsCompleted > 0 {
		// Serve only the work left on the current drill and carry the
		// finished part into the score.
		if left := target - p.QuestionsCompleted; left > 0 {
			spec.Target = left
			spec.Carried = p.QuestionsCompleted
			spec.CarriedCorrect = min(p.QuestionsCorrect, p.QuestionsCompleted)
		}
	}

	sess, created, err := s.sessions.GetOrCreate(ctx, spec)
	if err != nil {
		return nil, persist("open attempt", err)
	}

	if created && mode == economy.Graded && row.IsCurrent && drill.IsTimed && p.QuestionsCompleted > 0 {
		if _, _, err := s.updateProgress(ctx, userID, drill.CourseID, func(p *store.Progress) error {
			p.QuestionsCompleted = 0
			p.QuestionsCorrect = 0
			return nil
		}); err != nil {
			return nil, err
		}
	}

	// Fill the served list up to the target; a resumed attempt only tops up
	// what it is missing.
	if missing := sess.Target - len(sess.Served); missing > 0 {
		extra, err := s.bank.Sample(ctx, drill.ID, missing, sess.Served)
		if err != nil {
			return nil, persist("sample questions", err)
		}
		ids := sess.Remaining()
		for _, q := range extra {
			ids = append(ids, q.ID)
		}
		if err := s.sessions.Serve(ctx, sess, ids); err != nil {
			return nil, persist("serve questions", err)
		}
	}

	hi := min(sess.Target, len(sess.Served))
	upcoming := sess.Served[min(sess.Position, hi):hi]
	qs, err := s.content.Questions(ctx, upcoming)
	if err != nil {
		return nil, persist("load questions", err)
	}
	for _, q := range qs {
		play.Questions = append(play.Questions, questionView(q))
	}

	play.AttemptID = sess.ID
	play.Mode = sess.Mode.String()
	play.Target = sess.Target
	play.Position = sess.Position
	play.CorrectCount = sess.CorrectCount
	play.Carried = sess.Carried
	play.Resumed = !created
	play.Empty = sess.Target == 0
	if drill.IsTimed {
		play.TimeLimit = s.rules.ExpectedTime(sess.Target)
		play.TimeLimitSec = int(play.TimeLimit.Seconds())
	}

	s.log.Info("drill started",
		zap.String("user_id", userID),
		zap.Int("drill_id", drill.ID),
		zap.String("attempt_id", sess.ID),
		zap.String("mode", play.Mode),
		zap.Bool("resumed", play.Resumed),
		zap.Int("target", sess.Target))
	return play, nil
}

// session loads an attempt owned by userID.
func (s *Service) session(ctx context.Context, userID, attemptID string) (*session.Session, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, attemptID)
	if err != nil {
		return nil, persist("load attempt", err)
	}
	if sess.UserID != userID {
		return nil, ErrNotFound
	}
	return sess, nil
}

// SubmitAnswer records an answer and applies the economy. A graded
// submission with no gems left is refused with OutOfGems set and nothing is
// recorded. Submitting the same question twice returns the first result with
// Duplicate set and changes nothing.
func (s *Service) SubmitAnswer(ctx context.Context, userID string, sub Submission) (res *AnswerResult, err error) {
	ctx, span := s.start(ctx, "SubmitAnswer",
		attribute.String("attempt_id", sub.AttemptID),
		attribute.Int("question_id", sub.QuestionID))
	defer func() { s.finishSpan(span, "SubmitAnswer", err) }()

	var ranked *store.Progress
	err = s.inTx(ctx, func(t *Service) error {
		var err error
		res, ranked, err = t.submitAnswer(ctx, userID, sub)
		return err
	})
	if err != nil {
		return nil, err
	}
	if ranked != nil {
		s.recordRank(ctx, ranked)
	}
	return res, nil
}

// submitAnswer does the work of SubmitAnswer. The returned progress is set
// when the points moved and the leaderboard needs the new total.
func (s *Service) submitAnswer(ctx context.Context, userID string, sub Submission) (*AnswerResult, *store.Progress, error) {
	sess, err := s.session(ctx, userID, sub.AttemptID)
	if err != nil {
		return nil, nil, err
	}
	qs, err := s.content.Questions(ctx, []int{sub.QuestionID})
	if err != nil {
		return nil, nil, persist("load question", err)
	}
	if len(qs) == 0 || qs[0].DrillID != sess.DrillID {
		return nil, nil, ErrNotFound
	}
	q := qs[0]

	p, err := s.progress.GetProgress(ctx, userID, sess.CourseID)
	if err != nil {
		return nil, nil, persist("load progress", err)
	}
	if p == nil {
		return nil, nil, ErrNotFound
	}
	reveal := func(res *AnswerResult) *AnswerResult {
		res.CorrectAnswer = session.CorrectAnswer(q)
		res.Explanation = q.Explanation
		return res
	}

	if prior, ok, err := s.sessions.Prior(ctx, sess, q.ID); err != nil {
		return nil, nil, persist("load answer", err)
	} else if ok {
		return reveal(s.answerResult(prior.Correct, *p, true)), nil, nil
	}

	subscribed, err := s.subs.Active(ctx, userID)
	if err != nil {
		return nil, nil, persist("load subscription", err)
	}
	if s.rules.Blocked(sess.Mode, p.Gems, subscribed) {
		s.log.Info("submission blocked, out of gems", zap.String("user_id", userID), zap.String("attempt_id", sess.ID))
		return &AnswerResult{
			Status:        StatusBlocked,
			GemsRemaining: p.Gems,
			PointsTotal:   p.Points,
			OutOfGems:     true,
			Streak:        p.CurrentStreak,
		}, nil, nil
	}

	rec, err := s.sessions.RecordAnswer(ctx, sess, q, session.Response{OptionID: sub.OptionID, Text: sub.Text})
	switch {
	case errors.Is(err, session.ErrClosed), errors.Is(err, session.ErrWrongQuestion):
		return nil, nil, fmt.Errorf("%w: %v", ErrConflict, err)
	case err != nil:
		return nil, nil, persist("record answer", err)
	}
	if rec.Duplicate {
		return reveal(s.answerResult(rec.Correct, *p, true)), nil, nil
	}

	today := s.today()
	var gem economy.GemOutcome
	prev, next, err := s.updateProgress(ctx, userID, sess.CourseID, func(p *store.Progress) error {
		gem = s.rules.GemDelta(sess.Mode, rec.Correct, p.Gems, subscribed)
		p.Gems = gem.Gems
		p.Points += s.rules.PointsDelta(rec.Correct)
		streak := economy.StreakUpdate(economy.Streak{Current: p.CurrentStreak, Longest: p.LongestStreak}, p.LastActivityDate, today)
		p.CurrentStreak, p.LongestStreak = streak.Current, streak.Longest
		p.LastActivityDate = today
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.events.AppendAnswerEvent(ctx, store.AnswerEventData{
		UserID:     userID,
		AttemptID:  sess.ID,
		DrillID:    sess.DrillID,
		QuestionID: q.ID,
		Mode:       sess.Mode.String(),
		Correct:    rec.Correct,
	}); err != nil {
		s.log.Warn("answer event not recorded", zap.Error(err))
	}
	s.logEconomy(ctx, "answer", prev, next)
	var ranked *store.Progress
	if next.Points != prev.Points {
		ranked = &next
	}

	res := reveal(s.answerResult(rec.Correct, next, false))
	res.OutOfGems = gem.OutOfGems || s.rules.Blocked(sess.Mode, next.Gems, subscribed)
	return res, ranked, nil
}

func (s *Service) answerResult(correct bool, p store.Progress, duplicate bool) *AnswerResult {
	status := StatusWrong
	if correct {
		status = StatusCorrect
	}
	return &AnswerResult{
		Status:        status,
		Correct:       correct,
		GemsRemaining: p.Gems,
		PointsTotal:   p.Points,
		Duplicate:     duplicate,
		Streak:        p.CurrentStreak,
	}
}

// Advance moves past the answered question at the cursor. elapsed is the
// active (unpaused) time spent on the attempt, zero for wall time. On the
// last question the attempt completes and the summary is returned.
func (s *Service) Advance(ctx context.Context, userID, attemptID string, elapsed time.Duration) (res *AdvanceResult, err error) {
	ctx, span := s.start(ctx, "Advance", attribute.String("attempt_id", attemptID))
	defer func() { s.finishSpan(span, "Advance", err) }()

	err = s.inTx(ctx, func(t *Service) error {
		var err error
		res, err = t.advance(ctx, userID, attemptID, elapsed)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) advance(ctx context.Context, userID, attemptID string, elapsed time.Duration) (*AdvanceResult, error) {
	sess, err := s.session(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	before := sess.Position
	c, err := s.sessions.Advance(ctx, sess, elapsed)
	if err != nil {
		return nil, persist("advance attempt", err)
	}

	res := &AdvanceResult{Position: sess.Position, Target: sess.Target, Done: sess.Done() || !sess.Active()}
	if c != nil {
		sum, err := s.summarize(ctx, c)
		if err != nil {
			return nil, err
		}
		res.Summary = sum
		return res, nil
	}

	if sess.Position > before && sess.Mode == economy.Graded {
		if err := s.bumpQuestionsCompleted(ctx, sess, sess.Served[before]); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// bumpQuestionsCompleted mirrors one more finished question of the current
// drill into the progress row.
func (s *Service) bumpQuestionsCompleted(ctx context.Context, sess *session.Session, questionID int) error {
	current, err := s.isCurrent(ctx, sess.UserID, sess.CourseID, sess.DrillID)
	if err != nil || !current {
		return err
	}
	drill, err := s.content.GetDrill(ctx, sess.DrillID)
	if err != nil {
		return persist("load drill", err)
	}
	ans, _, err := s.sessions.Prior(ctx, sess, questionID)
	if err != nil {
		return persist("load answer", err)
	}
	limit := s.rules.Target(drill.QuestionCount)
	_, _, err = s.updateProgress(ctx, sess.UserID, sess.CourseID, func(p *store.Progress) error {
		if p.QuestionsCompleted >= limit {
			return nil
		}
		p.QuestionsCompleted++
		if ans.Correct {
			p.QuestionsCorrect++
		}
		return nil
	})
	return err
}

func (s *Service) isCurrent(ctx context.Context, userID string, courseID, drillID int) (bool, error) {
	views, _, _, err := s.layout(ctx, userID, courseID)
	if err != nil {
		return false, err
	}
	row, ok := progression.Find(views, drillID)
	return ok && row.IsCurrent, nil
}

// Expire finishes a timed attempt whose countdown ran out.
func (s *Service) Expire(ctx context.Context, userID, attemptID string, elapsed time.Duration) (_ *Summary, err error) {
	ctx, span := s.start(ctx, "Expire", attribute.String("attempt_id", attemptID))
	defer func() { s.finishSpan(span, "Expire", err) }()

	var sum *Summary
	err = s.inTx(ctx, func(t *Service) error {
		sess, err := t.session(ctx, userID, attemptID)
		if err != nil {
			return err
		}
		if !sess.IsTimed {
			return ErrNotTimed
		}
		c, err := t.sessions.Expire(ctx, sess, elapsed)
		if errors.Is(err, session.ErrClosed) {
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
		if err != nil {
			return persist("expire attempt", err)
		}
		sum, err = t.summarize(ctx, c)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sum, nil
}

// Abandon closes an attempt without completing it.
func (s *Service) Abandon(ctx context.Context, userID, attemptID string) (err error) {
	ctx, span := s.start(ctx, "Abandon", attribute.String("attempt_id", attemptID))
	defer func() { s.finishSpan(span, "Abandon", err) }()

	sess, err := s.session(ctx, userID, attemptID)
	if err != nil {
		return err
	}
	if err := s.sessions.Abandon(ctx, sess); err != nil {
		return persist("abandon attempt", err)
	}
	return nil
}

// onComplete persists the drill completion and moves the current drill
// pointer when the finished drill was the learner's current one.
func (s *Service) onComplete(ctx context.Context, c session.Completion) error {
	sess := c.Session
	views, _, units, err := s.layout(ctx, sess.UserID, sess.CourseID)
	if err != nil {
		return err
	}
	row, _ := progression.Find(views, sess.DrillID)
	wasCurrent := row.IsCurrent && sess.Mode == economy.Graded
	completed := c.Finished()

	if completed {
		err := s.progress.UpsertCompletion(ctx, store.Completion{
			UserID:      sess.UserID,
			DrillID:     sess.DrillID,
			CourseID:    sess.CourseID,
			BestScore:   s.rules.ScorePercentage(sess.CorrectCount, c.Considered),
			CompletedAt: s.now(),
			AttemptID:   sess.ID,
		})
		if err != nil {
			return persist("record completion", err)
		}
	}

	if wasCurrent && (completed || sess.IsTimed) {
		_, next, err := s.updateProgress(ctx, sess.UserID, sess.CourseID, func(p *store.Progress) error {
			p.QuestionsCompleted = 0
			p.QuestionsCorrect = 0
			if completed {
				p.CurrentDrillID = progression.Next(units, sess.DrillID)
			}
			return nil
		})
		if err != nil {
			return err
		}
		if completed {
			s.log.Info("drill completed",
				zap.String("user_id", sess.UserID),
				zap.Int("drill_id", sess.DrillID),
				zap.Any("next_drill_id", next.CurrentDrillID))
		}
	}
	return nil
}

func (s *Service) summarize(ctx context.Context, c *session.Completion) (*Summary, error) {
	sess := c.Session
	score := s.rules.ScorePercentage(sess.CorrectCount, c.Considered)
	expected := s.rules.ExpectedTime(sess.Carried + sess.Target)
	result := economy.ResultMessage(sess.IsTimed, score, sess.TimeTaken, expected)

	sum := &Summary{
		AttemptID:       sess.ID,
		DrillID:         sess.DrillID,
		Mode:            sess.Mode.String(),
		Score:           score,
		Tier:            result.Tier.String(),
		Message:         result.Message,
		ShowCelebration: result.ShowCelebration,
		Expired:         c.Expired,
		Correct:         sess.CorrectCount,
		Considered:      c.Considered,
		TimeTakenSec:    sess.TimeTaken.Seconds(),
		ExpectedSec:     expected.Seconds(),
		DrillCompleted:  c.Finished(),
	}
	if sess.IsTimed {
		sum.Pace = result.Pace
	}

	p, err := s.progress.GetProgress(ctx, sess.UserID, sess.CourseID)
	if err != nil {
		return nil, persist("load progress", err)
	}
	if p != nil {
		sum.NextDrillID = p.CurrentDrillID
		sum.Gems = p.Gems
		sum.Points = p.Points
		sum.Streak = p.CurrentStreak
	}
	return sum, nil
}
