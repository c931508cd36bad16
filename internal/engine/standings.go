package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/abhisek/drillz/internal/leaderboard"
	"github.com/abhisek/drillz/internal/store"
)

// storeRecent bounds the economy history in Stats.
var storeRecent = store.QueryOpts{Limit: 20}

// StandingRow is one leaderboard row with the learner's display name.
type StandingRow struct {
	leaderboard.Entry
	DisplayName string `json:"displayName"`
}

// Standings is a course leaderboard plus the caller's own row.
type Standings struct {
	CourseID int           `json:"courseId"`
	Top      []StandingRow `json:"top"`
	Me       *StandingRow  `json:"me,omitempty"`
}

// Leaderboard returns the top limit learners of a course ranked by points.
// userID is optional; when set the caller's own rank is included.
func (s *Service) Leaderboard(ctx context.Context, userID string, courseID, limit int) (_ *Standings, err error) {
	ctx, span := s.start(ctx, "Leaderboard", attribute.Int("course_id", courseID))
	defer func() { s.finishSpan(span, "Leaderboard", err) }()

	if _, err := s.content.GetCourse(ctx, courseID); err != nil {
		return nil, persist("load course", err)
	}
	top, err := s.ranker.Top(ctx, courseID, limit)
	if err != nil {
		return nil, persist("load leaderboard", err)
	}

	out := &Standings{CourseID: courseID, Top: make([]StandingRow, 0, len(top))}
	for _, e := range top {
		out.Top = append(out.Top, s.standingRow(ctx, e))
	}
	if userID != "" {
		e, ok, err := s.ranker.Rank(ctx, courseID, userID)
		if err != nil {
			return nil, persist("load rank", err)
		}
		if ok {
			row := s.standingRow(ctx, e)
			out.Me = &row
		}
	}
	return out, nil
}

func (s *Service) standingRow(ctx context.Context, e leaderboard.Entry) StandingRow {
	row := StandingRow{Entry: e, DisplayName: e.UserID}
	if p, err := s.progress.GetProfile(ctx, e.UserID); err == nil && p != nil && p.DisplayName != "" {
		row.DisplayName = p.DisplayName
	}
	return row
}

// Stats is a learner's course report.
type Stats struct {
	Overview
	Rank        int                 `json:"rank,omitempty"`
	Completions []CompletionView    `json:"completions"`
	Recent      []EconomyChangeView `json:"recentEconomy"`
}

// CompletionView is one completed drill.
type CompletionView struct {
	DrillID   int     `json:"drillId"`
	BestScore float64 `json:"bestScore"`
	Attempts  int     `json:"attempts"`
}

// EconomyChangeView is one gem or point mutation.
type EconomyChangeView struct {
	Reason      string `json:"reason"`
	GemsDelta   int    `json:"gemsDelta"`
	PointsDelta int    `json:"pointsDelta"`
	At          string `json:"at"`
}

// Stats reports progress, completions, rank and recent economy changes.
func (s *Service) Stats(ctx context.Context, userID string, courseID int) (_ *Stats, err error) {
	ctx, span := s.start(ctx, "Stats", attribute.Int("course_id", courseID))
	defer func() { s.finishSpan(span, "Stats", err) }()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	ov, err := s.overview(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	st := &Stats{Overview: *ov, Completions: []CompletionView{}, Recent: []EconomyChangeView{}}

	if e, ok, err := s.ranker.Rank(ctx, courseID, userID); err != nil {
		return nil, persist("load rank", err)
	} else if ok {
		st.Rank = e.Rank
	}

	completions, err := s.progress.Completions(ctx, userID, courseID)
	if err != nil {
		return nil, persist("load completions", err)
	}
	for _, c := range completions {
		st.Completions = append(st.Completions, CompletionView{DrillID: c.DrillID, BestScore: c.BestScore, Attempts: c.Attempts})
	}

	events, err := s.events.QueryEconomyEvents(ctx, userID, storeRecent)
	if err != nil {
		return nil, persist("load economy events", err)
	}
	for _, ev := range events {
		if ev.CourseID != courseID {
			continue
		}
		st.Recent = append(st.Recent, EconomyChangeView{
			Reason:      ev.Reason,
			GemsDelta:   ev.GemsDelta,
			PointsDelta: ev.PointsDelta,
			At:          ev.Timestamp.In(s.loc).Format("2006-01-02 15:04"),
		})
	}
	return st, nil
}
