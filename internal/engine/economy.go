package engine

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/store"
)

// Refill trades points for a full gem balance. It fails with
// economy.ErrAlreadyFull or economy.ErrInsufficientPoints.
func (s *Service) Refill(ctx context.Context, userID string, courseID int) (_ *ProgressView, err error) {
	ctx, span := s.start(ctx, "Refill", attribute.Int("course_id", courseID))
	defer func() { s.finishSpan(span, "Refill", err) }()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if _, _, err := s.ensureProgress(ctx, userID, courseID); err != nil {
		return nil, err
	}
	prev, next, err := s.updateProgress(ctx, userID, courseID, func(p *store.Progress) error {
		out, err := s.rules.Refill(p.Gems, p.Points)
		if err != nil {
			return err
		}
		p.Gems, p.Points = out.Gems, out.Points
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEconomy(ctx, "refill", prev, next)
	s.recordRank(ctx, &next)
	s.log.Info("gems refilled", zap.String("user_id", userID), zap.Int("course_id", courseID), zap.Int("points_left", next.Points))
	v := progressView(next)
	return &v, nil
}

// Reset wipes the user's progress in a course: completions, economy and
// streaks, open attempts and the active course pointer.
func (s *Service) Reset(ctx context.Context, userID string, courseID int) (err error) {
	ctx, span := s.start(ctx, "Reset", attribute.Int("course_id", courseID))
	defer func() { s.finishSpan(span, "Reset", err) }()

	if err := requireUser(userID); err != nil {
		return err
	}
	if _, err := s.content.GetCourse(ctx, courseID); err != nil {
		return persist("load course", err)
	}
	if err := s.progress.Reset(ctx, userID, courseID); err != nil {
		return persist("reset progress", err)
	}
	if err := s.ranker.Remove(ctx, courseID, userID); err != nil {
		s.log.Warn("leaderboard removal failed", zap.String("user_id", userID), zap.Error(err))
	}
	s.log.Info("progress reset", zap.String("user_id", userID), zap.Int("course_id", courseID))
	return nil
}
