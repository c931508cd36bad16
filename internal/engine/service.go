// Package engine orchestrates drills: it serves question samples, records
// answers, applies the gem and point economy, tracks streaks and moves the
// learner along the course.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/abhisek/drillz/internal/bank"
	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/leaderboard"
	"github.com/abhisek/drillz/internal/progression"
	"github.com/abhisek/drillz/internal/session"
	"github.com/abhisek/drillz/internal/store"
	"github.com/abhisek/drillz/internal/subscription"
)

// maxSwapRetries bounds the compare-and-swap loop on progress rows.
const maxSwapRetries = 8

var errSwapConflict = errors.New("progress changed concurrently")

// Options configures a Service.
type Options struct {
	Store    *store.Store
	Rules    economy.Rules
	Logger   *zap.Logger
	Ranker   leaderboard.Ranker // nil ranks from the progress table
	Location *time.Location     // calendar day for streaks; nil means UTC
	Bank     *bank.Bank         // nil samples with the process random source
}

// Service is the drill engine. It is safe for concurrent use.
type Service struct {
	store    *store.Store
	log      *zap.Logger
	tracer   trace.Tracer
	rules    economy.Rules
	gate     *progression.Gate
	content  store.ContentRepo
	progress store.ProgressRepo
	events   store.EventRepo
	subs     *subscription.Checker
	bank     *bank.Bank
	sessions *session.Manager
	ranker   leaderboard.Ranker
	loc      *time.Location
	now      func() time.Time
}

// New wires a Service on top of the store.
func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	st := opts.Store

	s := &Service{
		store:    st,
		log:      log.Named("engine"),
		tracer:   otel.Tracer("github.com/abhisek/drillz/internal/engine"),
		rules:    opts.Rules,
		gate:     progression.New(opts.Rules),
		content:  st.ContentRepo(),
		progress: st.ProgressRepo(),
		events:   st.EventRepo(),
		subs:     subscription.NewChecker(st.SubscriptionRepo()),
		bank:     opts.Bank,
		ranker:   opts.Ranker,
		loc:      loc,
		now:      time.Now,
	}
	if s.bank == nil {
		s.bank = bank.New(s.content)
	}
	if s.ranker == nil {
		s.ranker = leaderboard.NewSQLRanker(s.progress)
	}
	s.sessions = session.NewManager(st.AttemptRepo(), st.EventRepo())
	s.sessions.ScoreWith(s.rules.ScorePercentage)
	s.sessions.OnComplete(s.onComplete)
	return s
}

// inTx runs fn against a copy of s whose repositories share one
// transaction, so every write of a request commits or none does.
func (s *Service) inTx(ctx context.Context, fn func(t *Service) error) error {
	var fnErr error
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		t := *s
		t.content = tx.ContentRepo()
		t.progress = tx.ProgressRepo()
		t.events = tx.EventRepo()
		t.sessions = s.sessions.Bind(tx.AttemptRepo(), t.events)
		t.sessions.OnComplete(t.onComplete)
		fnErr = fn(&t)
		return fnErr
	})
	if fnErr != nil {
		return fnErr
	}
	return persist("commit", err)
}

// Rules returns the economy rules in effect.
func (s *Service) Rules() economy.Rules {
	return s.rules
}

func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "engine."+op, trace.WithAttributes(attrs...))
}

// finishSpan records err on span and logs persistence failures.
func (s *Service) finishSpan(span trace.Span, op string, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if IsRetryable(err) {
			s.log.Error("store failure", zap.String("op", op), zap.Error(err))
		}
	}
	span.End()
}

func (s *Service) today() string {
	return economy.Day(s.now(), s.loc)
}

func requireUser(userID string) error {
	if userID == "" {
		return ErrUnauthorized
	}
	return nil
}

// ensureProgress returns the (user, course) progress row, creating it with
// a full gem balance and the first drill as current when missing.
func (s *Service) ensureProgress(ctx context.Context, userID string, courseID int) (*store.Progress, []store.Unit, error) {
	units, err := s.content.Outline(ctx, courseID)
	if err != nil {
		return nil, nil, persist("load outline", err)
	}
	p, err := s.progress.GetProgress(ctx, userID, courseID)
	if err != nil {
		return nil, nil, persist("load progress", err)
	}
	if p != nil {
		return p, units, nil
	}

	err = s.progress.CreateProgress(ctx, store.Progress{
		UserID:         userID,
		CourseID:       courseID,
		CurrentDrillID: progression.First(units),
		Gems:           s.rules.Constants().GemsLimit,
	})
	if err != nil {
		return nil, nil, persist("create progress", err)
	}
	p, err = s.progress.GetProgress(ctx, userID, courseID)
	if err != nil {
		return nil, nil, persist("load progress", err)
	}
	if p == nil {
		return nil, nil, &PersistenceError{Op: "create progress", Err: fmt.Errorf("row missing after insert")}
	}
	s.recordRank(ctx, p)
	return p, units, nil
}

// updateProgress applies fn to the latest progress row and writes it back
// with compare-and-swap, retrying when another writer raced us. fn may be
// called more than once and must be pure over its input.
func (s *Service) updateProgress(ctx context.Context, userID string, courseID int, fn func(p *store.Progress) error) (store.Progress, store.Progress, error) {
	for range maxSwapRetries {
		cur, err := s.progress.GetProgress(ctx, userID, courseID)
		if err != nil {
			return store.Progress{}, store.Progress{}, persist("load progress", err)
		}
		if cur == nil {
			return store.Progress{}, store.Progress{}, ErrNotFound
		}
		next := *cur
		if err := fn(&next); err != nil {
			return *cur, store.Progress{}, err
		}
		if next == *cur {
			return *cur, next, nil
		}
		ok, err := s.progress.SwapProgress(ctx, *cur, next)
		if err != nil {
			return store.Progress{}, store.Progress{}, persist("swap progress", err)
		}
		if ok {
			return *cur, next, nil
		}
	}
	return store.Progress{}, store.Progress{}, persist("swap progress", errSwapConflict)
}

func (s *Service) recordRank(ctx context.Context, p *store.Progress) {
	if err := s.ranker.Record(ctx, p.CourseID, p.UserID, p.Points); err != nil {
		s.log.Warn("leaderboard update failed", zap.String("user_id", p.UserID), zap.Error(err))
	}
}

func (s *Service) logEconomy(ctx context.Context, reason string, prev, next store.Progress) {
	if prev.Gems == next.Gems && prev.Points == next.Points {
		return
	}
	err := s.events.AppendEconomyEvent(ctx, store.EconomyEventData{
		UserID:      next.UserID,
		CourseID:    next.CourseID,
		Reason:      reason,
		GemsDelta:   next.Gems - prev.Gems,
		PointsDelta: next.Points - prev.Points,
		GemsAfter:   next.Gems,
		PointsAfter: next.Points,
	})
	if err != nil {
		s.log.Warn("economy event not recorded", zap.String("reason", reason), zap.Error(err))
	}
}
