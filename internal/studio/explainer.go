// Package studio fills in authoring gaps in imported courses with an LLM.
package studio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/drillz/internal/llm"
	"github.com/abhisek/drillz/internal/store"
)

// Config tunes explanation generation.
type Config struct {
	MaxTokens   int
	Temperature float64
	// Concurrency bounds in-flight provider calls.
	Concurrency int
}

// DefaultConfig is 3 parallel calls of up to 300 tokens.
func DefaultConfig() Config {
	return Config{MaxTokens: 300, Temperature: 0.3, Concurrency: 3}
}

// Report summarizes one Explain run.
type Report struct {
	Considered int
	Filled     int
	Failed     int
}

// Explainer writes explanations for questions that lack one.
type Explainer struct {
	provider llm.Provider
	content  store.ContentRepo
	cfg      Config
	log      *zap.Logger
}

// NewExplainer returns an Explainer backed by provider.
func NewExplainer(provider llm.Provider, content store.ContentRepo, cfg Config, log *zap.Logger) *Explainer {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Explainer{provider: provider, content: content, cfg: cfg, log: log.Named("studio")}
}

// Explain generates the explanation for one question without storing it.
func (e *Explainer) Explain(ctx context.Context, courseTitle string, q store.Question) (string, error) {
	req := llm.UserPrompt(systemPrompt, buildUserMessage(courseTitle, q))
	req.Schema = ExplanationSchema
	req.MaxTokens = e.cfg.MaxTokens
	req.Temperature = e.cfg.Temperature

	resp, err := e.provider.Generate(llm.WithPurpose(ctx, llm.PurposeExplanation), req)
	if err != nil {
		return "", fmt.Errorf("generate explanation: %w", err)
	}
	var out explanationOutput
	if err := resp.Decode(&out); err != nil {
		return "", fmt.Errorf("decode explanation: %w", err)
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", errors.New("empty explanation")
	}
	return text, nil
}

// Fill explains up to limit questions of courseID (0 for every course)
// that have no explanation and stores the results. A failed question is
// logged and counted; only store failures and cancellation abort the run.
func (e *Explainer) Fill(ctx context.Context, courseID, limit int) (Report, error) {
	qs, err := e.content.MissingExplanations(ctx, courseID, limit)
	if err != nil {
		return Report{}, fmt.Errorf("list questions: %w", err)
	}
	titles, err := e.courseTitles(ctx)
	if err != nil {
		return Report{}, err
	}

	var filled, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)
	for _, q := range qs {
		g.Go(func() error {
			text, err := e.Explain(gctx, titles[q.DrillID], q)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				e.log.Warn("explanation failed", zap.Int("question_id", q.ID), zap.Error(err))
				return nil
			}
			if err := e.content.SetExplanation(gctx, q.ID, text); err != nil {
				return fmt.Errorf("store explanation for question %d: %w", q.ID, err)
			}
			filled.Add(1)
			return nil
		})
	}
	err = g.Wait()

	rep := Report{Considered: len(qs), Filled: int(filled.Load()), Failed: int(failed.Load())}
	e.log.Info("explanations filled",
		zap.Int("course_id", courseID),
		zap.Int("considered", rep.Considered),
		zap.Int("filled", rep.Filled),
		zap.Int("failed", rep.Failed))
	return rep, err
}

// courseTitles maps drill ids to the title of their course.
func (e *Explainer) courseTitles(ctx context.Context) (map[int]string, error) {
	courses, err := e.content.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	out := make(map[int]string)
	for _, c := range courses {
		units, err := e.content.Outline(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("load outline of course %d: %w", c.ID, err)
		}
		for _, u := range units {
			for _, d := range u.Drills {
				out[d.ID] = c.Title
			}
		}
	}
	return out, nil
}
