package leaderboard

import (
	"context"
	"fmt"

	"github.com/abhisek/drillz/internal/store"
)

// SQLRanker reads standings straight from the progress table. Record is a
// no-op because the engine already persisted the points.
type SQLRanker struct {
	repo store.ProgressRepo
}

// NewSQLRanker returns a ranker over progress rows.
func NewSQLRanker(repo store.ProgressRepo) *SQLRanker {
	return &SQLRanker{repo: repo}
}

func (r *SQLRanker) Record(context.Context, int, string, int) error { return nil }

func (r *SQLRanker) Remove(context.Context, int, string) error { return nil }

func (r *SQLRanker) Top(ctx context.Context, courseID, limit int) ([]Entry, error) {
	all, err := r.standings(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *SQLRanker) Rank(ctx context.Context, courseID int, userID string) (Entry, bool, error) {
	all, err := r.standings(ctx, courseID)
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range all {
		if e.UserID == userID {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func (r *SQLRanker) standings(ctx context.Context, courseID int) ([]Entry, error) {
	rows, err := r.repo.Standings(ctx, courseID, 0)
	if err != nil {
		return nil, fmt.Errorf("load standings: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, p := range rows {
		entries = append(entries, Entry{UserID: p.UserID, Points: p.Points})
	}
	return Standardize(entries), nil
}
