// Package leaderboard ranks learners of a course by points.
package leaderboard

import (
	"context"
	"sort"
)

// Entry is one ranked row.
type Entry struct {
	Rank   int    `json:"rank"`
	UserID string `json:"userId"`
	Points int    `json:"points"`
}

// Ranker keeps per-course standings.
type Ranker interface {
	// Record stores the user's current point total for the course.
	Record(ctx context.Context, courseID int, userID string, points int) error

	// Top returns the best limit entries. A limit of 0 returns everyone.
	Top(ctx context.Context, courseID, limit int) ([]Entry, error)

	// Rank returns the user's entry; ok is false when the user has no
	// standing in the course.
	Rank(ctx context.Context, courseID int, userID string) (e Entry, ok bool, err error)

	// Remove drops the user from the course standings.
	Remove(ctx context.Context, courseID int, userID string) error
}

// Standardize sorts entries by points descending then user id and assigns
// standard competition ranks: tied users share a rank and the next rank
// skips (1, 2, 2, 4).
func Standardize(entries []Entry) []Entry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		if i > 0 && entries[i].Points == entries[i-1].Points {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
	return entries
}
