// Package bank serves random question samples for a drill.
package bank

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/abhisek/drillz/internal/store"
)

// Source is the slice of the content store the bank reads from.
type Source interface {
	QuestionIDs(ctx context.Context, drillID int) ([]int, error)
	Questions(ctx context.Context, ids []int) ([]store.Question, error)
}

// Bank samples questions uniformly at random without replacement.
type Bank struct {
	src  Source
	intn func(n int) int
}

// New returns a bank drawing from the process-wide random source.
func New(src Source) *Bank {
	return &Bank{src: src, intn: rand.IntN}
}

// NewSeeded returns a bank with a deterministic random source. It is not
// safe for concurrent use.
func NewSeeded(src Source, seed uint64) *Bank {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &Bank{src: src, intn: r.IntN}
}

// Sample returns up to count questions of the drill, skipping exclude.
// Asking for more than the drill holds returns everything left; an empty
// drill returns an empty slice.
func (b *Bank) Sample(ctx context.Context, drillID, count int, exclude []int) ([]store.Question, error) {
	if count <= 0 {
		return []store.Question{}, nil
	}
	ids, err := b.src.QuestionIDs(ctx, drillID)
	if err != nil {
		return nil, fmt.Errorf("list drill questions: %w", err)
	}

	picked := Pick(ids, count, exclude, b.intn)
	if len(picked) == 0 {
		return []store.Question{}, nil
	}
	qs, err := b.src.Questions(ctx, picked)
	if err != nil {
		return nil, fmt.Errorf("load sampled questions: %w", err)
	}
	return qs, nil
}

// Pick draws up to count distinct ids from ids minus exclude with a partial
// Fisher–Yates shuffle. The input slice is not modified.
func Pick(ids []int, count int, exclude []int, intn func(n int) int) []int {
	skip := make(map[int]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	seen := make(map[int]struct{}, len(ids))
	pool := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := skip[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		pool = append(pool, id)
	}

	k := min(count, len(pool))
	for i := 0; i < k; i++ {
		j := i + intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
