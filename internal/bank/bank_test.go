package bank

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/drillz/internal/store"
)

type fakeSource struct {
	ids []int
	err error
}

func (f *fakeSource) QuestionIDs(_ context.Context, _ int) ([]int, error) {
	return f.ids, f.err
}

func (f *fakeSource) Questions(_ context.Context, ids []int) ([]store.Question, error) {
	out := make([]store.Question, len(ids))
	for i, id := range ids {
		out[i] = store.Question{ID: id}
	}
	return out, nil
}

func idsOf(qs []store.Question) []int {
	out := make([]int, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestSampleSizes(t *testing.T) {
	src := &fakeSource{ids: []int{1, 2, 3, 4, 5, 6, 7, 8}}
	b := NewSeeded(src, 1)
	ctx := context.Background()

	tests := []struct {
		count int
		want  int
	}{
		{3, 3},
		{8, 8},
		{20, 8}, // more than available returns all
		{0, 0},
	}
	for _, tt := range tests {
		qs, err := b.Sample(ctx, 1, tt.count, nil)
		if err != nil {
			t.Fatalf("Sample(%d): %v", tt.count, err)
		}
		if len(qs) != tt.want {
			t.Errorf("Sample(%d) returned %d questions, want %d", tt.count, len(qs), tt.want)
		}
		seen := map[int]bool{}
		for _, id := range idsOf(qs) {
			if seen[id] {
				t.Errorf("Sample(%d) repeated id %d", tt.count, id)
			}
			seen[id] = true
		}
	}
}

func TestSampleEmptyDrill(t *testing.T) {
	b := New(&fakeSource{})
	qs, err := b.Sample(context.Background(), 1, 10, nil)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if qs == nil || len(qs) != 0 {
		t.Errorf("Sample on empty drill = %v, want empty non-nil slice", qs)
	}
}

func TestSampleExcludes(t *testing.T) {
	b := NewSeeded(&fakeSource{ids: []int{1, 2, 3, 4, 5}}, 7)
	for i := 0; i < 50; i++ {
		qs, err := b.Sample(context.Background(), 1, 5, []int{2, 4})
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		if len(qs) != 3 {
			t.Fatalf("got %d questions, want 3", len(qs))
		}
		for _, id := range idsOf(qs) {
			if id == 2 || id == 4 {
				t.Fatalf("excluded id %d returned", id)
			}
		}
	}
}

func TestSampleError(t *testing.T) {
	boom := errors.New("boom")
	b := New(&fakeSource{err: boom})
	if _, err := b.Sample(context.Background(), 1, 3, nil); !errors.Is(err, boom) {
		t.Errorf("Sample error = %v, want wrapped boom", err)
	}
}

func TestPickUniform(t *testing.T) {
	// Each of 4 ids should lead a 1-sample roughly a quarter of the time.
	b := NewSeeded(&fakeSource{}, 42)
	counts := map[int]int{}
	const rounds = 4000
	for i := 0; i < rounds; i++ {
		got := Pick([]int{1, 2, 3, 4}, 1, nil, b.intn)
		counts[got[0]]++
	}
	for id := 1; id <= 4; id++ {
		if c := counts[id]; c < rounds/4-200 || c > rounds/4+200 {
			t.Errorf("id %d picked %d times of %d, want about %d", id, c, rounds, rounds/4)
		}
	}
}

func TestPickDoesNotMutateInput(t *testing.T) {
	ids := []int{1, 2, 3, 4, 5}
	Pick(ids, 5, nil, func(n int) int { return n - 1 })
	for i, want := range []int{1, 2, 3, 4, 5} {
		if ids[i] != want {
			t.Fatalf("input mutated: %v", ids)
		}
	}
}

func TestPickDropsDuplicates(t *testing.T) {
	got := Pick([]int{1, 1, 2}, 5, nil, func(int) int { return 0 })
	if len(got) != 2 {
		t.Errorf("Pick with duplicate ids = %v, want 2 distinct", got)
	}
}
