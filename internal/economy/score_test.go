package economy

import (
	"strings"
	"testing"
	"time"

	"github.com/abhisek/drillz/internal/config"
)

func TestScorePercentage(t *testing.T) {
	r := DefaultRules() // 10 questions per drill

	tests := []struct {
		correct, considered int
		want                float64
	}{
		{9, 10, 90},
		{0, 0, 0},
		{3, 4, 75},
		{10, 12, 100}, // denominator capped at questions per drill
		{12, 12, 100}, // clamped
		{0, 10, 0},
		{1, 3, 100.0 / 3},
	}
	for _, tt := range tests {
		got := r.ScorePercentage(tt.correct, tt.considered)
		if got != tt.want {
			t.Errorf("ScorePercentage(%d, %d) = %v, want %v", tt.correct, tt.considered, got, tt.want)
		}
	}
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{100, TierExcellent},
		{90, TierExcellent},
		{89.9, TierGood},
		{70, TierGood},
		{69.9, TierComplete},
		{0, TierComplete},
	}
	for _, tt := range tests {
		if got := TierFor(tt.score); got != tt.want {
			t.Errorf("TierFor(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestPaceCaption(t *testing.T) {
	expected := 60 * time.Second
	tests := []struct {
		taken time.Duration
		want  Pace
	}{
		{100 * time.Second, PaceSlow},
		{90 * time.Second, PaceNormal}, // exactly 1.5x is not slow
		{45 * time.Second, PaceNormal}, // exactly 0.75x is not fast
		{40 * time.Second, PaceFast},
		{60 * time.Second, PaceNormal},
	}
	for _, tt := range tests {
		if got := PaceCaption(tt.taken, expected); got != tt.want {
			t.Errorf("PaceCaption(%v, %v) = %q, want %q", tt.taken, expected, got, tt.want)
		}
	}

	if got := PaceCaption(time.Second, 0); got != PaceNormal {
		t.Errorf("PaceCaption with zero expected = %q, want %q", got, PaceNormal)
	}
}

func TestResultMessage(t *testing.T) {
	expected := 60 * time.Second

	t.Run("excellent timed slow", func(t *testing.T) {
		res := ResultMessage(true, 92, 100*time.Second, expected)
		if res.Tier != TierExcellent || !res.ShowCelebration {
			t.Errorf("got tier %v celebration %v, want excellent with celebration", res.Tier, res.ShowCelebration)
		}
		if !strings.HasPrefix(res.Message, "Excellent") || !strings.Contains(res.Message, "too slow") {
			t.Errorf("message = %q", res.Message)
		}
		if res.Pace != PaceSlow {
			t.Errorf("pace = %q, want Slow", res.Pace)
		}
	})

	t.Run("good timed fast", func(t *testing.T) {
		res := ResultMessage(true, 75, 30*time.Second, expected)
		if res.Tier != TierGood || res.ShowCelebration {
			t.Errorf("got tier %v celebration %v", res.Tier, res.ShowCelebration)
		}
		if !strings.Contains(res.Message, "very fast") {
			t.Errorf("message = %q, want fast remark", res.Message)
		}
	})

	t.Run("untimed never remarks on pace", func(t *testing.T) {
		res := ResultMessage(false, 40, 300*time.Second, expected)
		if res.Tier != TierComplete {
			t.Errorf("tier = %v, want complete", res.Tier)
		}
		if strings.Contains(res.Message, "slow") {
			t.Errorf("untimed message has pace remark: %q", res.Message)
		}
	})
}

func TestExpectedTimeAndTarget(t *testing.T) {
	r := NewRules(config.Economy{GemsLimit: 5, PointsToRefill: 10, PointsPerCorrect: 10, QuestionsPerDrill: 4, SecondsPerQuestion: 15})
	if got := r.ExpectedTime(4); got != time.Minute {
		t.Errorf("ExpectedTime(4) = %v, want 1m", got)
	}
	if got := r.Target(3); got != 3 {
		t.Errorf("Target(3) = %d, want 3", got)
	}
	if got := r.Target(9); got != 4 {
		t.Errorf("Target(9) = %d, want 4", got)
	}
}
