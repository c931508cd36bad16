package economy

import (
	"fmt"
	"math"
	"time"
)

// ScorePercentage is 100*correct/min(considered, questions per drill),
// clamped to [0, 100]. No considered questions scores 0.
func (r Rules) ScorePercentage(correct, considered int) float64 {
	denom := min(considered, r.c.QuestionsPerDrill)
	if denom <= 0 || correct <= 0 {
		return 0
	}
	return math.Min(100, 100*float64(correct)/float64(denom))
}

// ExpectedTime is the countdown seed for a drill asking target questions.
func (r Rules) ExpectedTime(target int) time.Duration {
	return time.Duration(target*r.c.SecondsPerQuestion) * time.Second
}

// Tier buckets a final score.
type Tier int

const (
	TierComplete Tier = iota
	TierGood
	TierExcellent
)

func (t Tier) String() string {
	switch t {
	case TierExcellent:
		return "excellent"
	case TierGood:
		return "good"
	default:
		return "complete"
	}
}

// TierFor returns the tier of a score: >=90 excellent, >=70 good.
func TierFor(score float64) Tier {
	switch {
	case score >= 90:
		return TierExcellent
	case score >= 70:
		return TierGood
	default:
		return TierComplete
	}
}

// Pace compares the time taken against the expected time.
type Pace string

const (
	PaceSlow   Pace = "Slow"
	PaceFast   Pace = "Fast"
	PaceNormal Pace = "Time"
)

// PaceCaption is Slow above 1.5x the expected time, Fast below 0.75x and
// Time otherwise. A zero expected time is always Time.
func PaceCaption(timeTaken, expected time.Duration) Pace {
	if expected <= 0 {
		return PaceNormal
	}
	switch {
	case float64(timeTaken) > 1.5*float64(expected):
		return PaceSlow
	case float64(timeTaken) < 0.75*float64(expected):
		return PaceFast
	default:
		return PaceNormal
	}
}

// Result is the end-of-drill summary shown to the learner.
type Result struct {
	Score           float64
	Tier            Tier
	Message         string
	ShowCelebration bool
	Pace            Pace
}

// ResultMessage builds the summary for a finished drill. Pace remarks are
// only added to timed drills.
func ResultMessage(isTimed bool, score float64, timeTaken, expected time.Duration) Result {
	res := Result{
		Score: score,
		Tier:  TierFor(score),
		Pace:  PaceCaption(timeTaken, expected),
	}

	pct := fmt.Sprintf("%.0f%%", score)
	switch res.Tier {
	case TierExcellent:
		res.Message = "Excellent work! You scored " + pct + "."
		res.ShowCelebration = true
	case TierGood:
		res.Message = "Good job! You scored " + pct + "."
	default:
		res.Message = "Drill complete. You scored " + pct + ", keep practicing."
	}

	if isTimed {
		switch res.Pace {
		case PaceSlow:
			res.Message += " That was too slow, try to keep up with the clock."
		case PaceFast:
			res.Message += " That was very fast!"
		}
	}
	return res
}
