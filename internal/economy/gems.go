package economy

import "errors"

var (
	// ErrInsufficientPoints means a refill was requested without enough points.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrAlreadyFull means a refill was requested with gems at the limit.
	ErrAlreadyFull = errors.New("gems already full")
)

// GemOutcome is the effect of one answer on the gem balance.
type GemOutcome struct {
	Gems  int
	Delta int
	// OutOfGems is set when a graded wrong answer found no gem to spend.
	// It is a signal for the presentation layer, not an error.
	OutOfGems bool
}

// GemDelta applies one answer to the gem balance. Graded wrong answers cost
// one gem and never take the balance below zero. Practice never deducts and
// a correct practice answer restores one gem up to the limit. Subscribers
// never spend gems.
func (r Rules) GemDelta(mode Mode, correct bool, gems int, subscribed bool) GemOutcome {
	gems = max(0, min(gems, r.c.GemsLimit))
	out := GemOutcome{Gems: gems}

	switch {
	case mode == Practice && correct:
		if gems < r.c.GemsLimit {
			out.Gems = gems + 1
			out.Delta = 1
		}
	case mode == Practice, correct, subscribed:
	case gems == 0:
		out.OutOfGems = true
	default:
		out.Gems = gems - 1
		out.Delta = -1
	}
	return out
}

// PointsDelta returns the points earned by one answer.
func (r Rules) PointsDelta(correct bool) int {
	if !correct {
		return 0
	}
	return r.c.PointsPerCorrect
}

// Blocked reports whether a graded submission must be refused because the
// learner has no gems left. Subscribers and practice are never blocked.
func (r Rules) Blocked(mode Mode, gems int, subscribed bool) bool {
	return mode == Graded && !subscribed && gems <= 0
}

// RefillOutcome is the balance after a refill.
type RefillOutcome struct {
	Gems   int
	Points int
}

// Refill trades points for a full gem balance.
func (r Rules) Refill(gems, points int) (RefillOutcome, error) {
	if gems >= r.c.GemsLimit {
		return RefillOutcome{}, ErrAlreadyFull
	}
	if points < r.c.PointsToRefill {
		return RefillOutcome{}, ErrInsufficientPoints
	}
	return RefillOutcome{Gems: r.c.GemsLimit, Points: points - r.c.PointsToRefill}, nil
}
