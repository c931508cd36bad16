package drill

import (
	"github.com/abhisek/drillz/internal/engine"
)

type playLoadedMsg struct {
	Play *engine.Play
	Err  error
}

type answeredMsg struct {
	Result *engine.AnswerResult
	Err    error
}

type advancedMsg struct {
	Result *engine.AdvanceResult
	Err    error
}

type expiredMsg struct {
	Summary *engine.Summary
	Err     error
}

type refilledMsg struct {
	Progress *engine.ProgressView
	Err      error
}

type abandonedMsg struct{}

// tickMsg is one second of the countdown of the attempt it names. Ticks of
// an attempt the screen no longer shows are dropped.
type tickMsg struct {
	AttemptID string
}
