package economy

import "fmt"

// Mode says whether a session spends gems.
type Mode int

const (
	// Graded sessions play the current drill; wrong answers cost gems.
	Graded Mode = iota
	// Practice sessions replay a completed drill and never cost gems.
	Practice
)

func (m Mode) String() string {
	switch m {
	case Graded:
		return "graded"
	case Practice:
		return "practice"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode is the inverse of String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "graded":
		return Graded, nil
	case "practice":
		return Practice, nil
	}
	return Graded, fmt.Errorf("unknown session mode %q", s)
}
