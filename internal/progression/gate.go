// Package progression decides which drills of a course a learner may play.
package progression

import (
	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/store"
)

// State is where a drill sits on the learner's path.
type State int

const (
	Locked State = iota
	Current
	Completed
	// Open is a drill before the current one that was never completed,
	// for instance one added to the course after the learner moved past it.
	Open
)

func (s State) String() string {
	switch s {
	case Current:
		return "current"
	case Completed:
		return "completed"
	case Open:
		return "open"
	default:
		return "locked"
	}
}

// Label is the call to action shown on a drill.
type Label string

const (
	LabelStart    Label = "Start"
	LabelResume   Label = "Resume"
	LabelPractice Label = "Practice"
	LabelLocked   Label = "Locked"
)

// LabelFor returns the label of the current drill. Timed drills always
// restart, so they never offer Resume.
func LabelFor(questionsCompleted int, isTimed bool) Label {
	if questionsCompleted > 0 && !isTimed {
		return LabelResume
	}
	return LabelStart
}

// DrillView is one row of the drill list.
type DrillView struct {
	DrillID    int     `json:"drillId"`
	UnitID     int     `json:"unitId"`
	Title      string  `json:"title"`
	IsUnlocked bool    `json:"isUnlocked"`
	IsCurrent  bool    `json:"isCurrent"`
	IsTimed    bool    `json:"isTimed"`
	Label      Label   `json:"label"`
	Percentage float64 `json:"percentage"`
	State      State   `json:"-"`
	Questions  int     `json:"questions"`
}

// UnitView groups drill rows under their unit.
type UnitView struct {
	UnitID      int         `json:"unitId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Drills      []DrillView `json:"drills"`
}

// Input is everything the gate needs to lay out a course.
type Input struct {
	Units              []store.Unit // play order, as returned by ContentRepo.Outline
	Completed          map[int]bool
	CurrentDrillID     *int
	QuestionsCompleted int
	Subscribed         bool
}

// Gate lays out drill states against the economy rules.
type Gate struct {
	rules economy.Rules
}

// New returns a gate using rules for drill targets.
func New(rules economy.Rules) *Gate {
	return &Gate{rules: rules}
}

// Order flattens the outline into play order.
func Order(units []store.Unit) []store.Drill {
	var out []store.Drill
	for _, u := range units {
		out = append(out, u.Drills...)
	}
	return out
}

// First returns the first drill of the course, nil for an empty course.
func First(units []store.Unit) *int {
	order := Order(units)
	if len(order) == 0 {
		return nil
	}
	id := order[0].ID
	return &id
}

// Next returns the drill after drillID, nil when drillID is the last one
// or unknown.
func Next(units []store.Unit, drillID int) *int {
	order := Order(units)
	for i, d := range order {
		if d.ID == drillID && i+1 < len(order) {
			id := order[i+1].ID
			return &id
		}
	}
	return nil
}

// currentIndex resolves the learner's current drill in order. A pointer
// that is missing, unknown or already completed falls forward to the first
// drill not yet completed; -1 means nothing is left to play.
func currentIndex(order []store.Drill, in Input) int {
	if in.CurrentDrillID != nil {
		for i, d := range order {
			if d.ID == *in.CurrentDrillID && !in.Completed[d.ID] {
				return i
			}
		}
	}
	for i, d := range order {
		if !in.Completed[d.ID] {
			return i
		}
	}
	return -1
}

// Build computes the drill list of a course.
func (g *Gate) Build(in Input) []UnitView {
	order := Order(in.Units)
	cur := currentIndex(order, in)
	curID := 0
	if cur >= 0 {
		curID = order[cur].ID
	}

	pos := make(map[int]int, len(order))
	for i, d := range order {
		pos[d.ID] = i
	}
	if cur < 0 {
		cur = len(order)
	}

	views := make([]UnitView, 0, len(in.Units))
	for _, u := range in.Units {
		uv := UnitView{UnitID: u.ID, Title: u.Title, Description: u.Description, Drills: []DrillView{}}
		for _, d := range u.Drills {
			uv.Drills = append(uv.Drills, g.view(d, in, d.ID == curID, pos[d.ID] < cur))
		}
		views = append(views, uv)
	}
	return views
}

// view renders one drill. passed is set for drills ordered before the
// current one.
func (g *Gate) view(d store.Drill, in Input, isCurrent, passed bool) DrillView {
	v := DrillView{
		DrillID:   d.ID,
		UnitID:    d.UnitID,
		Title:     d.Title,
		IsTimed:   d.IsTimed,
		Questions: d.QuestionCount,
	}
	switch {
	case in.Completed[d.ID]:
		v.State = Completed
		v.Label = LabelPractice
		v.Percentage = 100
	case isCurrent:
		v.State = Current
		v.IsCurrent = true
		v.Label = LabelFor(in.QuestionsCompleted, d.IsTimed)
		if !d.IsTimed {
			v.Percentage = g.percentage(in.QuestionsCompleted, d.QuestionCount)
		}
	case passed:
		v.State = Open
		v.Label = LabelStart
	default:
		v.State = Locked
		v.Label = LabelLocked
		if in.Subscribed {
			v.Label = LabelStart
		}
	}
	v.IsUnlocked = v.State != Locked || in.Subscribed
	return v
}

func (g *Gate) percentage(done, available int) float64 {
	target := g.rules.Target(available)
	if target <= 0 {
		return 0
	}
	return min(100, 100*float64(done)/float64(target))
}

// Find returns the row for drillID.
func Find(views []UnitView, drillID int) (DrillView, bool) {
	for _, u := range views {
		for _, d := range u.Drills {
			if d.DrillID == drillID {
				return d, true
			}
		}
	}
	return DrillView{}, false
}

// ModeFor returns the session mode for playing a drill in state s.
func ModeFor(s State) economy.Mode {
	if s == Completed {
		return economy.Practice
	}
	return economy.Graded
}

// IsComplete reports whether an attempt that answered done questions of a
// drill with available questions satisfies completion.
func (g *Gate) IsComplete(done, available int) bool {
	target := g.rules.Target(available)
	return target > 0 && done >= target
}
