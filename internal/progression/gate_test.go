package progression

import (
	"testing"

	"github.com/abhisek/drillz/internal/config"
	"github.com/abhisek/drillz/internal/economy"
	"github.com/abhisek/drillz/internal/store"
)

// outline: unit 1 has drills 10 and 11, unit 2 has timed drill 20.
func outline() []store.Unit {
	return []store.Unit{
		{ID: 1, Title: "Basics", Drills: []store.Drill{
			{ID: 10, UnitID: 1, Title: "a", QuestionCount: 10},
			{ID: 11, UnitID: 1, Title: "b", QuestionCount: 4},
		}},
		{ID: 2, Title: "Speed", Drills: []store.Drill{
			{ID: 20, UnitID: 2, Title: "c", IsTimed: true, QuestionCount: 12},
		}},
	}
}

func intp(i int) *int { return &i }

func flatten(views []UnitView) []DrillView {
	var out []DrillView
	for _, u := range views {
		out = append(out, u.Drills...)
	}
	return out
}

func TestLabelFor(t *testing.T) {
	tests := []struct {
		done  int
		timed bool
		want  Label
	}{
		{0, false, LabelStart},
		{3, false, LabelResume},
		{3, true, LabelStart},
		{0, true, LabelStart},
	}
	for _, tt := range tests {
		if got := LabelFor(tt.done, tt.timed); got != tt.want {
			t.Errorf("LabelFor(%d, %v) = %q, want %q", tt.done, tt.timed, got, tt.want)
		}
	}
}

func TestBuildFreshCourse(t *testing.T) {
	g := New(economy.DefaultRules())
	rows := flatten(g.Build(Input{Units: outline(), CurrentDrillID: intp(10)}))

	want := []struct {
		state    State
		unlocked bool
		label    Label
	}{
		{Current, true, LabelStart},
		{Locked, false, LabelLocked},
		{Locked, false, LabelLocked},
	}
	for i, w := range want {
		r := rows[i]
		if r.State != w.state || r.IsUnlocked != w.unlocked || r.Label != w.label {
			t.Errorf("row %d = %v/%v/%q, want %v/%v/%q", r.DrillID, r.State, r.IsUnlocked, r.Label, w.state, w.unlocked, w.label)
		}
	}
	if !rows[0].IsCurrent || rows[1].IsCurrent {
		t.Error("only the first drill should be current")
	}
}

func TestBuildMidCourse(t *testing.T) {
	g := New(economy.DefaultRules())
	rows := flatten(g.Build(Input{
		Units:              outline(),
		Completed:          map[int]bool{10: true},
		CurrentDrillID:     intp(11),
		QuestionsCompleted: 2,
	}))

	if rows[0].State != Completed || rows[0].Label != LabelPractice || rows[0].Percentage != 100 {
		t.Errorf("drill 10 = %+v, want completed practice at 100%%", rows[0])
	}
	if rows[1].State != Current || rows[1].Label != LabelResume {
		t.Errorf("drill 11 = %+v, want current resume", rows[1])
	}
	if rows[1].Percentage != 50 { // 2 of min(10, 4)
		t.Errorf("drill 11 percentage = %v, want 50", rows[1].Percentage)
	}
	if rows[2].IsUnlocked {
		t.Error("drill 20 should still be locked")
	}
}

func TestBuildTimedCurrentNeverResumes(t *testing.T) {
	g := New(economy.DefaultRules())
	rows := flatten(g.Build(Input{
		Units:              outline(),
		Completed:          map[int]bool{10: true, 11: true},
		CurrentDrillID:     intp(20),
		QuestionsCompleted: 5,
	}))
	if rows[2].Label != LabelStart || rows[2].Percentage != 0 {
		t.Errorf("timed drill = %+v, want Start at 0%%", rows[2])
	}
}

func TestBuildSubscriberUnlocksAll(t *testing.T) {
	g := New(economy.DefaultRules())
	rows := flatten(g.Build(Input{Units: outline(), CurrentDrillID: intp(10), Subscribed: true}))
	for _, r := range rows {
		if !r.IsUnlocked {
			t.Errorf("drill %d locked for subscriber", r.DrillID)
		}
	}
	if rows[2].State != Locked || rows[2].Label != LabelStart {
		t.Errorf("drill 20 = %v/%q, want locked state with Start label", rows[2].State, rows[2].Label)
	}
}

func TestBuildAfterReset(t *testing.T) {
	g := New(economy.DefaultRules())
	rows := flatten(g.Build(Input{Units: outline()}))
	if rows[0].State != Current {
		t.Errorf("first drill = %v, want current after reset", rows[0].State)
	}
	for _, r := range rows[1:] {
		if r.State != Locked {
			t.Errorf("drill %d = %v, want locked after reset", r.DrillID, r.State)
		}
	}
}

func TestBuildFinishedCourse(t *testing.T) {
	g := New(economy.DefaultRules())
	rows := flatten(g.Build(Input{Units: outline(), Completed: map[int]bool{10: true, 11: true, 20: true}}))
	for _, r := range rows {
		if r.State != Completed || r.IsCurrent {
			t.Errorf("drill %d = %+v, want completed", r.DrillID, r)
		}
	}
}

func TestBuildStalePointerFallsForward(t *testing.T) {
	g := New(economy.DefaultRules())
	rows := flatten(g.Build(Input{
		Units:          outline(),
		Completed:      map[int]bool{10: true},
		CurrentDrillID: intp(10), // pointer not advanced yet
	}))
	if rows[1].State != Current {
		t.Errorf("drill 11 = %v, want current", rows[1].State)
	}
}

func TestBuildSkippedDrillStaysPlayable(t *testing.T) {
	g := New(economy.DefaultRules())
	rows := flatten(g.Build(Input{
		Units:          outline(),
		Completed:      map[int]bool{10: true},
		CurrentDrillID: intp(20),
	}))
	skipped := rows[1]
	if skipped.State != Open || !skipped.IsUnlocked || skipped.IsCurrent {
		t.Fatalf("drill 11 = %+v, want open and unlocked", skipped)
	}
	if skipped.Label != LabelStart {
		t.Errorf("drill 11 label = %q, want %q", skipped.Label, LabelStart)
	}
	if ModeFor(skipped.State) != economy.Graded {
		t.Error("skipped drills play graded")
	}
	if rows[2].State != Current {
		t.Errorf("drill 20 = %v, want current", rows[2].State)
	}
}

func TestNextAndFirst(t *testing.T) {
	units := outline()
	if got := First(units); got == nil || *got != 10 {
		t.Errorf("First = %v, want 10", got)
	}
	if got := Next(units, 11); got == nil || *got != 20 {
		t.Errorf("Next(11) = %v, want 20 across units", got)
	}
	if got := Next(units, 20); got != nil {
		t.Errorf("Next(20) = %v, want nil", *got)
	}
	if got := First(nil); got != nil {
		t.Errorf("First(nil) = %v, want nil", *got)
	}
}

func TestIsComplete(t *testing.T) {
	g := New(economy.NewRules(config.Economy{GemsLimit: 5, PointsToRefill: 10, PointsPerCorrect: 10, QuestionsPerDrill: 5, SecondsPerQuestion: 10}))
	tests := []struct {
		done, available int
		want            bool
	}{
		{5, 10, true},
		{4, 10, false},
		{3, 3, true}, // short drill completes at its size
		{0, 0, false},
	}
	for _, tt := range tests {
		if got := g.IsComplete(tt.done, tt.available); got != tt.want {
			t.Errorf("IsComplete(%d, %d) = %v, want %v", tt.done, tt.available, got, tt.want)
		}
	}
}

func TestModeFor(t *testing.T) {
	if ModeFor(Completed) != economy.Practice {
		t.Error("completed drills replay in practice mode")
	}
	if ModeFor(Current) != economy.Graded {
		t.Error("current drill plays graded")
	}
}

func TestFind(t *testing.T) {
	g := New(economy.DefaultRules())
	views := g.Build(Input{Units: outline()})
	if _, ok := Find(views, 20); !ok {
		t.Error("Find(20) missed")
	}
	if _, ok := Find(views, 99); ok {
		t.Error("Find(99) found a ghost")
	}
}
