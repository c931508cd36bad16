package economy

import (
	"errors"
	"testing"
)

func TestGemDelta(t *testing.T) {
	r := DefaultRules() // limit 5

	tests := []struct {
		name       string
		mode       Mode
		correct    bool
		gems       int
		subscribed bool
		want       GemOutcome
	}{
		{"graded wrong spends one", Graded, false, 3, false, GemOutcome{Gems: 2, Delta: -1}},
		{"graded wrong last gem", Graded, false, 1, false, GemOutcome{Gems: 0, Delta: -1}},
		{"graded wrong at zero", Graded, false, 0, false, GemOutcome{Gems: 0, OutOfGems: true}},
		{"graded correct keeps", Graded, true, 2, false, GemOutcome{Gems: 2}},
		{"practice wrong keeps", Practice, false, 2, false, GemOutcome{Gems: 2}},
		{"practice wrong at zero", Practice, false, 0, false, GemOutcome{Gems: 0}},
		{"practice correct restores", Practice, true, 4, false, GemOutcome{Gems: 5, Delta: 1}},
		{"practice correct at limit", Practice, true, 5, false, GemOutcome{Gems: 5}},
		{"subscriber wrong keeps", Graded, false, 0, true, GemOutcome{Gems: 0}},
		{"negative input clamps", Graded, false, -3, false, GemOutcome{Gems: 0, OutOfGems: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.GemDelta(tt.mode, tt.correct, tt.gems, tt.subscribed)
			if got != tt.want {
				t.Errorf("GemDelta(%v, %v, %d, %v) = %+v, want %+v", tt.mode, tt.correct, tt.gems, tt.subscribed, got, tt.want)
			}
		})
	}
}

func TestGemsNeverNegative(t *testing.T) {
	r := DefaultRules()
	gems := 5
	for i := 0; i < 20; i++ {
		gems = r.GemDelta(Graded, false, gems, false).Gems
		if gems < 0 {
			t.Fatalf("gems went negative after %d wrong answers", i+1)
		}
	}
	if gems != 0 {
		t.Errorf("gems = %d, want 0", gems)
	}
}

func TestBlocked(t *testing.T) {
	r := DefaultRules()
	if !r.Blocked(Graded, 0, false) {
		t.Error("graded with zero gems should be blocked")
	}
	if r.Blocked(Graded, 1, false) {
		t.Error("graded with a gem should not be blocked")
	}
	if r.Blocked(Practice, 0, false) {
		t.Error("practice should never be blocked")
	}
	if r.Blocked(Graded, 0, true) {
		t.Error("subscribers should never be blocked")
	}
}

func TestPointsDelta(t *testing.T) {
	r := DefaultRules()
	if got := r.PointsDelta(true); got != 10 {
		t.Errorf("PointsDelta(true) = %d, want 10", got)
	}
	if got := r.PointsDelta(false); got != 0 {
		t.Errorf("PointsDelta(false) = %d, want 0", got)
	}
}

func TestRefill(t *testing.T) {
	r := DefaultRules() // limit 5, cost 10

	tests := []struct {
		name         string
		gems, points int
		want         RefillOutcome
		wantErr      error
	}{
		{"refills", 2, 25, RefillOutcome{Gems: 5, Points: 15}, nil},
		{"exact cost", 0, 10, RefillOutcome{Gems: 5, Points: 0}, nil},
		{"not enough points", 2, 9, RefillOutcome{}, ErrInsufficientPoints},
		{"already full", 5, 100, RefillOutcome{}, ErrAlreadyFull},
		{"full wins over poor", 5, 0, RefillOutcome{}, ErrAlreadyFull},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Refill(tt.gems, tt.points)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Refill(%d, %d) error = %v, want %v", tt.gems, tt.points, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Refill(%d, %d) = %+v, want %+v", tt.gems, tt.points, got, tt.want)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{Graded, Practice} {
		got, err := ParseMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParseMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParseMode("ranked"); err == nil {
		t.Error("ParseMode(ranked) should fail")
	}
}
