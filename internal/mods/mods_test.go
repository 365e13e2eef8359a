package mods

import (
	"math"
	"testing"

	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
)

func TestToggle(t *testing.T) {
	var s Set

	s = s.Toggle(Hidden)
	if !s.Has(Hidden) {
		t.Error("Toggle should activate Hidden")
	}

	s = s.Toggle(Hidden)
	if s.Has(Hidden) {
		t.Error("Toggle should deactivate Hidden on second call")
	}
}

func TestToggleMutualExclusion(t *testing.T) {
	var s Set

	// HardRock then Easy: only Easy survives.
	s = s.Toggle(HardRock)
	s = s.Toggle(Easy)
	if s.Has(HardRock) {
		t.Error("toggling Easy should deactivate HardRock")
	}
	if !s.Has(Easy) {
		t.Error("Easy should be active")
	}

	// And the reverse direction.
	s = s.Toggle(HardRock)
	if s.Has(Easy) {
		t.Error("toggling HardRock should deactivate Easy")
	}

	// DoubleTime vs HalfTime.
	s = 0
	s = s.Toggle(DoubleTime)
	s = s.Toggle(HalfTime)
	if s.Has(DoubleTime) || !s.Has(HalfTime) {
		t.Errorf("DT/HT exclusion broken: %v", s)
	}
}

func TestApplyDifficulty(t *testing.T) {
	base := beatmap.Difficulty{HP: 5, CS: 4, OD: 6, AR: 9}

	t.Run("no mods", func(t *testing.T) {
		var s Set
		if got := s.ApplyDifficulty(base); got != base {
			t.Errorf("unmodded difficulty changed: %+v", got)
		}
	})

	t.Run("hardrock", func(t *testing.T) {
		s := Set(0).Toggle(HardRock)
		got := s.ApplyDifficulty(base)
		if math.Abs(got.CS-5.2) > 1e-9 {
			t.Errorf("HR CS = %v, expected 5.2", got.CS)
		}
		if math.Abs(got.OD-8.4) > 1e-9 {
			t.Errorf("HR OD = %v, expected 8.4", got.OD)
		}
		// AR 9 * 1.4 = 12.6, capped at 10.
		if got.AR != 10 {
			t.Errorf("HR AR = %v, expected cap at 10", got.AR)
		}
	})

	t.Run("hardrock never exceeds 10", func(t *testing.T) {
		s := Set(0).Toggle(HardRock)
		maxed := beatmap.Difficulty{HP: 10, CS: 10, OD: 10, AR: 10}
		got := s.ApplyDifficulty(maxed)
		for name, v := range map[string]float64{"HP": got.HP, "CS": got.CS, "OD": got.OD, "AR": got.AR} {
			if v > 10 {
				t.Errorf("HR %s = %v, exceeds 10", name, v)
			}
		}
	})

	t.Run("easy halves", func(t *testing.T) {
		s := Set(0).Toggle(Easy)
		got := s.ApplyDifficulty(base)
		if got.HP != 2.5 || got.CS != 2 || got.OD != 3 || got.AR != 4.5 {
			t.Errorf("Easy difficulty = %+v", got)
		}
	})
}

func TestSpeedMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		set      Set
		expected float64
	}{
		{"none", 0, 1.0},
		{"doubletime", Set(0).Toggle(DoubleTime), 1.5},
		{"halftime", Set(0).Toggle(HalfTime), 0.75},
		{"hidden does not affect speed", Set(0).Toggle(Hidden), 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.set.SpeedMultiplier(); got != tc.expected {
				t.Errorf("SpeedMultiplier() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestScoreMultiplier(t *testing.T) {
	tests := []struct {
		name     string
		set      Set
		expected float64
	}{
		{"none", 0, 1.0},
		{"easy", Set(0).Toggle(Easy), 0.5},
		{"nofail", Set(0).Toggle(NoFail), 0.5},
		{"hidden+doubletime", Set(0).Toggle(Hidden).Toggle(DoubleTime), 1.06 * 1.12},
		{"relax is unranked", Set(0).Toggle(Relax).Toggle(HardRock), 0},
		{"autopilot is unranked", Set(0).Toggle(Autopilot), 0},
		{"autoplay is neutral", Set(0).Toggle(Autoplay), 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.set.ScoreMultiplier()
			if math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("ScoreMultiplier() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestHardRockThenEasyScenario(t *testing.T) {
	// Enabling HardRock then Easy (in that order) leaves only Easy active,
	// and the score multiplier reflects Easy's 0.5 with no HardRock bonus.
	var s Set
	s = s.Toggle(HardRock)
	s = s.Toggle(Easy)

	if s.Has(HardRock) || !s.Has(Easy) {
		t.Fatalf("expected only Easy active, got %v", s)
	}
	if got := s.ScoreMultiplier(); got != 0.5 {
		t.Errorf("ScoreMultiplier() = %v, expected 0.5", got)
	}
}

func TestHitWindows(t *testing.T) {
	// OD=5 gives the canonical 50/100/150ms windows.
	perfect, great, good := HitWindowsMs(5)
	if perfect != 50 || great != 100 || good != 150 {
		t.Errorf("HitWindowsMs(5) = %v/%v/%v, expected 50/100/150", perfect, great, good)
	}
}

func TestApproachWindow(t *testing.T) {
	if got := ApproachWindowMs(5); got != 1200 {
		t.Errorf("ApproachWindowMs(5) = %v, expected 1200", got)
	}
	if got := ApproachWindowMs(0); got != 1800 {
		t.Errorf("ApproachWindowMs(0) = %v, expected 1800", got)
	}
	if got := ApproachWindowMs(10); got != 450 {
		t.Errorf("ApproachWindowMs(10) = %v, expected 450", got)
	}
}

func TestCircleRadius(t *testing.T) {
	if got := CircleRadius(4); math.Abs(got-36.48) > 1e-9 {
		t.Errorf("CircleRadius(4) = %v, expected 36.48", got)
	}
}

func TestParseAndString(t *testing.T) {
	tests := []struct {
		raw  string
		want Set
		ok   bool
	}{
		{"", 0, true},
		{"none", 0, true},
		{"HD", Set(0).Toggle(Hidden), true},
		{"hddt", Set(0).Toggle(Hidden).Toggle(DoubleTime), true},
		{"EZHR", Set(0).Toggle(Easy).Toggle(HardRock), true}, // later code wins
		{"XX", 0, false},
		{"H", 0, false},
	}

	for _, tc := range tests {
		got, ok := Parse(tc.raw)
		if ok != tc.ok {
			t.Errorf("Parse(%q) ok = %v, expected %v", tc.raw, ok, tc.ok)
			continue
		}
		if ok && got != tc.want {
			t.Errorf("Parse(%q) = %v, expected %v", tc.raw, got, tc.want)
		}
	}

	s := Set(0).Toggle(Hidden).Toggle(DoubleTime)
	if s.String() != "DTHD" {
		t.Errorf("String() = %q, expected canonical order \"DTHD\"", s.String())
	}
	if Set(0).String() != "none" {
		t.Errorf("empty String() = %q, expected \"none\"", Set(0).String())
	}
}
