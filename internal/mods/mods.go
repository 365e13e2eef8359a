// Package mods implements the composable difficulty modifier system: a
// bitset of toggles that scale difficulty attributes and playback speed and
// compute a score multiplier. Everything here is a pure function of the
// active set; mod state is read-only during a play session.
package mods

import (
	"math"
	"strings"

	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
)

// Mod is a single toggleable modifier bit.
type Mod uint16

const (
	Easy Mod = 1 << iota
	NoFail
	HalfTime
	HardRock
	DoubleTime
	Hidden
	Flashlight
	Relax
	Autopilot
	Autoplay
)

// order lists mods in their canonical display/parse order.
var order = []struct {
	mod  Mod
	code string
}{
	{Easy, "EZ"},
	{NoFail, "NF"},
	{HalfTime, "HT"},
	{HardRock, "HR"},
	{DoubleTime, "DT"},
	{Hidden, "HD"},
	{Flashlight, "FL"},
	{Relax, "RX"},
	{Autopilot, "AP"},
	{Autoplay, "AT"},
}

// exclusions maps each mod to the set it forces off when toggled on.
var exclusions = map[Mod]Mod{
	Easy:       HardRock,
	HardRock:   Easy,
	DoubleTime: HalfTime,
	HalfTime:   DoubleTime,
}

// Set is the active-mod bitset.
type Set uint16

// Has reports whether the given mod is active.
func (s Set) Has(m Mod) bool {
	return Set(m)&s != 0
}

// Toggle flips the given mod and atomically clears any mod declared
// mutually exclusive with it, so an invalid combination is unreachable by
// construction.
func (s Set) Toggle(m Mod) Set {
	if s.Has(m) {
		return s &^ Set(m)
	}
	next := s | Set(m)
	if excl, ok := exclusions[m]; ok {
		next &^= Set(excl)
	}
	return next
}

// ApplyDifficulty returns the mod-adjusted difficulty attributes. HardRock
// multiplies CS by 1.3 and AR/OD/HP by 1.4, each capped at 10; Easy halves
// all four. The two never compound: Toggle keeps them mutually exclusive.
func (s Set) ApplyDifficulty(d beatmap.Difficulty) beatmap.Difficulty {
	out := d
	if s.Has(HardRock) {
		out.CS = math.Min(out.CS*1.3, 10)
		out.AR = math.Min(out.AR*1.4, 10)
		out.OD = math.Min(out.OD*1.4, 10)
		out.HP = math.Min(out.HP*1.4, 10)
	}
	if s.Has(Easy) {
		out.CS *= 0.5
		out.AR *= 0.5
		out.OD *= 0.5
		out.HP *= 0.5
	}
	return out
}

// SpeedMultiplier returns the playback clock rate: 1.5 under DoubleTime,
// 0.75 under HalfTime, else 1. This scales wall-clock progression only;
// timing windows stay in absolute milliseconds.
func (s Set) SpeedMultiplier() float64 {
	switch {
	case s.Has(DoubleTime):
		return 1.5
	case s.Has(HalfTime):
		return 0.75
	default:
		return 1.0
	}
}

// scoreFactors holds the per-mod fixed score multiplier contributions.
var scoreFactors = map[Mod]float64{
	NoFail:     0.5,
	Easy:       0.5,
	HalfTime:   0.3,
	HardRock:   1.06,
	DoubleTime: 1.12,
	Hidden:     1.06,
	Flashlight: 1.12,
}

// ScoreMultiplier returns the product of the active mods' score factors.
// Relax and Autopilot force it to exactly zero (unranked); Autoplay is
// multiplier-neutral but marks the session as scripted.
func (s Set) ScoreMultiplier() float64 {
	if s.Has(Relax) || s.Has(Autopilot) {
		return 0
	}
	mult := 1.0
	for _, e := range order {
		if s.Has(e.mod) {
			if f, ok := scoreFactors[e.mod]; ok {
				mult *= f
			}
		}
	}
	return mult
}

// Automated reports whether the session should synthesize cursor movement
// or input instead of (or alongside) the player's.
func (s Set) Automated() bool {
	return s.Has(Autoplay) || s.Has(Relax) || s.Has(Autopilot)
}

// CircleRadius returns the mod-adjusted hit radius in playfield pixels for
// the given raw circle size.
func CircleRadius(cs float64) float64 {
	return 54.4 - 4.48*cs
}

// ApproachWindowMs converts an approach rate into the visibility preempt in
// milliseconds: objects appear this long before their hit time.
func ApproachWindowMs(ar float64) float64 {
	if ar < 5 {
		return 1200 + 120*(5-ar)
	}
	return 1200 - 150*(ar-5)
}

// HitWindowsMs returns the perfect/great/good timing window half-widths in
// milliseconds for the given overall difficulty. A hit further off than the
// good window scores nothing.
func HitWindowsMs(od float64) (perfect, great, good float64) {
	return 80 - 6*od, 140 - 8*od, 200 - 10*od
}

// String formats the set as concatenated two-letter codes ("HDDT"), or
// "none" for the empty set.
func (s Set) String() string {
	if s == 0 {
		return "none"
	}
	var sb strings.Builder
	for _, e := range order {
		if s.Has(e.mod) {
			sb.WriteString(e.code)
		}
	}
	return sb.String()
}

// Parse builds a Set from concatenated two-letter codes, case-insensitive.
// Unknown codes are an error; exclusion pairs are resolved by toggle order
// so later codes win.
func Parse(raw string) (Set, bool) {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" || raw == "NONE" {
		return 0, true
	}
	if len(raw)%2 != 0 {
		return 0, false
	}
	var s Set
	for i := 0; i < len(raw); i += 2 {
		code := raw[i : i+2]
		found := false
		for _, e := range order {
			if e.code == code {
				s = s.Toggle(e.mod)
				found = true
				break
			}
		}
		if !found {
			return 0, false
		}
	}
	return s, true
}

// Names returns the long names of the active mods, for display.
func (s Set) Names() []string {
	long := map[Mod]string{
		Easy: "Easy", NoFail: "NoFail", HalfTime: "HalfTime",
		HardRock: "HardRock", DoubleTime: "DoubleTime", Hidden: "Hidden",
		Flashlight: "Flashlight", Relax: "Relax", Autopilot: "Autopilot",
		Autoplay: "Autoplay",
	}
	var out []string
	for _, e := range order {
		if s.Has(e.mod) {
			out = append(out, long[e.mod])
		}
	}
	return out
}
