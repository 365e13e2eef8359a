// Package scoring implements hit-value-to-score conversion with combo
// scaling, accuracy computation, health deltas and grade assignment. It is
// pure bookkeeping: the judgment engine decides what happened, this package
// decides what it is worth.
package scoring

import (
	"math"

	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
)

// Judgment classifies a resolved hit object by timing accuracy.
type Judgment int

const (
	JudgmentMiss Judgment = iota
	JudgmentGood
	JudgmentGreat
	JudgmentPerfect
)

// BaseValue returns the raw hit value before combo and mod scaling.
func (j Judgment) BaseValue() int {
	switch j {
	case JudgmentPerfect:
		return 300
	case JudgmentGreat:
		return 100
	case JudgmentGood:
		return 50
	default:
		return 0
	}
}

// String returns the conventional display name for the judgment.
func (j Judgment) String() string {
	switch j {
	case JudgmentPerfect:
		return "300"
	case JudgmentGreat:
		return "100"
	case JudgmentGood:
		return "50"
	default:
		return "miss"
	}
}

// Health lives in [0, 100]; the session fails when it reaches zero
// without NoFail.
const StartingHealth = 100.0

// HealthGain returns the discrete health bonus for a non-miss judgment,
// scaled down for lower-value hits. Misses are charged separately through
// MissPenalty since that depends on the HP difficulty.
func HealthGain(j Judgment) float64 {
	switch j {
	case JudgmentPerfect:
		return 4
	case JudgmentGreat:
		return 2
	case JudgmentGood:
		return 1
	default:
		return 0
	}
}

// MissPenalty returns the health cost of a miss for the given HP
// difficulty: 8 at HP 0, 16 at HP 10.
func MissPenalty(hp float64) float64 {
	return 8 * (1 + hp/10)
}

// DrainPerSecond returns the passive health drain rate for the given HP
// difficulty, scaled by the mod speed multiplier so faster playback drains
// proportionally faster in wall time.
func DrainPerSecond(hp, speedMultiplier float64) float64 {
	return (2 + 0.9*hp) * speedMultiplier
}

// DifficultyMultiplier derives the coarse integer scoring multiplier from
// the chart's raw (pre-mod) difficulty attributes. Never below 1.
func DifficultyMultiplier(d beatmap.Difficulty) int {
	m := int(math.Round((d.HP + d.CS + d.OD + math.Max(0, d.CS-5)*2) / 6))
	if m < 1 {
		m = 1
	}
	return m
}

// Counts holds the per-grade hit counters of a session.
type Counts struct {
	Perfect int
	Great   int
	Good    int
	Miss    int
}

// Total returns the number of judged objects.
func (c Counts) Total() int {
	return c.Perfect + c.Great + c.Good + c.Miss
}

// Accuracy computes the achieved-to-maximum weighted hit value ratio as a
// percentage. With nothing judged yet the session is at a perfect 100%.
func (c Counts) Accuracy() float64 {
	total := c.Total()
	if total == 0 {
		return 100
	}
	achieved := float64(c.Perfect*300 + c.Great*100 + c.Good*50)
	return achieved / float64(total*300) * 100
}

// Tracker accumulates score, combo and hit counters over a session.
type Tracker struct {
	score    int
	combo    int
	maxCombo int
	counts   Counts

	diffMult int
	modMult  float64
}

// NewTracker creates a tracker for one session. The difficulty multiplier
// is derived once from the chart's raw attributes; the mod multiplier is
// fixed for the session since mods cannot change mid-play.
func NewTracker(d beatmap.Difficulty, modMultiplier float64) *Tracker {
	return &Tracker{
		diffMult: DifficultyMultiplier(d),
		modMult:  modMultiplier,
	}
}

// Record applies one judgment: non-miss judgments add the combo-scaled
// score and extend the combo; a miss resets the combo to zero. The max
// combo is a running high-water mark.
func (t *Tracker) Record(j Judgment) {
	switch j {
	case JudgmentPerfect:
		t.counts.Perfect++
	case JudgmentGreat:
		t.counts.Great++
	case JudgmentGood:
		t.counts.Good++
	default:
		t.counts.Miss++
		t.combo = 0
		return
	}

	base := float64(j.BaseValue())
	comboScale := 1 + float64(t.combo)*float64(t.diffMult)*t.modMult/25
	t.score += int(math.Floor(base * comboScale * t.modMult))

	t.combo++
	if t.combo > t.maxCombo {
		t.maxCombo = t.combo
	}
}

// Score returns the current total score.
func (t *Tracker) Score() int { return t.score }

// Combo returns the current combo streak.
func (t *Tracker) Combo() int { return t.combo }

// MaxCombo returns the session's highest combo.
func (t *Tracker) MaxCombo() int { return t.maxCombo }

// Counts returns the per-grade hit counters.
func (t *Tracker) Counts() Counts { return t.counts }

// Accuracy returns the current accuracy percentage.
func (t *Tracker) Accuracy() float64 { return t.counts.Accuracy() }

// Grade returns the letter grade for the current counters.
func (t *Tracker) Grade() Grade { return t.counts.Grade() }
