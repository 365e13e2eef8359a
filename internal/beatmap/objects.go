// Package beatmap parses the .osu chart text format into structured timing
// points and hit objects, and computes the derived fields gameplay needs:
// slider durations from the governing timing points, combo numbering and
// combo colors.
package beatmap

import (
	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/curve"
)

// Kind tags the hit object variants.
type Kind uint8

const (
	KindCircle Kind = iota
	KindSlider
	KindSpinner
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindCircle:
		return "circle"
	case KindSlider:
		return "slider"
	case KindSpinner:
		return "spinner"
	default:
		return "unknown"
	}
}

// Type bitmask values from the chart format's object type field.
const (
	typeCircle   = 1
	typeSlider   = 2
	typeNewCombo = 4
	typeSpinner  = 8
)

// HitObject is the common interface over circles, sliders and spinners.
// Implementations are pointers so the parser's post-pass can assign combo
// numbering in place; once parsing returns, the chart is immutable.
type HitObject interface {
	Kind() Kind
	Time() float64    // Start time in milliseconds
	EndTime() float64 // Resolution time; equals Time() for circles
	Pos() core.Vec    // Position in 512x384 playfield space
	NewCombo() bool
	Combo() (number, colorIndex int)
}

// Base carries the fields shared by every hit object variant.
type Base struct {
	Position   core.Vec
	StartTime  float64
	IsNewCombo bool

	// Assigned by the parser's combo pass.
	ComboNumber int
	ComboColor  int
}

func (b *Base) Time() float64  { return b.StartTime }
func (b *Base) Pos() core.Vec  { return b.Position }
func (b *Base) NewCombo() bool { return b.IsNewCombo }

func (b *Base) Combo() (int, int) { return b.ComboNumber, b.ComboColor }

// Circle is a single tap object.
type Circle struct {
	Base
}

func (*Circle) Kind() Kind         { return KindCircle }
func (c *Circle) EndTime() float64 { return c.StartTime }

// Slider is a hit object traversed continuously along a curve, possibly
// several times (Slides > 1).
type Slider struct {
	Base

	// ControlPoints includes the slider head as the first point.
	ControlPoints []core.Vec
	CurveType     curve.Kind
	Slides        int
	PixelLength   float64

	// Duration covers all slides; always strictly positive.
	Duration float64

	// Path is the arc-length table built by the curve generator. Queried
	// by both judgment (slider ball tracking) and the renderer.
	Path *curve.Curve
}

func (*Slider) Kind() Kind         { return KindSlider }
func (s *Slider) EndTime() float64 { return s.StartTime + s.Duration }

// BallPositionAt returns the slider ball position at the given progress
// through the slider's full duration (all slides), in [0, 1].
func (s *Slider) BallPositionAt(progress float64) core.Vec {
	if s.Path == nil {
		return s.Position
	}
	return s.Path.PositionAt(progress)
}

// Spinner occupies a time range at the playfield center.
type Spinner struct {
	Base
	End float64
}

func (*Spinner) Kind() Kind         { return KindSpinner }
func (s *Spinner) EndTime() float64 { return s.End }

// TimingPoint is one row of the [TimingPoints] section. Uninherited points
// define a new beat length; inherited points encode a slider velocity
// multiplier in a negative beat length and do not reset the active beat
// length.
type TimingPoint struct {
	Time        float64
	BeatLength  float64
	Meter       int
	Uninherited bool
	Kiai        bool
}

// Velocity returns the slider velocity multiplier carried by an inherited
// point, clamped to [0.1, 10]. Uninherited or broken points yield 1.
func (tp TimingPoint) Velocity() float64 {
	if tp.Uninherited || tp.BeatLength >= 0 {
		return 1
	}
	return core.ClampF(100.0/-tp.BeatLength, 0.1, 10)
}

// Break is a rest period during which health does not drain.
type Break struct {
	Start, End float64
}

// RGB is a chart-supplied combo color.
type RGB struct {
	R, G, B uint8
}

// Metadata identifies the chart for display and score storage.
type Metadata struct {
	Title         string
	Artist        string
	Creator       string
	Version       string
	AudioFilename string
}

// Difficulty holds the raw 0-10 difficulty attributes before any mod
// adjustment, plus the slider pacing settings.
type Difficulty struct {
	HP float64 // HPDrainRate
	CS float64 // CircleSize
	OD float64 // OverallDifficulty
	AR float64 // ApproachRate

	SliderMultiplier float64
	SliderTickRate   float64
}

// Beatmap is a fully parsed chart. Immutable once Parse returns; per-session
// mutable state (hit/missed flags) is layered on top by the gameplay package.
type Beatmap struct {
	Metadata   Metadata
	Difficulty Difficulty

	TimingPoints []TimingPoint
	Objects      []HitObject
	Breaks       []Break

	// ComboColors is the chart-supplied palette; empty means the built-in
	// four-color palette. PaletteSize is never zero.
	ComboColors []RGB
}

// PaletteSize returns the number of combo colors the chart cycles through.
func (b *Beatmap) PaletteSize() int {
	if len(b.ComboColors) > 0 {
		return len(b.ComboColors)
	}
	return len(core.ComboPalette)
}

// FirstObjectTime returns the start time of the earliest object.
// Parse guarantees at least one object exists.
func (b *Beatmap) FirstObjectTime() float64 {
	return b.Objects[0].Time()
}

// LastEndTime returns the latest resolution time across all objects.
func (b *Beatmap) LastEndTime() float64 {
	last := 0.0
	for _, obj := range b.Objects {
		if end := obj.EndTime(); end > last {
			last = end
		}
	}
	return last
}

// InBreak reports whether the given clock time falls inside a break period.
func (b *Beatmap) InBreak(timeMs float64) bool {
	for _, br := range b.Breaks {
		if timeMs >= br.Start && timeMs <= br.End {
			return true
		}
	}
	return false
}
