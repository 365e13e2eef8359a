package beatmap

import "github.com/vovakirdan/tui-rhythm/internal/curve"

// governingPoints scans timing points at or before the given time, tracking
// the most recent uninherited point (beat length) and the most recent
// inherited point (slider velocity) separately: an inherited point does not
// reset the active beat length. Points after an inherited one reset the
// velocity back to 1 only when a newer uninherited point appears, matching
// the chart format's semantics.
func governingPoints(points []TimingPoint, timeMs float64) (beatLength, velocity float64) {
	beatLength = defaultBeatLength
	velocity = 1

	lastUninherited := -1.0
	for _, tp := range points {
		if tp.Time > timeMs {
			break
		}
		if tp.Uninherited {
			if tp.BeatLength > 0 {
				beatLength = tp.BeatLength
			}
			lastUninherited = tp.Time
			velocity = 1
		} else if tp.Time >= lastUninherited {
			velocity = tp.Velocity()
		}
	}
	return beatLength, velocity
}

// KiaiAt reports whether the kiai flag is active at the given time, taken
// from the latest timing point at or before it.
func (b *Beatmap) KiaiAt(timeMs float64) bool {
	kiai := false
	for _, tp := range b.TimingPoints {
		if tp.Time > timeMs {
			break
		}
		kiai = tp.Kiai
	}
	return kiai
}

// BeatLengthAt returns the active beat length at the given time. With no
// governing uninherited point the package default applies.
func (b *Beatmap) BeatLengthAt(timeMs float64) float64 {
	beatLength, _ := governingPoints(b.TimingPoints, timeMs)
	return beatLength
}

// resolveSliders computes every slider's duration from its pixel length,
// the governing velocity multiplier and beat length, and the slide count,
// then attaches the arc-length curve path.
func resolveSliders(b *Beatmap) {
	for _, obj := range b.Objects {
		s, ok := obj.(*Slider)
		if !ok {
			continue
		}

		beatLength, velocity := governingPoints(b.TimingPoints, s.StartTime)

		// Beats the ball needs for one traversal, scaled by slide count.
		beats := s.PixelLength / (b.Difficulty.SliderMultiplier * 100 * velocity)
		s.Duration = beats * beatLength * float64(s.Slides)
		if !(s.Duration > 0) {
			// Degenerate geometry or broken timing rows; keep the
			// invariant endTime > time so judgment stays well-defined.
			s.Duration = 1
		}

		s.Path = curve.Build(s.ControlPoints, s.CurveType, s.PixelLength, s.Slides)
	}
}

// assignCombos walks the sorted objects once, resetting the combo counter
// and advancing the palette index at the first object and at every object
// flagged as a new combo.
func assignCombos(b *Beatmap) {
	palette := b.PaletteSize()
	number := 0
	colorIdx := -1

	for i, obj := range b.Objects {
		if i == 0 || obj.NewCombo() {
			number = 1
			colorIdx = (colorIdx + 1) % palette
		} else {
			number++
		}
		switch o := obj.(type) {
		case *Circle:
			o.ComboNumber, o.ComboColor = number, colorIdx
		case *Slider:
			o.ComboNumber, o.ComboColor = number, colorIdx
		case *Spinner:
			o.ComboNumber, o.ComboColor = number, colorIdx
		}
	}
}
