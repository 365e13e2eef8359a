package gameplay

import (
	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/mods"
	"github.com/vovakirdan/tui-rhythm/internal/scoring"
)

// ObjectFrame is one visible hit object prepared for drawing. Positions are
// in playfield space; the renderer maps them to screen cells.
type ObjectFrame struct {
	Kind        beatmap.Kind
	Pos         core.Vec
	Radius      float64
	ComboNumber int
	ComboColor  int

	// Approach runs 1 at spawn down to 0 at hit time, then stays 0.
	Approach float64
	// Opacity runs 0..1 over the fade-in, and back down after judgment.
	Opacity float64
	Judged  bool

	// Slider drawing data. Points is the sampled body polyline; Ball is
	// valid while BallActive.
	Points     []core.Vec
	Ball       core.Vec
	BallActive bool
}

// Frame is an immutable snapshot of everything the renderer needs for one
// drawn frame. Building it never mutates the session.
type Frame struct {
	State   State
	ClockMs float64

	Score    int
	Combo    int
	MaxCombo int
	Accuracy float64
	Health   float64
	Grade    scoring.Grade
	Counts   scoring.Counts

	// Progress through the object span in [0, 1].
	Progress float64

	Objects []ObjectFrame
	Cursor  core.Vec
	Kiai    bool
	CanSkip bool
	Hidden  bool

	// Judgment popup: valid while HasJudgment, anchored at JudgmentPos.
	HasJudgment bool
	Judgment    scoring.Judgment
	JudgmentAt  float64
	JudgmentPos core.Vec
}

// How long the judgment popup stays visible, in chart milliseconds.
const judgmentPopupMs = 600

// Frame captures the renderable state of the session at the current clock.
func (s *Session) Frame() Frame {
	f := Frame{
		State:    s.state,
		ClockMs:  s.clockMs,
		Score:    s.tracker.Score(),
		Combo:    s.tracker.Combo(),
		MaxCombo: s.tracker.MaxCombo(),
		Accuracy: s.tracker.Accuracy(),
		Health:   s.health,
		Grade:    s.tracker.Grade(),
		Counts:   s.tracker.Counts(),
		Cursor:   s.cursor,
		Kiai:     s.chart.KiaiAt(s.clockMs),
		CanSkip:  s.CanSkip(),
		Hidden:   s.mods.Has(mods.Hidden),
	}

	first := s.chart.FirstObjectTime()
	last := s.chart.LastEndTime()
	if last > first {
		f.Progress = core.ClampF((s.clockMs-first)/(last-first), 0, 1)
	} else if s.clockMs >= first {
		f.Progress = 1
	}

	if s.anyJudged && s.clockMs-s.lastJudgmentAt <= judgmentPopupMs {
		f.HasJudgment = true
		f.Judgment = s.lastJudgment
		f.JudgmentAt = s.lastJudgmentAt
		f.JudgmentPos = s.lastJudgmentPos
	}

	f.Objects = s.visibleObjects()
	return f
}

// visibleObjects collects the objects inside the approach/fade window,
// scanning from the first unresolved object and stopping at the first one
// not yet spawned.
func (s *Session) visibleObjects() []ObjectFrame {
	var out []ObjectFrame
	for i := s.scanFrom; i < len(s.chart.Objects); i++ {
		obj := s.chart.Objects[i]
		if obj.Time()-s.preemptMs > s.clockMs {
			break
		}
		st := &s.objects[i]
		if st.judged && s.clockMs > obj.EndTime()+fadeOutMs {
			continue
		}
		out = append(out, s.objectFrame(obj, st))
	}
	return out
}

func (s *Session) objectFrame(obj beatmap.HitObject, st *objectState) ObjectFrame {
	number, color := obj.Combo()
	of := ObjectFrame{
		Kind:        obj.Kind(),
		Pos:         obj.Pos(),
		Radius:      s.radius,
		ComboNumber: number,
		ComboColor:  color,
		Judged:      st.judged,
	}

	until := obj.Time() - s.clockMs
	if until > 0 {
		of.Approach = core.ClampF(until/s.preemptMs, 0, 1)
	}
	of.Opacity = s.opacityFor(obj, st)

	if sl, ok := obj.(*beatmap.Slider); ok {
		if sl.Path != nil {
			of.Points = sl.Path.Points2D()
		}
		if s.clockMs >= sl.Time() && s.clockMs <= sl.EndTime() && sl.Duration > 0 {
			progress := (s.clockMs - sl.Time()) / sl.Duration
			of.Ball = sl.BallPositionAt(progress)
			of.BallActive = true
		}
	}
	return of
}

// opacityFor ramps objects in over the first part of the approach window
// and back out after resolution. Under Hidden the fade-in is compressed and
// the object fades again before its hit time.
func (s *Session) opacityFor(obj beatmap.HitObject, st *objectState) float64 {
	if st.judged {
		over := s.clockMs - obj.EndTime()
		return core.ClampF(1-over/fadeOutMs, 0, 1)
	}

	sinceSpawn := s.clockMs - (obj.Time() - s.preemptMs)
	fadeIn := s.preemptMs * 0.4

	if s.mods.Has(mods.Hidden) {
		fadeIn = s.preemptMs * 0.25
		in := core.ClampF(sinceSpawn/fadeIn, 0, 1)
		// Fade back out across the middle of the approach.
		outStart := s.preemptMs * 0.4
		out := core.ClampF(1-(sinceSpawn-outStart)/(s.preemptMs*0.35), 0, 1)
		if out < in {
			return out
		}
		return in
	}

	return core.ClampF(sinceSpawn/fadeIn, 0, 1)
}
