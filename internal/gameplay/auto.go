package gameplay

import (
	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/mods"
)

// Cursor easing fraction per tick while gliding toward the next target.
const autoEase = 0.35

// automate overlays synthesized input for the automation mods. Autoplay
// and Autopilot replace the cursor with an eased glide to the next target;
// Autoplay and Relax synthesize the press itself. The returned frame keeps
// any real actions the player supplied that the mod does not replace.
func (s *Session) automate(input *core.InputFrame) *core.InputFrame {
	out := core.NewInputFrame()
	if input != nil {
		out = input.Clone()
	}

	idx := s.nextPending()
	if idx < 0 {
		return &out
	}
	obj := s.chart.Objects[idx]
	target := s.autoTarget(obj)

	autoCursor := s.mods.Has(mods.Autoplay) || s.mods.Has(mods.Autopilot)
	if autoCursor {
		out.SetCursor(s.glideToward(target))
	}

	switch {
	case s.mods.Has(mods.Autoplay):
		if s.shouldAutoPress(idx, obj) {
			// Snap so the radius check cannot lose to easing lag.
			out.SetCursor(target)
			s.cursor = target
			out.Set(core.ActionHitA)
		}
	case s.mods.Has(mods.Relax):
		if s.shouldAutoPress(idx, obj) && s.cursor.Dist(target) <= s.radius {
			out.Set(core.ActionHitA)
		}
	}
	return &out
}

// nextPending returns the index of the earliest object still awaiting a
// press, or -1 when none remain.
func (s *Session) nextPending() int {
	for i := s.scanFrom; i < len(s.chart.Objects); i++ {
		st := &s.objects[i]
		if st.judged {
			continue
		}
		if st.headHit || st.spun {
			continue
		}
		return i
	}
	return -1
}

// autoTarget is where the synthetic cursor wants to be for the given
// object: the slider ball while a slider runs, the object position
// otherwise.
func (s *Session) autoTarget(obj beatmap.HitObject) core.Vec {
	if sl, ok := obj.(*beatmap.Slider); ok {
		if s.clockMs > sl.Time() && s.clockMs <= sl.EndTime() && sl.Duration > 0 {
			return sl.BallPositionAt((s.clockMs - sl.Time()) / sl.Duration)
		}
	}
	return obj.Pos()
}

func (s *Session) glideToward(target core.Vec) core.Vec {
	return core.Lerp(s.cursor, target, autoEase)
}

// shouldAutoPress fires once the clock reaches the object's time. Tick
// granularity keeps the press inside the perfect window at any tick rate
// the platform runs.
func (s *Session) shouldAutoPress(idx int, obj beatmap.HitObject) bool {
	if s.clockMs < obj.Time() {
		return false
	}
	if sp, ok := obj.(*beatmap.Spinner); ok {
		return s.clockMs <= sp.EndTime()
	}
	return s.clockMs-obj.Time() <= s.goodMs
}
