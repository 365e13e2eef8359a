// Package gameplay runs a single play session: it owns the game clock,
// windows object visibility, judges input against hit windows, applies
// health drain and decides when the run completes or fails. The session is
// pure with respect to platforms: the tick driver feeds it input frames and
// an AudioSource, and reads Frame snapshots back for rendering.
package gameplay

import (
	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/mods"
	"github.com/vovakirdan/tui-rhythm/internal/scoring"
)

// State is the session lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateCompleted
	StateFailed
)

// String returns the display name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AudioSource is the playback collaborator. The session drives it by the
// game clock; implementations live in the audio package (real output and a
// simulated silent source).
type AudioSource interface {
	Play(offsetMs float64) error
	Stop()
	Pause()
	Resume()
	Seek(offsetMs float64)
	SetRate(multiplier float64)
	PositionMs() float64
	DurationMs() float64
}

// Timing constants in chart milliseconds.
const (
	// Minimum lead-in before the first object becomes relevant.
	leadInMs = 2000
	// Skip is allowed while the clock is this far before the first object.
	skipMarginMs = 2000
	// Extra time after the last judgment before the run completes.
	graceMs = 300
	// How long a resolved object stays on screen fading out.
	fadeOutMs = 150
)

// objectState is the per-session mutable layer over an immutable chart
// object.
type objectState struct {
	judged   bool
	judgment scoring.Judgment

	// Slider head was hit inside the window; the slider resolves with
	// this tier at its end time.
	headHit  bool
	headTier scoring.Judgment

	// Spinner received at least one hit press inside its interval.
	spun bool
}

// Session is one run of one chart under one mod set. Not safe for
// concurrent use; the platform driver owns it and calls it from a single
// goroutine.
type Session struct {
	cfg   core.RuntimeConfig
	chart *beatmap.Beatmap
	mods  mods.Set

	// Difficulty after mod adjustment, and the windows derived from it.
	diff      beatmap.Difficulty
	radius    float64
	preemptMs float64
	perfectMs float64
	greatMs   float64
	goodMs    float64
	speed     float64

	state State
	epoch int

	audio        AudioSource
	audioStarted bool
	loadErr      error

	clockMs       float64
	lastAudioPos  float64
	audioOffsetMs float64

	objects []objectState
	// First object index that may still need attention; everything before
	// it is judged and faded out.
	scanFrom int

	tracker *scoring.Tracker
	health  float64

	cursor core.Vec

	// Set once every object is judged; the run completes when the clock
	// passes it.
	endAtMs float64
	endSet  bool

	lastJudgment    scoring.Judgment
	lastJudgmentAt  float64
	lastJudgmentPos core.Vec
	anyJudged       bool
}

// NewSession prepares a session in the Idle state. The chart must come from
// beatmap.Parse, which guarantees at least one object.
func NewSession(chart *beatmap.Beatmap, modSet mods.Set, cfg core.RuntimeConfig) *Session {
	diff := modSet.ApplyDifficulty(chart.Difficulty)
	perfect, great, good := mods.HitWindowsMs(diff.OD)

	s := &Session{
		cfg:       cfg,
		chart:     chart,
		mods:      modSet,
		diff:      diff,
		radius:    mods.CircleRadius(diff.CS),
		preemptMs: mods.ApproachWindowMs(diff.AR),
		perfectMs: perfect,
		greatMs:   great,
		goodMs:    good,
		speed:     modSet.SpeedMultiplier(),
	}
	s.reset()
	return s
}

// reset rearms the per-run state without touching the loaded audio.
func (s *Session) reset() {
	s.objects = make([]objectState, len(s.chart.Objects))
	s.scanFrom = 0
	s.tracker = scoring.NewTracker(s.chart.Difficulty, s.mods.ScoreMultiplier())
	s.health = scoring.StartingHealth
	s.clockMs = s.leadInStart()
	s.lastAudioPos = -1
	s.audioStarted = false
	s.endSet = false
	s.anyJudged = false
	s.cursor = core.PlayfieldCenter()
}

// leadInStart places the clock so there is always a preamble before the
// first object, even on charts that start immediately.
func (s *Session) leadInStart() float64 {
	start := s.chart.FirstObjectTime() - leadInMs
	if start > -leadInMs {
		start = -leadInMs
	}
	return start
}

// State returns the current lifecycle phase.
func (s *Session) State() State { return s.state }

// Chart returns the immutable chart under play.
func (s *Session) Chart() *beatmap.Beatmap { return s.chart }

// Mods returns the session's mod set.
func (s *Session) Mods() mods.Set { return s.mods }

// ClockMs returns the current game clock in chart milliseconds.
func (s *Session) ClockMs() float64 { return s.clockMs }

// Health returns the current health in [0, 100].
func (s *Session) Health() float64 { return s.health }

// Tracker exposes the score bookkeeping for results display and storage.
func (s *Session) Tracker() *scoring.Tracker { return s.tracker }

// LoadErr returns the audio load failure that pushed the session back to
// Idle, if any.
func (s *Session) LoadErr() error { return s.loadErr }

// SetAudioOffset shifts the clock relative to the reported audio position,
// compensating for output latency. Positive values judge later.
func (s *Session) SetAudioOffset(ms float64) {
	s.audioOffsetMs = ms
}

// BeginLoading moves Idle -> Loading and returns the epoch the async audio
// load must present back to AudioReady. A stale completion from a previous
// attempt is ignored by the epoch check.
func (s *Session) BeginLoading() int {
	s.epoch++
	s.state = StateLoading
	s.loadErr = nil
	return s.epoch
}

// AudioReady completes an async load started by BeginLoading. On success
// the session starts playing from the lead-in; on failure it returns to
// Idle with the error retrievable via LoadErr.
func (s *Session) AudioReady(epoch int, src AudioSource, err error) {
	if epoch != s.epoch || s.state != StateLoading {
		return
	}
	if err != nil {
		s.loadErr = err
		s.state = StateIdle
		return
	}
	s.audio = src
	s.audio.SetRate(s.speed)
	s.reset()
	s.state = StatePlaying
}

// Tick advances the session by one frame: clock, automation, input,
// timeouts, drain, end conditions. Input may be nil.
func (s *Session) Tick(input *core.InputFrame) {
	if s.state != StatePlaying {
		return
	}

	s.advanceClock()

	if s.mods.Automated() {
		input = s.automate(input)
	}

	if input != nil {
		if input.CursorSet {
			s.cursor = clampToPlayfield(input.Cursor)
		}
		if input.Has(core.ActionSkip) {
			s.Skip()
		}
		if input.HitPressed() {
			s.judgeHit()
		}
	}

	s.judgeTimeouts()
	s.applyDrain()
	s.checkEnd()
}

// advanceClock moves the game clock. During the lead-in it free-runs at the
// nominal frame rate scaled by the mod speed; once audio starts it pins to
// the reported playback position, falling back to frame-delta advancement
// when the position has not moved since the last tick (coarse decoder
// granularity).
func (s *Session) advanceClock() {
	dt := s.cfg.FrameDeltaMs() * s.speed

	if !s.audioStarted {
		s.clockMs += dt
		if s.clockMs >= 0 {
			s.startAudio(s.clockMs)
		}
		return
	}

	pos := s.audio.PositionMs()
	if pos > s.lastAudioPos {
		s.clockMs = pos + s.audioOffsetMs
		s.lastAudioPos = pos
	} else {
		s.clockMs += dt
	}
}

func (s *Session) startAudio(offsetMs float64) {
	if s.audio == nil {
		return
	}
	if err := s.audio.Play(offsetMs); err == nil {
		s.audioStarted = true
		s.lastAudioPos = -1
	}
}

// CanSkip reports whether the lead-in skip is currently available.
func (s *Session) CanSkip() bool {
	return s.state == StatePlaying &&
		s.clockMs < s.chart.FirstObjectTime()-skipMarginMs
}

// Skip jumps the clock to just before the first object and seeks audio to
// match. No-op when the skip window has passed.
func (s *Session) Skip() {
	if !s.CanSkip() {
		return
	}
	target := s.chart.FirstObjectTime() - skipMarginMs
	s.clockMs = target
	if target < 0 {
		return
	}
	if s.audioStarted {
		s.audio.Seek(target)
		s.lastAudioPos = target
	} else {
		s.startAudio(target)
	}
}

// Pause suspends play and audio. Only valid while playing.
func (s *Session) Pause() {
	if s.state != StatePlaying {
		return
	}
	s.state = StatePaused
	if s.audioStarted {
		s.audio.Pause()
	}
}

// Resume continues a paused session.
func (s *Session) Resume() {
	if s.state != StatePaused {
		return
	}
	s.state = StatePlaying
	if s.audioStarted {
		s.audio.Resume()
	}
}

// Retry restarts the run from the lead-in with the audio already loaded.
// Valid from Playing, Paused, Completed and Failed.
func (s *Session) Retry() {
	if s.state == StateIdle || s.state == StateLoading {
		return
	}
	s.epoch++
	if s.audio != nil {
		s.audio.Stop()
		s.audio.SetRate(s.speed)
	}
	s.reset()
	s.state = StatePlaying
}

// Stop abandons the session and releases audio.
func (s *Session) Stop() {
	s.epoch++
	if s.audio != nil {
		s.audio.Stop()
	}
	s.state = StateIdle
}

// judgeHit resolves one hit press against the earliest unjudged object
// whose window covers the clock. The earliest in-window object claims the
// press: if the cursor is outside its circle the press is absorbed rather
// than passed on to a later object. Active spinners accept the press as
// spinning and let the scan continue.
func (s *Session) judgeHit() {
	for i := s.scanFrom; i < len(s.chart.Objects); i++ {
		obj := s.chart.Objects[i]
		st := &s.objects[i]
		if st.judged {
			continue
		}
		if obj.Time()-s.goodMs > s.clockMs {
			break
		}

		switch o := obj.(type) {
		case *beatmap.Spinner:
			if s.clockMs >= o.Time() && s.clockMs <= o.EndTime() {
				st.spun = true
			}
			continue

		case *beatmap.Slider:
			if st.headHit {
				continue
			}
			delta := s.clockMs - o.Time()
			if delta < -s.goodMs || delta > s.goodMs {
				continue
			}
			if s.cursor.Dist(o.Pos()) > s.radius {
				return
			}
			st.headHit = true
			st.headTier = s.tierFor(delta)
			return

		default:
			delta := s.clockMs - o.Time()
			if delta < -s.goodMs || delta > s.goodMs {
				continue
			}
			if s.cursor.Dist(o.Pos()) > s.radius {
				return
			}
			s.record(i, s.tierFor(delta))
			return
		}
	}
}

// tierFor maps a signed timing delta to a judgment tier. Callers have
// already confirmed the delta is inside the widest window.
func (s *Session) tierFor(delta float64) scoring.Judgment {
	if delta < 0 {
		delta = -delta
	}
	switch {
	case delta <= s.perfectMs:
		return scoring.JudgmentPerfect
	case delta <= s.greatMs:
		return scoring.JudgmentGreat
	default:
		return scoring.JudgmentGood
	}
}

// judgeTimeouts resolves every object whose chance has passed: circles miss
// after the widest window, sliders resolve at their end (head tier or
// miss), spinners resolve by whether they were spun.
func (s *Session) judgeTimeouts() {
	for i := s.scanFrom; i < len(s.chart.Objects); i++ {
		obj := s.chart.Objects[i]
		st := &s.objects[i]
		if st.judged {
			continue
		}
		if obj.Time()-s.goodMs > s.clockMs {
			break
		}

		switch o := obj.(type) {
		case *beatmap.Slider:
			if st.headHit {
				if s.clockMs > o.EndTime() {
					s.record(i, st.headTier)
				}
			} else if s.clockMs > o.EndTime() && s.clockMs > o.Time()+s.goodMs {
				s.record(i, scoring.JudgmentMiss)
			}

		case *beatmap.Spinner:
			if s.clockMs > o.EndTime() {
				if st.spun {
					s.record(i, scoring.JudgmentPerfect)
				} else {
					s.record(i, scoring.JudgmentMiss)
				}
			}

		default:
			if s.clockMs > o.Time()+s.goodMs {
				s.record(i, scoring.JudgmentMiss)
			}
		}
	}

	// Advance the scan start past the leading run of judged objects.
	for s.scanFrom < len(s.objects) && s.objects[s.scanFrom].judged {
		s.scanFrom++
	}
}

// record finalizes one object's judgment: scoring, health, popup state and
// the potential fail transition.
func (s *Session) record(idx int, j scoring.Judgment) {
	st := &s.objects[idx]
	st.judged = true
	st.judgment = j

	s.tracker.Record(j)
	s.lastJudgment = j
	s.lastJudgmentAt = s.clockMs
	s.lastJudgmentPos = s.chart.Objects[idx].Pos()
	s.anyJudged = true

	if j == scoring.JudgmentMiss {
		s.health -= scoring.MissPenalty(s.diff.HP)
	} else {
		s.health += scoring.HealthGain(j)
	}
	s.health = core.ClampF(s.health, 0, scoring.StartingHealth)

	if s.health <= 0 && !s.mods.Has(mods.NoFail) && !s.mods.Automated() {
		s.fail()
	}
}

// applyDrain charges passive health drain while the clock is inside the
// object span and not inside a break.
func (s *Session) applyDrain() {
	if s.state != StatePlaying {
		return
	}
	first := s.chart.FirstObjectTime()
	last := s.chart.LastEndTime()
	if s.clockMs <= first || s.clockMs >= last || s.chart.InBreak(s.clockMs) {
		return
	}

	drain := scoring.DrainPerSecond(s.diff.HP, s.speed) * s.cfg.FrameDeltaMs() / 1000
	s.health = core.ClampF(s.health-drain, 0, scoring.StartingHealth)
	if s.health <= 0 && !s.mods.Has(mods.NoFail) && !s.mods.Automated() {
		s.fail()
	}
}

func (s *Session) fail() {
	s.state = StateFailed
	if s.audio != nil {
		s.audio.Stop()
	}
}

// checkEnd completes the run a short grace period after the final judgment.
func (s *Session) checkEnd() {
	if s.state != StatePlaying {
		return
	}
	if !s.endSet {
		if s.scanFrom < len(s.objects) {
			return
		}
		s.endAtMs = s.clockMs + graceMs
		s.endSet = true
		return
	}
	if s.clockMs >= s.endAtMs {
		s.state = StateCompleted
		if s.audio != nil {
			s.audio.Stop()
		}
	}
}

func clampToPlayfield(v core.Vec) core.Vec {
	return core.Vec{
		X: core.ClampF(v.X, 0, core.PlayfieldW),
		Y: core.ClampF(v.Y, 0, core.PlayfieldH),
	}
}
