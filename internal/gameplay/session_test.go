package gameplay

import (
	"errors"
	"math"
	"testing"

	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/mods"
	"github.com/vovakirdan/tui-rhythm/internal/scoring"
)

// stubAudio is a deterministic AudioSource: the position only moves on
// Play and Seek, so the session clock advances by frame deltas.
type stubAudio struct {
	playing   bool
	paused    bool
	stopped   bool
	pos       float64
	rate      float64
	playCalls int
	seekCalls int
}

func (a *stubAudio) Play(offsetMs float64) error {
	a.playing = true
	a.pos = offsetMs
	a.playCalls++
	return nil
}
func (a *stubAudio) Stop()                 { a.playing = false; a.stopped = true }
func (a *stubAudio) Pause()                { a.paused = true }
func (a *stubAudio) Resume()               { a.paused = false }
func (a *stubAudio) Seek(offsetMs float64) { a.pos = offsetMs; a.seekCalls++ }
func (a *stubAudio) SetRate(m float64)     { a.rate = m }
func (a *stubAudio) PositionMs() float64   { return a.pos }
func (a *stubAudio) DurationMs() float64   { return 60000 }

// testConfig ticks at 100 Hz for a 10ms frame delta.
func testConfig() core.RuntimeConfig {
	return core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 100}
}

func mustParse(t *testing.T, chart string) *beatmap.Beatmap {
	t.Helper()
	b, err := beatmap.ParseString(chart)
	if err != nil {
		t.Fatalf("parse chart: %v", err)
	}
	return b
}

const oneCircleChart = `[Difficulty]
HPDrainRate:5
CircleSize:5
OverallDifficulty:5
ApproachRate:5

[HitObjects]
256,192,1000,1,0
`

func startSession(t *testing.T, chart string, modSet mods.Set) (*Session, *stubAudio) {
	t.Helper()
	s := NewSession(mustParse(t, chart), modSet, testConfig())
	audio := &stubAudio{}
	epoch := s.BeginLoading()
	s.AudioReady(epoch, audio, nil)
	if s.State() != StatePlaying {
		t.Fatalf("state after AudioReady = %s, want playing", s.State())
	}
	return s, audio
}

// tickUntil drives empty frames until the condition holds, failing the
// test if it never does.
func tickUntil(t *testing.T, s *Session, cond func() bool) {
	t.Helper()
	for i := 0; i < 5000; i++ {
		if cond() {
			return
		}
		s.Tick(nil)
	}
	t.Fatalf("condition never reached; state=%s clock=%f", s.State(), s.ClockMs())
}

func hitAt(pos core.Vec) *core.InputFrame {
	f := core.NewInputFrame()
	f.SetCursor(pos)
	f.Set(core.ActionHitA)
	return &f
}

func TestSessionPerfectRun(t *testing.T) {
	s, audio := startSession(t, oneCircleChart, 0)

	tickUntil(t, s, func() bool { return s.ClockMs() >= 995 })
	s.Tick(hitAt(core.Vec{X: 256, Y: 192}))

	counts := s.Tracker().Counts()
	if counts.Perfect != 1 {
		t.Fatalf("counts = %+v, want one perfect", counts)
	}
	if s.Tracker().Score() != 300 {
		t.Errorf("score = %d, want 300", s.Tracker().Score())
	}

	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	if s.State() != StateCompleted {
		t.Fatalf("state = %s, want completed", s.State())
	}
	if g := s.Tracker().Grade(); g != scoring.GradeSS {
		t.Errorf("grade = %s, want SS", g)
	}
	if acc := s.Tracker().Accuracy(); acc != 100 {
		t.Errorf("accuracy = %f, want 100", acc)
	}
	if !audio.stopped {
		t.Error("audio still running after completion")
	}
}

func TestSessionNoInputMisses(t *testing.T) {
	s, _ := startSession(t, oneCircleChart, 0)

	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	if s.State() != StateCompleted {
		t.Fatalf("state = %s, want completed", s.State())
	}
	counts := s.Tracker().Counts()
	if counts.Miss != 1 || counts.Total() != 1 {
		t.Fatalf("counts = %+v, want exactly one miss", counts)
	}
	if acc := s.Tracker().Accuracy(); acc != 0 {
		t.Errorf("accuracy = %f, want 0", acc)
	}
	want := scoring.StartingHealth - scoring.MissPenalty(5)
	if math.Abs(s.Health()-want) > 1e-9 {
		t.Errorf("health = %f, want %f", s.Health(), want)
	}
	if s.Tracker().Score() != 0 {
		t.Errorf("score = %d, want 0", s.Tracker().Score())
	}
}

func TestSessionTimingTiers(t *testing.T) {
	// OD 5 windows: perfect 50, great 100, good 150.
	cases := []struct {
		name    string
		pressAt float64
		want    scoring.Judgment
	}{
		{"inside perfect", 1030, scoring.JudgmentPerfect},
		{"inside great", 1070, scoring.JudgmentGreat},
		{"inside good", 1110, scoring.JudgmentGood},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s, _ := startSession(t, oneCircleChart, 0)
			tickUntil(t, s, func() bool { return s.ClockMs() >= c.pressAt })
			s.Tick(hitAt(core.Vec{X: 256, Y: 192}))

			counts := s.Tracker().Counts()
			got := scoring.JudgmentMiss
			switch {
			case counts.Perfect == 1:
				got = scoring.JudgmentPerfect
			case counts.Great == 1:
				got = scoring.JudgmentGreat
			case counts.Good == 1:
				got = scoring.JudgmentGood
			}
			if got != c.want {
				t.Errorf("judgment = %s, want %s (counts %+v)", got, c.want, counts)
			}
		})
	}
}

func TestSessionLatePressIsAbsorbed(t *testing.T) {
	s, _ := startSession(t, oneCircleChart, 0)
	// Past the widest window: the press matches nothing.
	tickUntil(t, s, func() bool { return s.ClockMs() >= 1170 })
	s.Tick(hitAt(core.Vec{X: 256, Y: 192}))

	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	counts := s.Tracker().Counts()
	if counts.Miss != 1 || counts.Total() != 1 {
		t.Errorf("counts = %+v, want one timeout miss", counts)
	}
}

func TestSessionCursorOutsideCircle(t *testing.T) {
	s, _ := startSession(t, oneCircleChart, 0)
	tickUntil(t, s, func() bool { return s.ClockMs() >= 995 })
	// Perfect timing, hopeless aim.
	s.Tick(hitAt(core.Vec{X: 10, Y: 10}))

	if total := s.Tracker().Counts().Total(); total != 0 {
		t.Errorf("judged %d objects, want 0 (press absorbed)", total)
	}
}

func TestSessionEarliestObjectClaimsPress(t *testing.T) {
	// Two circles 100ms apart, so their good windows (150ms at OD 5)
	// overlap, at positions well out of each other's radius.
	chart := `[Difficulty]
HPDrainRate:5
CircleSize:5
OverallDifficulty:5
ApproachRate:5

[HitObjects]
100,100,1000,1,0
400,300,1100,1,0
`
	s, _ := startSession(t, chart, 0)

	// Both circles are inside their windows; the earliest one claims the
	// press even though the cursor sits on the second.
	tickUntil(t, s, func() bool { return s.ClockMs() >= 1095 })
	s.Tick(hitAt(core.Vec{X: 400, Y: 300}))
	if total := s.Tracker().Counts().Total(); total != 0 {
		t.Fatalf("judged %d objects, want 0 (press absorbed by earliest circle)", total)
	}

	// A press on the first circle still lands, and the second stays live.
	s.Tick(hitAt(core.Vec{X: 100, Y: 100}))
	s.Tick(hitAt(core.Vec{X: 400, Y: 300}))

	counts := s.Tracker().Counts()
	if counts.Total() != 2 || counts.Miss != 0 {
		t.Fatalf("counts = %+v, want both circles hit", counts)
	}
}

func TestSessionSliderHeadHit(t *testing.T) {
	chart := `[Difficulty]
SliderMultiplier:1.0

[TimingPoints]
0,500,4,2,0,60,1,0

[HitObjects]
100,100,1000,2,0,L|200:100,1,100
`
	s, _ := startSession(t, chart, 0)

	tickUntil(t, s, func() bool { return s.ClockMs() >= 995 })
	s.Tick(hitAt(core.Vec{X: 100, Y: 100}))

	// The head is hit but the slider only resolves at its end time.
	if total := s.Tracker().Counts().Total(); total != 0 {
		t.Fatalf("slider judged early: counts %+v", s.Tracker().Counts())
	}

	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	if s.State() != StateCompleted {
		t.Fatalf("state = %s, want completed", s.State())
	}
	counts := s.Tracker().Counts()
	if counts.Perfect != 1 {
		t.Errorf("counts = %+v, want the head tier carried to the end", counts)
	}
}

func TestSessionSliderIgnoredMisses(t *testing.T) {
	chart := `[Difficulty]
SliderMultiplier:1.0

[TimingPoints]
0,500,4,2,0,60,1,0

[HitObjects]
100,100,1000,2,0,L|200:100,1,100
`
	s, _ := startSession(t, chart, 0)
	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	if counts := s.Tracker().Counts(); counts.Miss != 1 {
		t.Errorf("counts = %+v, want one miss", counts)
	}
}

func TestSessionSpinner(t *testing.T) {
	chart := `[HitObjects]
256,192,1000,12,0,1400
`
	s, _ := startSession(t, chart, 0)
	tickUntil(t, s, func() bool { return s.ClockMs() >= 1100 })
	s.Tick(hitAt(core.Vec{X: 0, Y: 0})) // spinners ignore aim

	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	if counts := s.Tracker().Counts(); counts.Perfect != 1 {
		t.Errorf("counts = %+v, want spun spinner perfect", counts)
	}
}

func TestSessionSkip(t *testing.T) {
	chart := `[HitObjects]
256,192,10000,1,0
`
	s, audio := startSession(t, chart, 0)
	s.Tick(nil)
	if !s.CanSkip() {
		t.Fatal("skip should be available during a long lead-in")
	}

	s.Skip()
	if got := s.ClockMs(); got != 8000 {
		t.Errorf("clock after skip = %f, want 8000", got)
	}
	if !audio.playing || audio.pos != 8000 {
		t.Errorf("audio pos = %f playing=%v, want seeked to 8000", audio.pos, audio.playing)
	}
	if s.CanSkip() {
		t.Error("skip still available after skipping")
	}
}

func TestSessionPauseResume(t *testing.T) {
	s, audio := startSession(t, oneCircleChart, 0)
	tickUntil(t, s, func() bool { return s.ClockMs() >= 100 })

	s.Pause()
	if s.State() != StatePaused || !audio.paused {
		t.Fatalf("state = %s paused=%v, want paused", s.State(), audio.paused)
	}
	before := s.ClockMs()
	s.Tick(nil)
	if s.ClockMs() != before {
		t.Error("clock advanced while paused")
	}

	s.Resume()
	if s.State() != StatePlaying || audio.paused {
		t.Fatalf("state = %s, want playing with audio resumed", s.State())
	}
	s.Tick(nil)
	if s.ClockMs() <= before {
		t.Error("clock did not advance after resume")
	}
}

func TestSessionRetry(t *testing.T) {
	s, _ := startSession(t, oneCircleChart, 0)
	tickUntil(t, s, func() bool { return s.State() != StatePlaying })

	s.Retry()
	if s.State() != StatePlaying {
		t.Fatalf("state after retry = %s, want playing", s.State())
	}
	if s.Tracker().Counts().Total() != 0 {
		t.Error("judgments survived a retry")
	}
	if s.ClockMs() >= 0 {
		t.Errorf("clock after retry = %f, want back in the lead-in", s.ClockMs())
	}
	if s.Health() != scoring.StartingHealth {
		t.Errorf("health after retry = %f, want full", s.Health())
	}
}

const drainChart = `[Difficulty]
HPDrainRate:10
OverallDifficulty:5

[HitObjects]
0,0,1000,1,0
64,0,1200,1,0
128,0,1400,1,0
192,0,1600,1,0
256,0,1800,1,0
320,0,2000,1,0
384,0,2200,1,0
448,0,2400,1,0
0,64,2600,1,0
64,64,2800,1,0
`

func TestSessionFailsAtZeroHealth(t *testing.T) {
	s, audio := startSession(t, drainChart, 0)
	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	if s.State() != StateFailed {
		t.Fatalf("state = %s, want failed", s.State())
	}
	if s.Health() > 0 {
		t.Errorf("health = %f after fail", s.Health())
	}
	if !audio.stopped {
		t.Error("audio still running after fail")
	}
}

func TestSessionNoFailSurvives(t *testing.T) {
	m := mods.Set(0).Toggle(mods.NoFail)
	s, _ := startSession(t, drainChart, m)
	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	if s.State() != StateCompleted {
		t.Errorf("state = %s, want completed under NoFail", s.State())
	}
}

func TestSessionAutoplay(t *testing.T) {
	chart := `[Difficulty]
SliderMultiplier:1.0

[TimingPoints]
0,500,4,2,0,60,1,0

[HitObjects]
64,64,1000,1,0
100,100,1500,2,0,L|200:100,1,100
256,192,2500,12,0,2900
448,320,3400,1,0
`
	m := mods.Set(0).Toggle(mods.Autoplay)
	s, _ := startSession(t, chart, m)

	tickUntil(t, s, func() bool { return s.State() != StatePlaying })
	if s.State() != StateCompleted {
		t.Fatalf("state = %s, want completed", s.State())
	}
	counts := s.Tracker().Counts()
	if counts.Miss != 0 || counts.Perfect != counts.Total() {
		t.Errorf("autoplay counts = %+v, want all perfect", counts)
	}
	if g := s.Tracker().Grade(); g != scoring.GradeSS {
		t.Errorf("autoplay grade = %s, want SS", g)
	}
}

func TestSessionEpochGuardsStaleLoads(t *testing.T) {
	s := NewSession(mustParse(t, oneCircleChart), 0, testConfig())

	stale := s.BeginLoading()
	current := s.BeginLoading()

	s.AudioReady(stale, &stubAudio{}, nil)
	if s.State() != StateLoading {
		t.Fatalf("stale load applied: state = %s", s.State())
	}

	s.AudioReady(current, &stubAudio{}, nil)
	if s.State() != StatePlaying {
		t.Fatalf("current load ignored: state = %s", s.State())
	}
}

func TestSessionLoadFailure(t *testing.T) {
	s := NewSession(mustParse(t, oneCircleChart), 0, testConfig())
	epoch := s.BeginLoading()

	wantErr := errors.New("decode failed")
	s.AudioReady(epoch, nil, wantErr)

	if s.State() != StateIdle {
		t.Fatalf("state = %s, want idle after load failure", s.State())
	}
	if !errors.Is(s.LoadErr(), wantErr) {
		t.Errorf("LoadErr = %v, want %v", s.LoadErr(), wantErr)
	}
}

func TestSessionSetsAudioRate(t *testing.T) {
	m := mods.Set(0).Toggle(mods.DoubleTime)
	s := NewSession(mustParse(t, oneCircleChart), m, testConfig())
	audio := &stubAudio{}
	s.AudioReady(s.BeginLoading(), audio, nil)
	if audio.rate != 1.5 {
		t.Errorf("audio rate = %f, want 1.5 under DoubleTime", audio.rate)
	}
}

func TestFrameSnapshot(t *testing.T) {
	s, _ := startSession(t, oneCircleChart, 0)

	// Before the approach window opens nothing is visible.
	f := s.Frame()
	if len(f.Objects) != 0 {
		t.Errorf("objects visible during lead-in: %d", len(f.Objects))
	}

	// Inside the window (AR 5 preempt is 1200ms) the circle appears with a
	// shrinking approach value.
	tickUntil(t, s, func() bool { return s.ClockMs() >= 0 })
	f = s.Frame()
	if len(f.Objects) != 1 {
		t.Fatalf("objects = %d, want 1", len(f.Objects))
	}
	obj := f.Objects[0]
	if obj.Kind != beatmap.KindCircle {
		t.Errorf("kind = %s, want circle", obj.Kind)
	}
	approachEarly := obj.Approach

	tickUntil(t, s, func() bool { return s.ClockMs() >= 500 })
	f = s.Frame()
	if len(f.Objects) != 1 || f.Objects[0].Approach >= approachEarly {
		t.Errorf("approach did not shrink: %f -> %f", approachEarly, f.Objects[0].Approach)
	}
	if f.Health != s.Health() || f.State != StatePlaying {
		t.Error("frame scalars do not mirror the session")
	}
}

func TestFrameJudgmentPopup(t *testing.T) {
	s, _ := startSession(t, oneCircleChart, 0)
	tickUntil(t, s, func() bool { return s.ClockMs() >= 995 })
	s.Tick(hitAt(core.Vec{X: 256, Y: 192}))

	f := s.Frame()
	if !f.HasJudgment || f.Judgment != scoring.JudgmentPerfect {
		t.Errorf("popup = %+v, want a perfect judgment", f)
	}
	if f.JudgmentPos != (core.Vec{X: 256, Y: 192}) {
		t.Errorf("popup pos = %+v", f.JudgmentPos)
	}
}
