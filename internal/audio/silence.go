package audio

import (
	"time"

	"github.com/vovakirdan/tui-rhythm/internal/gameplay"
)

// Silence is a simulated audio source: it keeps a monotonic playback
// position without producing sound. Used when a chart has no playable music
// file, for remote sessions where audio cannot reach the player, and in
// tests.
type Silence struct {
	durationMs float64
	rate       float64

	playing bool
	paused  bool

	baseMs     float64
	anchoredAt time.Time

	now func() time.Time
}

var _ gameplay.AudioSource = (*Silence)(nil)

// NewSilence creates a silent source of the given length.
func NewSilence(durationMs float64) *Silence {
	return &Silence{
		durationMs: durationMs,
		rate:       1,
		now:        time.Now,
	}
}

// Play starts the simulated position from the given offset.
func (s *Silence) Play(offsetMs float64) error {
	s.baseMs = offsetMs
	s.anchoredAt = s.now()
	s.playing = true
	s.paused = false
	return nil
}

// Stop halts the position where it is.
func (s *Silence) Stop() {
	s.baseMs = s.PositionMs()
	s.playing = false
}

// Pause freezes the position.
func (s *Silence) Pause() {
	if !s.playing || s.paused {
		return
	}
	s.baseMs = s.PositionMs()
	s.paused = true
}

// Resume continues from the frozen position.
func (s *Silence) Resume() {
	if !s.playing || !s.paused {
		return
	}
	s.anchoredAt = s.now()
	s.paused = false
}

// Seek moves the simulated position.
func (s *Silence) Seek(offsetMs float64) {
	s.baseMs = offsetMs
	s.anchoredAt = s.now()
}

// SetRate changes how fast the simulated position advances.
func (s *Silence) SetRate(multiplier float64) {
	if multiplier <= 0 {
		multiplier = 1
	}
	s.baseMs = s.PositionMs()
	s.anchoredAt = s.now()
	s.rate = multiplier
}

// PositionMs returns the simulated position in milliseconds.
func (s *Silence) PositionMs() float64 {
	if !s.playing || s.paused {
		return s.baseMs
	}
	elapsed := s.now().Sub(s.anchoredAt)
	return s.baseMs + float64(elapsed)/float64(time.Millisecond)*s.rate
}

// DurationMs returns the declared length.
func (s *Silence) DurationMs() float64 {
	return s.durationMs
}
