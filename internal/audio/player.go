// Package audio provides the playback side of a session: a real beep-backed
// player decoding the chart's music file, and a silent simulated source for
// chart-only play, remote sessions and tests. Both satisfy
// gameplay.AudioSource.
package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"

	"github.com/vovakirdan/tui-rhythm/internal/gameplay"
)

// ErrLoadFailed wraps any decode or file error so callers can distinguish
// a broken music file from everything else.
var ErrLoadFailed = errors.New("audio: load failed")

// The speaker mixes everything at one fixed rate; file rates are converted
// through the resampler.
const speakerRate = beep.SampleRate(44100)

var speakerInit sync.Once

func initSpeaker() error {
	var err error
	speakerInit.Do(func() {
		err = speaker.Init(speakerRate, speakerRate.N(time.Millisecond*50))
	})
	return err
}

// Player plays one decoded music file through the beep speaker. All state
// shared with the playback goroutine is touched under the speaker lock.
type Player struct {
	streamer beep.StreamSeekCloser
	format   beep.Format

	resampler *beep.Resampler
	volume    *effects.Volume
	ctrl      *beep.Ctrl

	// Base ratio converting the file rate to the speaker rate; the mod
	// speed multiplier stacks on top of it.
	baseRatio float64

	started bool
	closed  bool
}

var _ gameplay.AudioSource = (*Player)(nil)

// NewPlayer opens and decodes a music file by extension (.mp3 or .wav) and
// prepares it for playback at the given volume in [0, 1]. The file is not
// played until Play.
func NewPlayer(path string, volume float64) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: unsupported format %q", ErrLoadFailed, filepath.Ext(path))
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	if err := initSpeaker(); err != nil {
		streamer.Close()
		return nil, fmt.Errorf("%w: speaker: %v", ErrLoadFailed, err)
	}

	p := &Player{
		streamer:  streamer,
		format:    format,
		baseRatio: float64(format.SampleRate) / float64(speakerRate),
	}
	p.resampler = beep.ResampleRatio(4, p.baseRatio, streamer)
	p.volume = &effects.Volume{
		Streamer: p.resampler,
		Base:     2,
		Volume:   volumeToDb(volume),
		Silent:   volume <= 0,
	}
	p.ctrl = &beep.Ctrl{Streamer: p.volume, Paused: true}
	return p, nil
}

// volumeToDb maps a linear 0..1 volume onto the exponential scale beep's
// Volume effect expects. 1 is unity gain.
func volumeToDb(v float64) float64 {
	if v <= 0 {
		return 0
	}
	if v > 1 {
		v = 1
	}
	// Each unit of Volume doubles or halves the power (Base 2).
	return (v - 1) * 5
}

// Play starts or restarts playback from the given offset.
func (p *Player) Play(offsetMs float64) error {
	if p.closed {
		return fmt.Errorf("%w: player closed", ErrLoadFailed)
	}
	speaker.Lock()
	if err := p.streamer.Seek(p.sampleAt(offsetMs)); err != nil {
		speaker.Unlock()
		return fmt.Errorf("audio: seek: %w", err)
	}
	p.ctrl.Paused = false
	speaker.Unlock()

	if !p.started {
		speaker.Play(p.ctrl)
		p.started = true
	}
	return nil
}

// Stop halts playback. The player can be started again with Play.
func (p *Player) Stop() {
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

// Pause suspends playback in place.
func (p *Player) Pause() {
	speaker.Lock()
	p.ctrl.Paused = true
	speaker.Unlock()
}

// Resume continues playback from the paused position.
func (p *Player) Resume() {
	speaker.Lock()
	p.ctrl.Paused = false
	speaker.Unlock()
}

// Seek moves the playback position.
func (p *Player) Seek(offsetMs float64) {
	speaker.Lock()
	defer speaker.Unlock()
	// Seeking past the end is clamped by the sample count.
	pos := p.sampleAt(offsetMs)
	if max := p.streamer.Len(); pos > max {
		pos = max
	}
	_ = p.streamer.Seek(pos)
}

// SetRate adjusts the playback speed multiplier, stacking on the file-rate
// conversion. Pitch shifts with it, the usual rhythm game behavior.
func (p *Player) SetRate(multiplier float64) {
	if multiplier <= 0 {
		multiplier = 1
	}
	speaker.Lock()
	p.resampler.SetRatio(p.baseRatio * multiplier)
	speaker.Unlock()
}

// PositionMs reports the current decode position in milliseconds.
func (p *Player) PositionMs() float64 {
	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.msAt(pos)
}

// DurationMs reports the total track length in milliseconds.
func (p *Player) DurationMs() float64 {
	return p.msAt(p.streamer.Len())
}

// Close releases the decoder. The player must not be used afterwards.
func (p *Player) Close() error {
	if p.closed {
		return nil
	}
	p.Stop()
	p.closed = true
	return p.streamer.Close()
}

func (p *Player) sampleAt(ms float64) int {
	return p.format.SampleRate.N(time.Duration(ms * float64(time.Millisecond)))
}

func (p *Player) msAt(samples int) float64 {
	return float64(p.format.SampleRate.D(samples)) / float64(time.Millisecond)
}
