package core

// RuntimeConfig contains configuration passed to a play session and the
// platform layer at initialization. The tick rate drives both simulation
// and rendering; one Tick call per rendered frame.
type RuntimeConfig struct {
	ScreenW  int // Screen width in characters
	ScreenH  int // Screen height in characters
	TickRate int // Simulation ticks per second (default 60)
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// FrameDeltaMs returns the nominal duration of one tick in milliseconds.
// Used as the fallback clock advance when the audio backend reports a
// stale position.
func (c RuntimeConfig) FrameDeltaMs() float64 {
	rate := c.TickRate
	if rate <= 0 {
		rate = 60
	}
	return 1000.0 / float64(rate)
}
