// Package config provides YAML-based settings loading for the rhythm
// client: where charts live, where results are stored, audio calibration
// and gameplay key bindings.
package config

// Settings is the full client configuration.
type Settings struct {
	// SongsDir is the chart library root scanned for .osu files.
	SongsDir string `yaml:"songs_dir"`
	// Database is the SQLite results file. A leading ~ expands to the
	// home directory when the store opens it.
	Database string `yaml:"database"`

	Audio    AudioSettings    `yaml:"audio"`
	Gameplay GameplaySettings `yaml:"gameplay"`
	Keys     KeySettings      `yaml:"keys"`
}

// AudioSettings controls playback.
type AudioSettings struct {
	// Volume is linear in [0, 1].
	Volume float64 `yaml:"volume"`
	// OffsetMs shifts judgment relative to the audible music; positive
	// values compensate output latency by judging later.
	OffsetMs float64 `yaml:"offset_ms"`
	// Silent disables real playback and runs the simulated clock.
	Silent bool `yaml:"silent"`
}

// GameplaySettings controls the session loop.
type GameplaySettings struct {
	// TickRate is the simulation and render rate in frames per second.
	TickRate int `yaml:"tick_rate"`
	// Mods is the default mod string applied when --mods is not given.
	Mods string `yaml:"mods"`
}

// KeySettings maps the two hit inputs. Single characters.
type KeySettings struct {
	HitA string `yaml:"hit_a"`
	HitB string `yaml:"hit_b"`
}

// normalize clamps out-of-range values back to usable ones instead of
// failing the load.
func (s *Settings) normalize() {
	if s.Audio.Volume < 0 {
		s.Audio.Volume = 0
	}
	if s.Audio.Volume > 1 {
		s.Audio.Volume = 1
	}
	if s.Gameplay.TickRate < 30 || s.Gameplay.TickRate > 240 {
		s.Gameplay.TickRate = 60
	}
	if s.Keys.HitA == "" {
		s.Keys.HitA = "z"
	}
	if s.Keys.HitB == "" {
		s.Keys.HitB = "x"
	}
}
