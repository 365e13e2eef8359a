package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Gameplay.TickRate != 60 {
		t.Errorf("tick rate = %d, want 60", cfg.Gameplay.TickRate)
	}
	if cfg.Audio.Volume != 0.8 {
		t.Errorf("volume = %f, want 0.8", cfg.Audio.Volume)
	}
	if cfg.Keys.HitA != "z" || cfg.Keys.HitB != "x" {
		t.Errorf("keys = %+v", cfg.Keys)
	}
	if cfg.SongsDir == "" || cfg.Database == "" {
		t.Errorf("paths empty: %+v", cfg)
	}
}

func TestLoadCustomPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `songs_dir: /tmp/charts
database: /tmp/results.db
audio:
  volume: 0.5
  offset_ms: -20
gameplay:
  tick_rate: 120
  mods: HDDT
keys:
  hit_a: a
  hit_b: s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SongsDir != "/tmp/charts" || cfg.Gameplay.TickRate != 120 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Audio.OffsetMs != -20 || cfg.Gameplay.Mods != "HDDT" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Keys.HitA != "a" || cfg.Keys.HitB != "s" {
		t.Errorf("keys = %+v", cfg.Keys)
	}
}

func TestLoadMissingCustomPathFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing explicit config should error")
	}
}

func TestNormalizeClampsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `audio:
  volume: 7
gameplay:
  tick_rate: 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Audio.Volume != 1 {
		t.Errorf("volume = %f, want clamped to 1", cfg.Audio.Volume)
	}
	if cfg.Gameplay.TickRate != 60 {
		t.Errorf("tick rate = %d, want reset to 60", cfg.Gameplay.TickRate)
	}
	if cfg.Keys.HitA != "z" {
		t.Errorf("missing key binding not defaulted: %+v", cfg.Keys)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/x/y"); got != filepath.Join(home, "x/y") {
		t.Errorf("ExpandHome = %q", got)
	}
	if got := ExpandHome("/abs"); got != "/abs" {
		t.Errorf("ExpandHome passthrough = %q", got)
	}
}
