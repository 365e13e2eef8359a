// Package library discovers playable charts on disk. A songs directory is
// scanned recursively for .osu files; each parseable chart becomes an Entry
// identified by a content hash, so scores stay attached to the exact chart
// version they were set on.
package library

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
)

// Entry is one discovered chart. The beatmap itself is parsed lazily; the
// scan keeps only what listing and selection need.
type Entry struct {
	// Path is the absolute chart file location.
	Path string
	// Hash identifies the chart content; stable across renames.
	Hash string

	Title   string
	Artist  string
	Creator string
	Version string

	Objects int
	// LengthMs spans the first object to the last resolution time.
	LengthMs float64

	Difficulty beatmap.Difficulty

	audioPath string
}

// DisplayName formats the entry the way chart lists show it.
func (e Entry) DisplayName() string {
	if e.Title == "" {
		return filepath.Base(e.Path)
	}
	if e.Version == "" {
		return fmt.Sprintf("%s - %s", e.Artist, e.Title)
	}
	return fmt.Sprintf("%s - %s [%s]", e.Artist, e.Title, e.Version)
}

// AudioPath is the chart's music file resolved against the chart location
// at scan time. Empty when the chart declares no audio.
func (e Entry) AudioPath() string {
	return e.audioPath
}

// WithAudio returns a copy of the entry pointing at a different music
// file, for the --audio override.
func (e Entry) WithAudio(path string) Entry {
	e.audioPath = path
	return e
}

// Load parses the full beatmap for play.
func (e Entry) Load() (*beatmap.Beatmap, error) {
	return beatmap.ParseFile(e.Path)
}

// Scan walks the songs directory and returns every parseable chart, sorted
// by artist, title and version. Unparseable files are logged and skipped;
// an unreadable root is an error.
func Scan(songsDir string) ([]Entry, error) {
	info, err := os.Stat(songsDir)
	if err != nil {
		return nil, fmt.Errorf("library: songs dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("library: %s is not a directory", songsDir)
	}

	var entries []Entry
	err = filepath.WalkDir(songsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".osu") {
			return nil
		}

		entry, err := load(path)
		if err != nil {
			log.Warn("skipping chart", "path", path, "err", err)
			return nil
		}
		entries = append(entries, entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("library: scan: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Artist != b.Artist {
			return a.Artist < b.Artist
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.Version < b.Version
	})
	return entries, nil
}

// FromFile builds an Entry for a single chart file outside any scan, for
// playing a chart given directly on the command line.
func FromFile(path string) (Entry, error) {
	entry, err := load(path)
	if err != nil {
		return Entry{}, fmt.Errorf("library: %s: %w", path, err)
	}
	return entry, nil
}

// load builds one Entry from a chart file: hash the raw bytes, parse, pull
// the listing fields.
func load(path string) (Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}

	b, err := beatmap.ParseString(string(raw))
	if err != nil {
		return Entry{}, err
	}

	sum := sha256.Sum256(raw)
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	entry := Entry{
		Path:       abs,
		Hash:       hex.EncodeToString(sum[:]),
		Title:      b.Metadata.Title,
		Artist:     b.Metadata.Artist,
		Creator:    b.Metadata.Creator,
		Version:    b.Metadata.Version,
		Objects:    len(b.Objects),
		LengthMs:   b.LastEndTime() - b.FirstObjectTime(),
		Difficulty: b.Difficulty,
	}
	if b.Metadata.AudioFilename != "" {
		entry.audioPath = filepath.Join(filepath.Dir(abs), b.Metadata.AudioFilename)
	}
	return entry, nil
}

// Find returns the entry matching a chart path or hash prefix, letting the
// CLI accept either form.
func Find(entries []Entry, key string) (Entry, bool) {
	if abs, err := filepath.Abs(key); err == nil {
		for _, e := range entries {
			if e.Path == abs {
				return e, true
			}
		}
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Hash, key) {
			return e, true
		}
	}
	return Entry{}, false
}
