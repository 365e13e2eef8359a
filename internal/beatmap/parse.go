package beatmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/curve"
)

// ErrMalformed is returned when a chart cannot produce a playable beatmap:
// no hit objects parse, or the [HitObjects] section is absent entirely.
// Individually broken lines are skipped, not fatal.
var ErrMalformed = errors.New("beatmap: malformed chart")

// Minimum comma-separated fields for a row to be considered at all.
const (
	minTimingFields = 2
	minObjectFields = 5
)

// Fallback beat length when a slider has no governing uninherited point.
const defaultBeatLength = 500.0

type section int

const (
	secNone section = iota
	secGeneral
	secMetadata
	secDifficulty
	secEvents
	secTimingPoints
	secColours
	secHitObjects
)

// ParseFile reads and parses a chart from disk.
func ParseFile(path string) (*Beatmap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("beatmap: cannot open chart: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseString parses a chart held in memory. Convenient for tests.
func ParseString(raw string) (*Beatmap, error) {
	return Parse(strings.NewReader(raw))
}

// Parse converts chart text into a Beatmap. Processing is line-oriented and
// section-scoped; unknown sections and unknown lines are ignored for forward
// compatibility with chart extensions. After all lines are consumed, hit
// objects are sorted by start time, slider durations are resolved against
// the governing timing points, and combo numbers/colors are assigned.
func Parse(r io.Reader) (*Beatmap, error) {
	b := &Beatmap{
		Difficulty: Difficulty{
			HP: 5, CS: 5, OD: 5, AR: -1,
			SliderMultiplier: 1.4,
			SliderTickRate:   1,
		},
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	sec := secNone
	sawObjectSection := false
	seenAR := false

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			switch strings.ToLower(line) {
			case "[general]":
				sec = secGeneral
			case "[metadata]":
				sec = secMetadata
			case "[difficulty]":
				sec = secDifficulty
			case "[events]":
				sec = secEvents
			case "[timingpoints]":
				sec = secTimingPoints
			case "[colours]":
				sec = secColours
			case "[hitobjects]":
				sec = secHitObjects
				sawObjectSection = true
			default:
				sec = secNone
			}
			continue
		}

		switch sec {
		case secGeneral:
			k, v := splitKeyVal(line)
			if strings.EqualFold(k, "audiofilename") {
				b.Metadata.AudioFilename = strings.Trim(v, "\"")
			}

		case secMetadata:
			k, v := splitKeyVal(line)
			switch strings.ToLower(k) {
			case "title":
				b.Metadata.Title = v
			case "artist":
				b.Metadata.Artist = v
			case "creator":
				b.Metadata.Creator = v
			case "version":
				b.Metadata.Version = v
			}

		case secDifficulty:
			k, v := splitKeyVal(line)
			switch strings.ToLower(k) {
			case "hpdrainrate":
				b.Difficulty.HP = parseFloat(v, 5)
			case "circlesize":
				b.Difficulty.CS = parseFloat(v, 5)
			case "overalldifficulty":
				b.Difficulty.OD = parseFloat(v, 5)
			case "approachrate":
				b.Difficulty.AR = parseFloat(v, 5)
				seenAR = true
			case "slidermultiplier":
				b.Difficulty.SliderMultiplier = parseFloat(v, 1.4)
			case "slidertickrate":
				b.Difficulty.SliderTickRate = parseFloat(v, 1)
			}

		case secEvents:
			parts := strings.Split(line, ",")
			// "2,start,end" is a break period; everything else is
			// presentation (backgrounds, storyboard) and ignored.
			if len(parts) >= 3 && (parts[0] == "2" || strings.EqualFold(parts[0], "break")) {
				start := parseFloat(parts[1], 0)
				end := parseFloat(parts[2], start)
				if end < start {
					end = start
				}
				b.Breaks = append(b.Breaks, Break{Start: start, End: end})
			}

		case secTimingPoints:
			if tp, ok := parseTimingPoint(line); ok {
				b.TimingPoints = append(b.TimingPoints, tp)
			}

		case secColours:
			k, v := splitKeyVal(line)
			if strings.HasPrefix(strings.ToLower(k), "combo") {
				if rgb, ok := parseRGB(v); ok {
					b.ComboColors = append(b.ComboColors, rgb)
				}
			}

		case secHitObjects:
			if obj := parseHitObject(line); obj != nil {
				b.Objects = append(b.Objects, obj)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("beatmap: read failed: %w", err)
	}

	if !sawObjectSection {
		return nil, fmt.Errorf("%w: no [HitObjects] section", ErrMalformed)
	}
	if len(b.Objects) == 0 {
		return nil, fmt.Errorf("%w: no hit objects", ErrMalformed)
	}

	// Old charts omit ApproachRate; it defaults to OverallDifficulty.
	if !seenAR || b.Difficulty.AR < 0 {
		b.Difficulty.AR = b.Difficulty.OD
	}
	clampDifficulty(&b.Difficulty)

	// Charts are not guaranteed pre-sorted.
	sort.SliceStable(b.Objects, func(i, j int) bool {
		return b.Objects[i].Time() < b.Objects[j].Time()
	})

	resolveSliders(b)
	assignCombos(b)

	return b, nil
}

// parseTimingPoint parses one [TimingPoints] row:
// time,beatLength[,meter[,sampleSet,sampleIndex,volume[,uninherited[,effects]]]]
func parseTimingPoint(line string) (TimingPoint, bool) {
	parts := strings.Split(line, ",")
	if len(parts) < minTimingFields {
		return TimingPoint{}, false
	}

	tp := TimingPoint{
		Time:       parseFloat(parts[0], 0),
		BeatLength: parseFloat(parts[1], math.NaN()),
		Meter:      4,
		// Without the flag field, sign decides: positive beat lengths
		// define tempo, negative ones a velocity multiplier.
		Uninherited: true,
	}
	if math.IsNaN(tp.BeatLength) {
		return TimingPoint{}, false
	}
	if len(parts) >= 3 {
		if m := parseInt(parts[2], 4); m > 0 {
			tp.Meter = m
		}
	}
	if len(parts) >= 7 {
		tp.Uninherited = strings.TrimSpace(parts[6]) == "1"
	} else {
		tp.Uninherited = tp.BeatLength >= 0
	}
	if len(parts) >= 8 {
		tp.Kiai = parseInt(parts[7], 0)&1 != 0
	}
	return tp, true
}

// parseHitObject parses one [HitObjects] row:
// x,y,time,type,hitSound[,objectParams...]
// Returns nil for rows with too few fields or unusable geometry.
func parseHitObject(line string) HitObject {
	parts := strings.Split(line, ",")
	if len(parts) < minObjectFields {
		return nil
	}

	base := Base{
		Position: core.Vec{
			X: parseFloat(parts[0], 0),
			Y: parseFloat(parts[1], 0),
		},
		StartTime: parseFloat(parts[2], 0),
	}
	flags := parseInt(parts[3], 0)
	base.IsNewCombo = flags&typeNewCombo != 0

	switch {
	case flags&typeSpinner != 0:
		end := base.StartTime
		if len(parts) >= 6 {
			end = parseFloat(parts[5], base.StartTime)
		}
		if end < base.StartTime {
			end = base.StartTime
		}
		// Spinners sit at the playfield center regardless of the row's x,y.
		base.Position = core.PlayfieldCenter()
		return &Spinner{Base: base, End: end}

	case flags&typeSlider != 0:
		if len(parts) < 8 {
			return nil
		}
		curveType, controls := parseSliderPath(base.Position, parts[5])
		slides := parseInt(parts[6], 1)
		if slides < 1 {
			slides = 1
		}
		length := parseFloat(parts[7], 0)
		if length <= 0 {
			length = 1
		}
		return &Slider{
			Base:          base,
			ControlPoints: controls,
			CurveType:     curveType,
			Slides:        slides,
			PixelLength:   length,
		}

	default:
		// Circle, or an unknown type treated as one.
		return &Circle{Base: base}
	}
}

// parseSliderPath converts "B|x:y|x:y|..." into a curve kind and the full
// control point list (the slider head is the first point).
func parseSliderPath(head core.Vec, spec string) (curve.Kind, []core.Vec) {
	points := []core.Vec{head}

	tokens := strings.Split(strings.TrimSpace(spec), "|")
	kind := curve.KindBezier
	if len(tokens) > 0 {
		switch strings.ToUpper(strings.TrimSpace(tokens[0])) {
		case "L":
			kind = curve.KindLinear
		case "P":
			kind = curve.KindPerfect
		default:
			// "B", "C" (legacy Catmull) and anything unknown take the
			// Bezier path; it degrades gracefully for any point count.
			kind = curve.KindBezier
		}
		tokens = tokens[1:]
	}

	for _, tok := range tokens {
		xy := strings.Split(strings.TrimSpace(tok), ":")
		if len(xy) != 2 {
			continue
		}
		points = append(points, core.Vec{
			X: parseFloat(xy[0], head.X),
			Y: parseFloat(xy[1], head.Y),
		})
	}

	// A perfect arc needs exactly head + 2 points; otherwise fall back.
	if kind == curve.KindPerfect && len(points) != 3 {
		kind = curve.KindBezier
	}
	return kind, points
}

func parseRGB(v string) (RGB, bool) {
	parts := strings.Split(v, ",")
	if len(parts) < 3 {
		return RGB{}, false
	}
	return RGB{
		R: uint8(core.Clamp(parseInt(parts[0], 0), 0, 255)),
		G: uint8(core.Clamp(parseInt(parts[1], 0), 0, 255)),
		B: uint8(core.Clamp(parseInt(parts[2], 0), 0, 255)),
	}, true
}

func clampDifficulty(d *Difficulty) {
	d.HP = core.ClampF(d.HP, 0, 10)
	d.CS = core.ClampF(d.CS, 0, 10)
	d.OD = core.ClampF(d.OD, 0, 10)
	d.AR = core.ClampF(d.AR, 0, 10)
	d.SliderMultiplier = core.ClampF(d.SliderMultiplier, 0.4, 3.6)
	d.SliderTickRate = core.ClampF(d.SliderTickRate, 0.5, 8)
}

// ---------- field helpers ----------

func splitKeyVal(line string) (key, val string) {
	i := strings.Index(line, ":")
	if i < 0 {
		return strings.TrimSpace(line), ""
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:])
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

func parseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return v
}
