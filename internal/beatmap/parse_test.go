package beatmap

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const sampleChart = `osu file format v14

[General]
AudioFilename: song.mp3
AudioLeadIn: 0

[Metadata]
Title:Test Song
Artist:Test Artist
Creator:Mapper
Version:Normal

[Difficulty]
HPDrainRate:4
CircleSize:3.5
OverallDifficulty:6
ApproachRate:7
SliderMultiplier:1.6
SliderTickRate:2

[Events]
0,0,"bg.jpg",0,0
2,5000,7000

[TimingPoints]
0,500,4,2,0,60,1,0
2000,-50,4,2,0,60,0,1

[Colours]
Combo1 : 255,0,0
Combo2 : 0,255,0

[HitObjects]
256,192,1000,1,0
100,100,1500,5,0
100,100,2500,2,0,L|200:100,1,100
256,192,4000,12,0,5000
`

func TestParseSampleChart(t *testing.T) {
	b, err := ParseString(sampleChart)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}

	if b.Metadata.Title != "Test Song" || b.Metadata.Artist != "Test Artist" {
		t.Errorf("metadata = %+v", b.Metadata)
	}
	if b.Metadata.AudioFilename != "song.mp3" {
		t.Errorf("audio filename = %q", b.Metadata.AudioFilename)
	}
	if b.Difficulty.HP != 4 || b.Difficulty.CS != 3.5 || b.Difficulty.OD != 6 || b.Difficulty.AR != 7 {
		t.Errorf("difficulty = %+v", b.Difficulty)
	}
	if b.Difficulty.SliderMultiplier != 1.6 {
		t.Errorf("slider multiplier = %f", b.Difficulty.SliderMultiplier)
	}

	if len(b.Objects) != 4 {
		t.Fatalf("objects = %d, want 4", len(b.Objects))
	}
	wantKinds := []Kind{KindCircle, KindCircle, KindSlider, KindSpinner}
	for i, obj := range b.Objects {
		if obj.Kind() != wantKinds[i] {
			t.Errorf("object %d kind = %s, want %s", i, obj.Kind(), wantKinds[i])
		}
	}

	if len(b.Breaks) != 1 || b.Breaks[0].Start != 5000 || b.Breaks[0].End != 7000 {
		t.Errorf("breaks = %+v", b.Breaks)
	}
	if !b.InBreak(6000) || b.InBreak(4000) {
		t.Error("InBreak window wrong")
	}

	if len(b.ComboColors) != 2 || b.ComboColors[0] != (RGB{255, 0, 0}) {
		t.Errorf("combo colors = %+v", b.ComboColors)
	}
	if b.PaletteSize() != 2 {
		t.Errorf("palette size = %d, want 2", b.PaletteSize())
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chart.osu")
	if err := os.WriteFile(path, []byte(sampleChart), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(b.Objects) != 4 {
		t.Errorf("objects = %d, want 4", len(b.Objects))
	}
	if _, err := ParseFile(filepath.Join(t.TempDir(), "missing.osu")); err == nil {
		t.Error("missing file should error")
	}
}

func TestParseMalformed(t *testing.T) {
	cases := []struct {
		name  string
		chart string
	}{
		{"empty", ""},
		{"no object section", "[Metadata]\nTitle:x\n"},
		{"object section but no objects", "[HitObjects]\n"},
		{"only broken object rows", "[HitObjects]\n1,2\nnot,enough\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseString(c.chart)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("err = %v, want ErrMalformed", err)
			}
		})
	}
}

func TestParseSkipsBrokenLines(t *testing.T) {
	chart := `[TimingPoints]
garbage
0,500

[HitObjects]
totally broken
256,192,1000,1,0
also,broken
300,200,2000,1,0
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if len(b.Objects) != 2 {
		t.Errorf("objects = %d, want 2", len(b.Objects))
	}
	if len(b.TimingPoints) != 1 {
		t.Errorf("timing points = %d, want 1", len(b.TimingPoints))
	}
}

func TestParseObjectsSortedByTime(t *testing.T) {
	chart := `[HitObjects]
0,0,3000,1,0
0,0,1000,1,0
0,0,2000,1,0
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(b.Objects); i++ {
		if b.Objects[i].Time() < b.Objects[i-1].Time() {
			t.Fatalf("objects not sorted: %f before %f",
				b.Objects[i-1].Time(), b.Objects[i].Time())
		}
	}
	if b.FirstObjectTime() != 1000 {
		t.Errorf("FirstObjectTime = %f, want 1000", b.FirstObjectTime())
	}
}

func TestApproachRateDefaultsToOD(t *testing.T) {
	chart := `[Difficulty]
OverallDifficulty:7.3

[HitObjects]
0,0,1000,1,0
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatal(err)
	}
	if b.Difficulty.AR != 7.3 {
		t.Errorf("AR = %f, want OD fallback 7.3", b.Difficulty.AR)
	}
}

func TestDifficultyClamped(t *testing.T) {
	chart := `[Difficulty]
HPDrainRate:15
CircleSize:-3
OverallDifficulty:11
ApproachRate:12

[HitObjects]
0,0,1000,1,0
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatal(err)
	}
	d := b.Difficulty
	if d.HP != 10 || d.CS != 0 || d.OD != 10 || d.AR != 10 {
		t.Errorf("difficulty not clamped: %+v", d)
	}
}

func TestSpinnerCenteredAndClamped(t *testing.T) {
	chart := `[HitObjects]
10,20,1000,12,0,500
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatal(err)
	}
	sp, ok := b.Objects[0].(*Spinner)
	if !ok {
		t.Fatalf("object is %T, want *Spinner", b.Objects[0])
	}
	if sp.Pos().X != 256 || sp.Pos().Y != 192 {
		t.Errorf("spinner pos = %+v, want playfield center", sp.Pos())
	}
	// End before start clamps to start.
	if sp.EndTime() != sp.Time() {
		t.Errorf("spinner end = %f, want clamped to %f", sp.EndTime(), sp.Time())
	}
}

func TestComboAssignment(t *testing.T) {
	chart := `[HitObjects]
0,0,1000,1,0
0,0,1500,1,0
0,0,2000,5,0
0,0,2500,1,0
0,0,3000,5,0
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatal(err)
	}
	wantNumbers := []int{1, 2, 1, 2, 1}
	wantColors := []int{0, 0, 1, 1, 2}
	for i, obj := range b.Objects {
		n, c := obj.Combo()
		if n != wantNumbers[i] {
			t.Errorf("object %d combo number = %d, want %d", i, n, wantNumbers[i])
		}
		if c != wantColors[i] {
			t.Errorf("object %d combo color = %d, want %d", i, c, wantColors[i])
		}
	}
}

func TestComboColorWrapsPalette(t *testing.T) {
	// Two chart colors, three combo groups: third group wraps back to 0.
	chart := `[Colours]
Combo1 : 255,0,0
Combo2 : 0,255,0

[HitObjects]
0,0,1000,1,0
0,0,2000,5,0
0,0,3000,5,0
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatal(err)
	}
	_, c := b.Objects[2].Combo()
	if c != 0 {
		t.Errorf("third group color = %d, want wrap to 0", c)
	}
}

func TestParseTimingPointFields(t *testing.T) {
	cases := []struct {
		name            string
		line            string
		wantOK          bool
		wantUninherited bool
		wantKiai        bool
	}{
		{"full uninherited", "0,500,4,2,0,60,1,0", true, true, false},
		{"full inherited kiai", "2000,-50,4,2,0,60,0,1", true, false, true},
		{"short positive", "0,500", true, true, false},
		{"short negative infers inherited", "0,-50", true, false, false},
		{"too few fields", "100", false, false, false},
		{"unparsable beat length", "0,abc", false, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tp, ok := parseTimingPoint(c.line)
			if ok != c.wantOK {
				t.Fatalf("ok = %v, want %v", ok, c.wantOK)
			}
			if !ok {
				return
			}
			if tp.Uninherited != c.wantUninherited {
				t.Errorf("uninherited = %v, want %v", tp.Uninherited, c.wantUninherited)
			}
			if tp.Kiai != c.wantKiai {
				t.Errorf("kiai = %v, want %v", tp.Kiai, c.wantKiai)
			}
		})
	}
}

func TestTimingPointVelocity(t *testing.T) {
	cases := []struct {
		name string
		tp   TimingPoint
		want float64
	}{
		{"standard double speed", TimingPoint{BeatLength: -50}, 2},
		{"half speed", TimingPoint{BeatLength: -200}, 0.5},
		{"clamped high", TimingPoint{BeatLength: -1}, 10},
		{"clamped low", TimingPoint{BeatLength: -100000}, 0.1},
		{"uninherited is neutral", TimingPoint{BeatLength: 500, Uninherited: true}, 1},
		{"broken positive inherited", TimingPoint{BeatLength: 50}, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.tp.Velocity(); math.Abs(got-c.want) > 1e-9 {
				t.Errorf("Velocity = %f, want %f", got, c.want)
			}
		})
	}
}

func TestParseSliderPath(t *testing.T) {
	chart := `[HitObjects]
100,100,1000,2,0,P|150:150|200:100,2,120
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := b.Objects[0].(*Slider)
	if !ok {
		t.Fatalf("object is %T, want *Slider", b.Objects[0])
	}
	if len(s.ControlPoints) != 3 {
		t.Fatalf("control points = %d, want 3 (head included)", len(s.ControlPoints))
	}
	if s.ControlPoints[0].X != 100 || s.ControlPoints[0].Y != 100 {
		t.Errorf("head = %+v, want the object position", s.ControlPoints[0])
	}
	if s.Slides != 2 || s.PixelLength != 120 {
		t.Errorf("slides = %d, length = %f", s.Slides, s.PixelLength)
	}
	if s.Path == nil {
		t.Fatal("slider has no resolved path")
	}
}

func TestPerfectPathWithWrongPointCountFallsBack(t *testing.T) {
	// "P" with four points cannot be a circular arc.
	chart := `[HitObjects]
0,0,1000,2,0,P|50:50|100:0|150:50,1,100
`
	b, err := ParseString(chart)
	if err != nil {
		t.Fatal(err)
	}
	s := b.Objects[0].(*Slider)
	if len(s.ControlPoints) != 4 {
		t.Fatalf("control points = %d, want 4", len(s.ControlPoints))
	}
	if s.Path == nil || s.Path.Length() <= 0 {
		t.Error("fallback path not built")
	}
}
