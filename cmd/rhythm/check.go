package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rhythm/internal/beatmap"
	"github.com/vovakirdan/tui-rhythm/internal/mods"
)

var checkCmd = &cobra.Command{
	Use:   "check <chart.osu>",
	Short: "Parse and validate a chart file",
	Long: `Parse the given chart file and print what the game would see: metadata,
difficulty, derived hit windows, object breakdown and timing.

Exits non-zero when the chart is malformed.

Examples:
  rhythm check song.osu`,
	Args: cobra.ExactArgs(1),
	Run:  runCheck,
}

func runCheck(_ *cobra.Command, args []string) {
	path := args[0]

	chart, err := beatmap.ParseFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var circles, sliders, spinners int
	for _, obj := range chart.Objects {
		switch obj.Kind() {
		case beatmap.KindCircle:
			circles++
		case beatmap.KindSlider:
			sliders++
		case beatmap.KindSpinner:
			spinners++
		}
	}

	d := chart.Difficulty
	perfect, great, good := mods.HitWindowsMs(d.OD)
	length := int((chart.LastEndTime() - chart.FirstObjectTime()) / 1000)

	fmt.Printf("%s\n", path)
	fmt.Println()
	fmt.Printf("  Title:    %s\n", chart.Metadata.Title)
	fmt.Printf("  Artist:   %s\n", chart.Metadata.Artist)
	fmt.Printf("  Creator:  %s\n", chart.Metadata.Creator)
	fmt.Printf("  Version:  %s\n", chart.Metadata.Version)
	if chart.Metadata.AudioFilename != "" {
		fmt.Printf("  Audio:    %s\n", chart.Metadata.AudioFilename)
	}
	fmt.Println()
	fmt.Printf("  HP %.1f  CS %.1f  OD %.1f  AR %.1f  SliderMult %.2f\n",
		d.HP, d.CS, d.OD, d.AR, d.SliderMultiplier)
	fmt.Printf("  Hit windows: 300=%.0fms  100=%.0fms  50=%.0fms\n", perfect, great, good)
	fmt.Printf("  Circle radius: %.1f  Approach: %.0fms\n",
		mods.CircleRadius(d.CS), mods.ApproachWindowMs(d.AR))
	fmt.Println()
	fmt.Printf("  Objects: %d (%d circles, %d sliders, %d spinners)\n",
		len(chart.Objects), circles, sliders, spinners)
	fmt.Printf("  Length: %d:%02d\n", length/60, length%60)
	fmt.Printf("  Timing points: %d  Breaks: %d  Combo colors: %d\n",
		len(chart.TimingPoints), len(chart.Breaks), chart.PaletteSize())
	fmt.Println()
	fmt.Println("OK")
}
