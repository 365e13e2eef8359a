package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tui-rhythm/internal/config"
	"github.com/vovakirdan/tui-rhythm/internal/core"
	"github.com/vovakirdan/tui-rhythm/internal/library"
	"github.com/vovakirdan/tui-rhythm/internal/mods"
	"github.com/vovakirdan/tui-rhythm/internal/platform/tui"
	"github.com/vovakirdan/tui-rhythm/internal/storage"
)

var (
	flagMods   string
	flagAuto   bool
	flagSilent bool
	flagAudio  string
)

var playCmd = &cobra.Command{
	Use:   "play [chart.osu]",
	Short: "Play a chart",
	Long: `Play the given chart file, or pick one from the songs directory when
no argument is given.

Controls:
  Z/X        - Hit (mouse click also works)
  Mouse      - Aim
  Space      - Skip the lead-in
  P/Esc      - Pause
  R          - Retry
  Q/Ctrl+C   - Quit

Mods (two-letter codes, concatenated):
  EZ NF HT   - Easy, NoFail, HalfTime
  HR DT HD FL- HardRock, DoubleTime, Hidden, Flashlight
  RX AP AT   - Relax, Autopilot, Autoplay (RX/AP/AT score zero)

Examples:
  rhythm play
  rhythm play song.osu
  rhythm play song.osu --mods HDDT
  rhythm play song.osu --auto
  rhythm play song.osu --silent
  rhythm play song.osu --audio other.mp3`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagMods, "mods", "", "Mod string, e.g. HDDT (default: from config)")
	playCmd.Flags().BoolVar(&flagAuto, "auto", false, "Watch a perfect Autoplay run")
	playCmd.Flags().BoolVar(&flagSilent, "silent", false, "Play without sound on the simulated clock")
	playCmd.Flags().StringVar(&flagAudio, "audio", "", "Override the chart's music file")
}

func runPlay(_ *cobra.Command, args []string) {
	settings := loadSettings()
	if flagSilent {
		settings.Audio.Silent = true
	}

	modString := flagMods
	if modString == "" {
		modString = settings.Gameplay.Mods
	}
	modSet, ok := mods.Parse(modString)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: invalid mod string %q\n", modString)
		os.Exit(1)
	}
	if flagAuto {
		modSet = modSet.Toggle(mods.Autoplay)
	}

	// Get terminal size
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: settings.Gameplay.TickRate,
	}

	// Open the results store
	store, err := storage.Open(settings.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open results database: %v\n", err)
		// Continue without storage - play still works
		store = nil
	}
	defer func() {
		if store != nil {
			store.Close()
		}
	}()

	if len(args) == 1 {
		playChart(args[0], modSet, store, settings, cfg)
		return
	}

	playFromMenu(modSet, store, settings, cfg)
}

// playChart runs a single chart given on the command line.
func playChart(path string, modSet mods.Set, store *storage.Store,
	settings config.Settings, cfg core.RuntimeConfig) {
	entry, err := library.FromFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if flagAudio != "" {
		entry = entry.WithAudio(flagAudio)
	}

	chart, err := entry.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(entry, chart, modSet, store, settings, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running chart: %v\n", err)
		os.Exit(1)
	}
}

// playFromMenu loops picker -> play -> picker until the user quits.
func playFromMenu(modSet mods.Set, store *storage.Store,
	settings config.Settings, cfg core.RuntimeConfig) {
	entries, err := library.Scan(config.ExpandHome(settings.SongsDir))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning songs directory: %v\n", err)
		fmt.Fprintln(os.Stderr, "Set one with --songs or in the settings file.")
		os.Exit(1)
	}

	for {
		menuResult, err := tui.RunMenu(entries, modSet, store, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		// Keep any size changes from the menu
		cfg = menuResult.Config

		if menuResult.Quit {
			break
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(entries, store, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue
			}
			break
		}

		if menuResult.Entry == nil {
			break
		}

		entry := *menuResult.Entry
		chart, loadErr := entry.Load()
		if loadErr != nil {
			fmt.Fprintf(os.Stderr, "Error loading chart: %v\n", loadErr)
			continue
		}

		if runErr := tui.Run(entry, chart, modSet, store, settings, cfg); runErr != nil {
			fmt.Fprintf(os.Stderr, "Error running chart: %v\n", runErr)
		}

		// Loop back to the picker
	}
}
