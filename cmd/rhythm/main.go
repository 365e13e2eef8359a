// rhythm is a terminal rhythm game in the osu! style.
//
// Usage:
//
//	rhythm play [chart.osu]  - Play a chart (picker menu without an argument)
//	rhythm list              - List charts in the songs directory
//	rhythm scores <chart>    - Show stored results for a chart
//	rhythm check <chart.osu> - Parse and validate a chart file
//	rhythm serve             - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>     - Set tick rate (default: from config)
//	--db <path>      - Set database path (default: ~/.rhythm/results.db)
//	--songs <dir>    - Set songs directory (default: ~/.rhythm/songs)
//	--config <path>  - Use a specific settings file
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rhythm/internal/config"
)

var (
	// Global flags
	flagFPS      int
	flagDBPath   string
	flagSongsDir string
	flagConfig   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rhythm",
	Short: "A terminal rhythm game",
	Long: `rhythm plays osu!-format charts in your terminal: approach circles,
sliders, spinners, mods, health drain and letter grades, rendered with
characters.

Available commands:
  play     - Play a chart, or pick one from the songs directory
  list     - Show charts found in the songs directory
  scores   - View stored results for a chart
  check    - Parse and validate a chart file
  serve    - Start SSH server for remote play

Examples:
  rhythm play
  rhythm play song.osu --mods HDDT
  rhythm play song.osu --auto
  rhythm list
  rhythm scores song.osu
  rhythm serve --ssh :2222`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Tick rate (0 = from config)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to results database")
	rootCmd.PersistentFlags().StringVar(&flagSongsDir, "songs", "", "Path to songs directory")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to settings file")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadSettings reads the settings file and applies command-line overrides.
func loadSettings() config.Settings {
	settings, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		settings = config.Default()
	}

	if flagDBPath != "" {
		settings.Database = flagDBPath
	}
	if flagSongsDir != "" {
		settings.SongsDir = flagSongsDir
	}
	if flagFPS > 0 {
		settings.Gameplay.TickRate = flagFPS
	}
	return settings
}
