package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rhythm/internal/library"
	"github.com/vovakirdan/tui-rhythm/internal/storage"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <chart.osu>",
	Short: "Show stored results for a chart",
	Long: `Display the top stored results for the given chart file.

Results are keyed by chart content hash, so a renamed chart keeps its
results and an edited one starts fresh.

Examples:
  rhythm scores song.osu
  rhythm scores song.osu --limit 25`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of results to show")
}

func runScores(_ *cobra.Command, args []string) {
	settings := loadSettings()

	entry, err := library.FromFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(settings.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening results database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	results, err := store.TopResults(entry.Hash, flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving results: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Results - %s\n", entry.DisplayName())
	fmt.Println()

	if len(results) == 0 {
		fmt.Println("No results recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'rhythm play %s' to set the first score!\n", args[0])
		return
	}

	fmt.Printf("  %-4s  %-9s  %-7s  %-6s  %-5s  %-8s  %s\n",
		"Rank", "Score", "Acc", "Combo", "Grade", "Mods", "Date")
	fmt.Printf("  %-4s  %-9s  %-7s  %-6s  %-5s  %-8s  %s\n",
		"----", "-----", "---", "-----", "-----", "----", "----")

	for i, r := range results {
		fmt.Printf("  %-4d  %-9d  %6.2f%%  %5dx  %-5s  %-8s  %s\n",
			i+1, r.Score, r.Accuracy, r.MaxCombo, r.Grade, r.Mods,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
}
