package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tui-rhythm/internal/config"
	"github.com/vovakirdan/tui-rhythm/internal/library"
)

var listCmd = &cobra.Command{
	Use:   "list [dir]",
	Short: "List charts in the songs directory",
	Long: `Scan the songs directory (or the given directory) and list every
playable chart with its hash prefix, object count and length.

Examples:
  rhythm list
  rhythm list ./charts`,
	Args: cobra.MaximumNArgs(1),
	Run:  runList,
}

func runList(_ *cobra.Command, args []string) {
	settings := loadSettings()

	dir := config.ExpandHome(settings.SongsDir)
	if len(args) == 1 {
		dir = args[0]
	}

	entries, err := library.Scan(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Printf("No charts found in %s.\n", dir)
		return
	}

	fmt.Printf("Charts in %s:\n", dir)
	fmt.Println()

	// Calculate the name column width
	maxNameLen := 5 // "Chart" header
	for _, e := range entries {
		if len(e.DisplayName()) > maxNameLen {
			maxNameLen = len(e.DisplayName())
		}
	}

	fmt.Printf("  %-8s  %-*s  %7s  %6s\n", "Hash", maxNameLen, "Chart", "Objects", "Length")
	fmt.Printf("  %-8s  %-*s  %7s  %6s\n", "----", maxNameLen, "-----", "-------", "------")

	for _, e := range entries {
		length := int(e.LengthMs / 1000)
		fmt.Printf("  %-8s  %-*s  %7d  %3d:%02d\n",
			e.Hash[:8], maxNameLen, e.DisplayName(), e.Objects, length/60, length%60)
	}

	fmt.Println()
	fmt.Println("Run 'rhythm play <path>' to play a chart.")
}
