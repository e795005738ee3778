package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tri-runner/internal/config"
	"github.com/vovakirdan/tri-runner/internal/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available courses",
	Long:  `Shows a list of all courses registered in tri-runner.`,
	Run:   runList,
}

func runList(cmd *cobra.Command, args []string) {
	courses := registry.List()

	if len(courses) == 0 {
		fmt.Println("No courses available.")
		return
	}

	fmt.Println("Available courses:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	maxTitleLen := 5
	for _, c := range courses {
		maxIDLen = max(maxIDLen, len(c.ID))
		maxTitleLen = max(maxTitleLen, len(c.Title))
	}

	// Print header
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Distance")
	fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "--------")

	for _, c := range courses {
		dist := "?"
		if course, err := config.Load(c.ID, ""); err == nil {
			dist = fmt.Sprintf("%.1f km", course.TotalDistance()/1000)
		}
		fmt.Printf("  %-*s  %-*s  %s\n", maxIDLen, c.ID, maxTitleLen, c.Title, dist)
	}

	fmt.Println()
	fmt.Println("Run 'trirunner play <id>' to race a course.")
}
