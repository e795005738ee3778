package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/runner"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores <course>",
	Short: "Show the leaderboard for a course",
	Long: `Display the best runs for the specified course. Finished races rank
first by race time, then unfinished runs by distance covered.

Examples:
  trirunner scores triathlon
  trirunner scores sprint --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show")
}

func runScores(_ *cobra.Command, args []string) error {
	courseID := args[0]
	if err := requireCourse(courseID); err != nil {
		return err
	}

	game, err := registry.Create(courseID)
	if err != nil {
		return fmt.Errorf("creating course: %w", err)
	}
	title := game.Title()

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("opening runs database: %w", err)
	}
	defer store.Close()

	runs, err := store.TopRuns(courseID, flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving runs: %w", err)
	}

	fmt.Printf("Leaderboard - %s\n", title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'trirunner play %s' to set the first time!\n", courseID)
		return nil
	}

	fmt.Printf("  %-4s  %-8s  %-6s  %-9s  %s\n", "Rank", "Result", "Time", "Distance", "Date")
	fmt.Printf("  %-4s  %-8s  %-6s  %-9s  %s\n", "----", "------", "----", "--------", "----")
	for i, r := range runs {
		fmt.Printf("  %-4d  %-8s  %-6s  %-9s  %s\n",
			i+1,
			r.Status,
			runner.FormatTime(r.RaceSeconds),
			fmt.Sprintf("%.0fm", r.Distance),
			r.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	stats, err := store.GetCourseStats(courseID)
	if err != nil {
		return nil
	}
	fmt.Println()
	fmt.Printf("Runs: %d  Finished: %d  Avg distance: %.0fm\n", stats.Runs, stats.Finishes, stats.AvgDistance)
	if best, err := store.BestTime(courseID); err == nil && best > 0 {
		fmt.Printf("Best time: %.1fs\n", best)
	}
	return nil
}
