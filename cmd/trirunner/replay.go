package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tri-runner/internal/games/triathlon"
	"github.com/vovakirdan/tri-runner/internal/replay"
	"github.com/vovakirdan/tri-runner/internal/runner"
)

var replayCmd = &cobra.Command{
	Use:   "replay <file>",
	Short: "Re-run a recorded race",
	Long: `Load a recording written by 'play --record' or 'sim --record' and run it
through the engine again. The course is resolved from the recording, so
pass the same --config and --difficulty that were used to record it.

Examples:
  trirunner replay ./race.trr
  trirunner replay ./bot.trr --difficulty hard`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	addCourseFlags(replayCmd)
}

func runReplay(_ *cobra.Command, args []string) error {
	rec, err := replay.Load(args[0])
	if err != nil {
		return err
	}

	cfg, err := triathlon.LoadCourse(rec.Course)
	if err != nil {
		return err
	}

	snap, err := replay.Play(cfg, rec, runner.WithLogger(logger))
	if err != nil {
		return err
	}

	fmt.Printf("Replay %s: %s, seed %d, %d ticks (%.1fs)\n",
		rec.ID, rec.Course, rec.Seed, len(rec.Ticks), rec.Duration())
	fmt.Printf("  result    %s after %.1fs\n", simStatus(snap.Status), snap.Elapsed)
	fmt.Printf("  distance  %.0f / %.0f m\n", snap.Distance, snap.TotalDistance)
	fmt.Printf("  phase     %s\n", snap.Phase.Name)
	return nil
}
