package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tri-runner/internal/games/triathlon"
	"github.com/vovakirdan/tri-runner/internal/replay"
	"github.com/vovakirdan/tri-runner/internal/runner"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

var (
	flagSimSeconds float64
	flagSimDT      float64
	flagSimRecord  string
	flagSimSave    bool
)

var simCmd = &cobra.Command{
	Use:   "sim <course>",
	Short: "Run a course headless with the autopilot",
	Long: `Simulate a run without a terminal UI. The autopilot dodges obstacles
and speeds up when its lane is clear. The run stops when it finishes,
crashes or reaches --seconds of simulated time.

Examples:
  trirunner sim triathlon
  trirunner sim sprint --seed 42 --seconds 60 --dt 0.02
  trirunner sim triathlon --record ./bot.trr --save`,
	Args: cobra.ExactArgs(1),
	RunE: runSim,
}

func init() {
	addCourseFlags(simCmd)
	simCmd.Flags().Float64Var(&flagSimSeconds, "seconds", 600, "Simulated seconds before giving up")
	simCmd.Flags().Float64Var(&flagSimDT, "dt", 1.0/60, "Seconds per tick")
	simCmd.Flags().StringVar(&flagSimRecord, "record", "", "Write the recording to this file")
	simCmd.Flags().BoolVar(&flagSimSave, "save", false, "Store the result in the runs database")
}

func runSim(_ *cobra.Command, args []string) error {
	courseID := args[0]
	if flagSimDT <= 0 {
		return fmt.Errorf("--dt must be positive")
	}

	cfg, err := triathlon.LoadCourse(courseID)
	if err != nil {
		return err
	}

	seed := flagSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	engine, err := runner.New(cfg, runner.WithSeed(seed), runner.WithLogger(logger))
	if err != nil {
		return err
	}
	pilot := runner.NewAutopilot(engine.Config())
	rec := replay.NewRecorder()
	rec.Begin(courseID, seed)

	logger.Info("simulating", "course", courseID, "seed", seed, "dt", flagSimDT)

	engine.Start()
	snap := engine.Snapshot()
	nextSecond := 1.0
	for snap.Running() && snap.Elapsed < flagSimSeconds {
		intents := pilot.Decide(snap)
		for _, in := range intents {
			engine.Apply(in)
		}
		snap = engine.Step(flagSimDT)
		rec.Tick(flagSimDT, intents)

		// Race clock follows simulated time here.
		for snap.Elapsed >= nextSecond {
			engine.ClockSecond()
			nextSecond++
		}
		if snap.PhaseChanged != nil {
			logger.Info("phase", "name", snap.PhaseChanged.Name, "distance", fmt.Sprintf("%.0fm", snap.Distance))
		}
	}
	snap = engine.Snapshot()

	status := simStatus(snap.Status)
	fmt.Printf("%s on %s after %.1fs (race clock %s)\n", status, courseID, snap.Elapsed, runner.FormatTime(snap.DisplaySeconds))
	fmt.Printf("  distance  %.0f / %.0f m (%.0f%%)\n", snap.Distance, snap.TotalDistance, snap.Progress()*100)
	fmt.Printf("  phase     %s\n", snap.Phase.Name)
	fmt.Printf("  seed      %d\n", seed)

	replayID := ""
	if flagSimRecord != "" {
		if err := replay.Save(flagSimRecord, rec.Recording()); err != nil {
			return err
		}
		replayID = rec.Recording().ID
		fmt.Printf("  recording %s (%d ticks)\n", flagSimRecord, len(rec.Recording().Ticks))
	}

	if flagSimSave {
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.SaveRun(storage.RunResult{
			CourseID:    courseID,
			Status:      status,
			Distance:    snap.Distance,
			Elapsed:     snap.Elapsed,
			RaceSeconds: snap.DisplaySeconds,
			Phase:       snap.PhaseIndex,
			Seed:        seed,
			ReplayID:    replayID,
		})
		if err != nil {
			return err
		}
		fmt.Printf("  saved     %s\n", id)
	}
	return nil
}

// simStatus maps an engine status to the stored run status.
func simStatus(s runner.Status) string {
	switch s {
	case runner.StatusWon:
		return storage.StatusWon
	case runner.StatusGameOver:
		return storage.StatusCrashed
	default:
		return storage.StatusQuit
	}
}
