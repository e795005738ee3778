package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tri-runner/internal/platform/tui"
	"github.com/vovakirdan/tri-runner/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the course picker menu",
	Long: `Start tri-runner in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to pick a course.
After a run ends, Esc returns you to the menu to race again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select course
  Tab          - Leaderboard
  Q            - Quit

Examples:
  trirunner menu
  trirunner menu --fps 30
  trirunner menu --difficulty hard`,
	RunE: runMenu,
}

func init() {
	addCourseFlags(menuCmd)
}

func runMenu(_ *cobra.Command, _ []string) error {
	store := openStore()
	if store != nil {
		defer store.Close()
	}

	cfg := terminalConfig()
	quietTerminal()

	for {
		menuResult, err := tui.RunMenu(store, cfg)
		if err != nil {
			return err
		}
		cfg = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if goBack {
				continue
			}
			return nil
		}

		if menuResult.CourseID == "" {
			return nil
		}

		game, err := registry.Create(menuResult.CourseID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating course: %v\n", err)
			continue
		}

		// A fixed --seed replays the same course layout every time.
		cfg.Seed = flagSeed
		if cfg.Seed == 0 {
			cfg.Seed = time.Now().UnixNano()
		}

		if err := tui.Run(game, store, cfg, tui.RunOptions{Logger: logger}); err != nil {
			fmt.Fprintf(os.Stderr, "Error running course: %v\n", err)
		}
	}
}
