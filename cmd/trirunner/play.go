package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tri-runner/internal/core"
	"github.com/vovakirdan/tri-runner/internal/games/triathlon"
	"github.com/vovakirdan/tri-runner/internal/platform/tui"
	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/replay"
)

var flagRecord string

var playCmd = &cobra.Command{
	Use:   "play <course>",
	Short: "Race a course",
	Long: `Start racing the specified course.

Controls:
  Up/W       - Move one lane up
  Down/S     - Move one lane down
  Right/D    - Next speed step
  Left/A     - Brake
  P/Space    - Pause
  R          - Restart (after the run ended)
  Esc/B      - Leave (when paused or after the run)
  Q/Ctrl+C   - Quit

Difficulty options:
  easy   - Fewer obstacles, slower speed growth
  normal - The course as configured
  hard   - More obstacles, faster speed growth
  fixed  - No speed growth

Examples:
  trirunner play triathlon
  trirunner play sprint --difficulty easy
  trirunner play triathlon --record ./race.trr
  trirunner play custom --config ./my-course.toml`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	addCourseFlags(playCmd)
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Write each finished run's recording to this file")
}

// terminalConfig builds the runtime config from the terminal size and global flags.
func terminalConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

func runPlay(_ *cobra.Command, args []string) error {
	courseID := args[0]
	if flagConfig == "" {
		if err := requireCourse(courseID); err != nil {
			return err
		}
	}

	// A custom file can carry any id; race it under the built-in adapter.
	var game registry.Game
	if registry.Exists(courseID) {
		g, err := registry.Create(courseID)
		if err != nil {
			return fmt.Errorf("creating course: %w", err)
		}
		game = g
	} else {
		game = triathlon.New(courseID, courseID)
	}

	// Fail early on a broken course file instead of falling back silently.
	if _, err := triathlon.LoadCourse(courseID); err != nil {
		return err
	}

	opts := tui.RunOptions{Logger: logger}
	if flagRecord != "" {
		rg, ok := game.(*triathlon.Game)
		if !ok {
			return fmt.Errorf("course %q cannot be recorded", courseID)
		}
		rec := replay.NewRecorder()
		rg.SetRecorder(rec)
		opts.Recorder = rec
		opts.RecordPath = flagRecord
	}

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	cfg := terminalConfig()
	quietTerminal()
	if err := tui.Run(game, store, cfg, opts); err != nil {
		return fmt.Errorf("running course: %w", err)
	}
	return nil
}
