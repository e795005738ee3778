// trirunner is a lane-based triathlon endless runner for the terminal.
//
// Usage:
//
//	trirunner list              - List available courses
//	trirunner phases <course>   - Show a course's phase table
//	trirunner play <course>     - Race a course
//	trirunner sim <course>      - Run a course headless with the autopilot
//	trirunner replay <file>     - Re-run a recording
//	trirunner menu              - Start menu to pick courses interactively
//	trirunner serve             - Start SSH server for remote play
//	trirunner scores <course>   - Show the leaderboard for a course
//
// Global flags:
//
//	--fps <rate>         - Set tick rate (default: 60)
//	--seed <value>       - Set RNG seed for reproducible runs
//	--db <path>          - Set database path (default: ~/.trirunner/runs.db)
//	--log-level <level>  - debug, info, warn, error (default: info)
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/tri-runner/internal/config"
	"github.com/vovakirdan/tri-runner/internal/games/triathlon"
	"github.com/vovakirdan/tri-runner/internal/registry"
	"github.com/vovakirdan/tri-runner/internal/storage"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagLogFile  string

	// Course flags shared by play, sim, replay and menu
	flagConfig     string
	flagDifficulty string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "trirunner",
})

// logFile is the open --log-file, closed on exit.
var logFile *os.File

func main() {
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trirunner",
	Short: "Tri-Runner - swim, bike and run in your terminal",
	Long: `Tri-Runner is a lane-based triathlon endless runner. Change lanes to
dodge obstacles, pick a speed step, and cover the swim, bike and run legs
before you crash.

Available commands:
  list     - Show all available courses
  phases   - Show the phases of a course
  play     - Race a course
  sim      - Run a course headless with the autopilot
  replay   - Re-run a recorded race
  menu     - Interactive course picker menu
  serve    - Start SSH server for remote play
  scores   - View the leaderboard

Examples:
  trirunner list
  trirunner play triathlon
  trirunner sim sprint --seconds 120
  trirunner serve --ssh :2222 --http :8080
  trirunner scores triathlon`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.trirunner/runs.db", "Path to runs database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file instead of stderr")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(phasesCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(simCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scoresCmd)
}

// addCourseFlags registers --config and --difficulty on a command.
func addCourseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to a custom course file (YAML or TOML)")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", flagLogLevel, err)
	}
	logger.SetLevel(level)

	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("cannot open log file: %w", err)
		}
		logFile = f
		logger.SetOutput(f)
	}

	triathlon.SetLogger(logger)
	triathlon.SetConfigPath(flagConfig)
	if flagDifficulty != "" {
		if _, err := config.ParsePreset(flagDifficulty); err != nil {
			return err
		}
	}
	triathlon.SetDifficultyPreset(flagDifficulty)
	return nil
}

// quietTerminal stops log output from drawing over a full-screen UI.
func quietTerminal() {
	if flagLogFile == "" {
		logger.SetOutput(io.Discard)
	}
}

// requireCourse fails with a hint when the course is not registered.
func requireCourse(id string) error {
	if !registry.Exists(id) {
		return fmt.Errorf("unknown course %q (run 'trirunner list' to see available courses)", id)
	}
	return nil
}

// openStore opens the runs database, warning and returning nil on failure.
func openStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open runs database", "path", flagDBPath, "err", err)
		return nil
	}
	return store
}
