package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tri-runner/internal/games/triathlon"
)

var phasesCmd = &cobra.Command{
	Use:   "phases <course>",
	Short: "Show the phases of a course",
	Long: `Print the phase table of a course after applying --config and
--difficulty: thresholds, speed envelope and the obstacles each leg spawns.

Examples:
  trirunner phases triathlon
  trirunner phases sprint --difficulty hard`,
	Args: cobra.ExactArgs(1),
	RunE: runPhases,
}

func init() {
	addCourseFlags(phasesCmd)
}

func runPhases(_ *cobra.Command, args []string) error {
	courseID := args[0]
	if err := requireCourse(courseID); err != nil {
		return err
	}

	cfg, err := triathlon.LoadCourse(courseID)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %.1f km, %d lanes, %d speed steps\n\n",
		courseID, cfg.TotalDistance()/1000, len(cfg.Lanes), len(cfg.SpeedSteps))
	fmt.Printf("  %-6s  %-5s  %9s  %13s  %s\n", "Phase", "Kind", "Ends at", "Speed", "Obstacles")
	fmt.Printf("  %-6s  %-5s  %9s  %13s  %s\n", "-----", "----", "-------", "-----", "---------")

	for _, p := range cfg.Phases {
		names := make([]string, len(p.Obstacles))
		for i, k := range p.Obstacles {
			names[i] = k.String()
		}
		fmt.Printf("  %-6s  %-5s  %7.0f m  %5.0f - %5.0f  %s\n",
			p.Name, p.Discipline, p.Threshold, p.MinSpeed(), p.MaxSpeed(), strings.Join(names, ", "))
	}

	if cfg.Tuning.MilestoneDistance > 0 {
		fmt.Printf("\nMax speed grows x%.3f every %.0f m.\n", cfg.Tuning.GrowthFactor, cfg.Tuning.MilestoneDistance)
	}
	return nil
}
