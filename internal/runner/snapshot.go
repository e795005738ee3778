package runner

import (
	"fmt"

	"github.com/vovakirdan/tri-runner/internal/core"
)

// Snapshot is a read-only copy of the run state after a tick. Nothing in it
// aliases engine memory.
type Snapshot struct {
	Status Status

	PhaseIndex int
	Phase      PhaseInfo
	// PhaseChanged is set only on the tick that entered a new phase.
	PhaseChanged *PhaseInfo

	Distance      float64
	TotalDistance float64
	Remaining     float64
	Elapsed       float64 // simulated seconds
	// DisplaySeconds counts ClockSecond calls; presentation only.
	DisplaySeconds int

	Speed       float64
	TargetSpeed float64
	MinSpeed    float64
	MaxSpeed    float64
	SpeedStep   int
	SpeedSteps  int
	Milestones  int

	Lane      int
	LaneCount int
	Sprite    core.Box
	Hitbox    core.Box

	Obstacles []Obstacle

	BackgroundOffset float64
	GroundOffset     float64
	Frame            int

	Diagnostics []string
}

// Running reports whether the run is in progress.
func (s Snapshot) Running() bool {
	return s.Status == StatusRunning
}

// Progress returns the fraction of the course covered, in [0, 1].
func (s Snapshot) Progress() float64 {
	if s.TotalDistance <= 0 {
		return 0
	}
	return core.ClampF(s.Distance/s.TotalDistance, 0, 1)
}

// Snapshot returns the current state without stepping.
func (e *Engine) Snapshot() Snapshot {
	p := e.cfg.Phases[e.phase]
	total := e.cfg.TotalDistance()

	obstacles := make([]Obstacle, len(e.obstacles.Obstacles()))
	copy(obstacles, e.obstacles.Obstacles())

	var changed *PhaseInfo
	if e.phaseChanged != nil {
		info := *e.phaseChanged
		changed = &info
	}

	var diags []string
	if len(e.pending) > 0 {
		diags = append([]string(nil), e.pending...)
	}

	sprite := SpriteBox(&e.cfg, e.lane)
	return Snapshot{
		Status:           e.status,
		PhaseIndex:       e.phase,
		Phase:            p.info(e.phase),
		PhaseChanged:     changed,
		Distance:         e.covered,
		TotalDistance:    total,
		Remaining:        max(0, total-e.covered),
		Elapsed:          e.elapsed,
		DisplaySeconds:   e.displaySeconds,
		Speed:            e.speed.Current(),
		TargetSpeed:      e.speed.Target(),
		MinSpeed:         e.speed.Min(),
		MaxSpeed:         e.speed.Max(),
		SpeedStep:        e.speed.Step(),
		SpeedSteps:       e.speed.StepCount(),
		Milestones:       e.milestones,
		Lane:             e.lane,
		LaneCount:        len(e.cfg.Lanes),
		Sprite:           sprite,
		Hitbox:           PlayerHitbox(sprite, e.cfg.HitboxFor(p.Discipline)),
		Obstacles:        obstacles,
		BackgroundOffset: e.bgOffset,
		GroundOffset:     e.groundOffset,
		Frame:            e.frame,
		Diagnostics:      diags,
	}
}

// FormatTime renders whole seconds as MMhSS, the race clock format.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02dh%02d", seconds/60, seconds%60)
}
