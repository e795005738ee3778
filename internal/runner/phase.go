package runner

import "strings"

// Discipline identifies how the athlete moves during a phase. It selects the
// hitbox profile and the sprite animation set.
type Discipline int

const (
	DisciplineSwim Discipline = iota
	DisciplineBike
	DisciplineRun
)

// String returns the lowercase name used in course files.
func (d Discipline) String() string {
	switch d {
	case DisciplineSwim:
		return "swim"
	case DisciplineBike:
		return "bike"
	case DisciplineRun:
		return "run"
	default:
		return "unknown"
	}
}

// FrameCount returns the number of animation frames for the discipline.
func (d Discipline) FrameCount() int {
	switch d {
	case DisciplineRun:
		return 4
	default:
		return 2
	}
}

// ParseDiscipline parses a discipline name as written in course files.
func ParseDiscipline(s string) (Discipline, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "swim":
		return DisciplineSwim, true
	case "bike":
		return DisciplineBike, true
	case "run":
		return DisciplineRun, true
	}
	return 0, false
}

// HitboxProfile describes the solid part of the player sprite as fractions
// of the sprite's rendered size. The box is centred horizontally and starts
// Top·height below the sprite's top edge.
type HitboxProfile struct {
	Width  float64
	Height float64
	Top    float64
}

// fullSprite is used when a course defines no profile for a discipline.
var fullSprite = HitboxProfile{Width: 1, Height: 1, Top: 0}

// Phase is one leg of the run.
type Phase struct {
	Name       string
	Discipline Discipline

	// Threshold is the cumulative distance (meters) at which the phase ends.
	Threshold float64

	BaseSpeed      float64
	MinSpeedFactor float64
	MaxSpeedFactor float64

	// Background and Ground are presentation identifiers, opaque to the engine.
	Background string
	Ground     string

	Obstacles     []ObstacleKind
	SpawnInterval float64 // seconds between spawns at base speed
	Duration      float64 // seconds the phase should last at base speed
}

// MinSpeed returns the lower bound of the phase's speed envelope.
func (p Phase) MinSpeed() float64 {
	return p.BaseSpeed * p.MinSpeedFactor
}

// MaxSpeed returns the upper bound before difficulty growth.
func (p Phase) MaxSpeed() float64 {
	return p.BaseSpeed * p.MaxSpeedFactor
}

// PhaseInfo is the presentation-facing description of a phase.
type PhaseInfo struct {
	Index      int
	Name       string
	Discipline Discipline
	Background string
	Ground     string
}

func (p Phase) info(index int) PhaseInfo {
	return PhaseInfo{
		Index:      index,
		Name:       p.Name,
		Discipline: p.Discipline,
		Background: p.Background,
		Ground:     p.Ground,
	}
}
